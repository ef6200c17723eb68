package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/domain/favorite"
	"dndinfo/internal/pkg/logger"
)

var ErrSelfDelete = errors.New("administrators cannot delete themselves")

type Service struct {
	Moderator
	db  *gorm.DB
	log *logger.Logger
}

func NewService(moderator Moderator, db *gorm.DB, log *logger.Logger) *Service {
	return &Service{Moderator: moderator, db: db, log: log}
}

// DeleteUser removes an account. The user's catalog items survive without an
// owner and their favorites go with them.
func (s *Service) DeleteUser(ctx context.Context, actor auth.Actor, userID int64) error {
	if !actor.IsAdmin() {
		return catalog.ErrPermission
	}
	if userID == actor.UserID {
		return ErrSelfDelete
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := auth.NewUserRepository(tx)
		if _, err := users.GetByID(ctx, userID); err != nil {
			return err
		}
		if err := catalog.NewRepository(tx).ReleaseOwner(ctx, userID); err != nil {
			return err
		}
		if err := favorite.NewRepository(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info("user deleted", "user_id", userID, "admin_id", actor.UserID)
	return nil
}
