package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndinfo/internal/app"
	"dndinfo/internal/config"
	"dndinfo/internal/database"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/logger"
)

type E2ETestSuite struct {
	app         *app.App
	adminToken  string
	playerToken string
	playerID    int64
}

type TestResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type itemView struct {
	Kind    string            `json:"kind"`
	Status  string            `json:"status"`
	CanEdit bool              `json:"can_edit"`
	Labels  map[string]string `json:"labels"`
	Item    struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"item"`
}

type pageView struct {
	Items      []itemView `json:"items"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:", database.Silent())
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db, app.Models()...))

	cfg := &config.Config{
		AppEnv:           "test",
		JWTSecret:        "test_secret_key_32_characters_min",
		JWTTTL:           time.Hour,
		SimilarLimit:     5,
		SimilarScanLimit: 500,
	}
	s := &E2ETestSuite{app: app.New(cfg, db, labels.Default(), logger.Nop())}

	ctx := context.Background()
	_, err = s.app.Auth.EnsureAdmin(ctx, "admin@test.com", "admin", "AdminPass123")
	require.NoError(t, err)
	s.adminToken = s.login(t, "admin@test.com", "AdminPass123")

	w := s.request(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email":    "player@test.com",
		"username": "player",
		"password": "PlayerPass123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.playerToken = s.login(t, "player@test.com", "PlayerPass123")

	var me struct {
		ID int64 `json:"id"`
	}
	decode(t, s.request(http.MethodGet, "/api/v1/auth/me", nil, s.playerToken), &me)
	s.playerID = me.ID

	// official content, as the importer would store it
	for _, item := range []catalog.Item{
		&catalog.Spell{Name: "Fireball", Level: 3, School: "evocation", Desc: "A bright streak of fire damage."},
		&catalog.Spell{Name: "Cure Wounds", Level: 1, School: "evocation", Desc: "Healing touch."},
		&catalog.Equipment{Name: "Rope", CostQuantity: 1, CostUnit: "gp"},
	} {
		_, _, err := s.app.Catalog.ImportOfficial(ctx, item)
		require.NoError(t, err)
	}
	return s
}

func (s *E2ETestSuite) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	return w
}

func (s *E2ETestSuite) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.request(http.MethodPost, "/api/v1/auth/login", map[string]any{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

// =============================================================================
// Flow 1: homebrew goes through moderation
// =============================================================================

func TestFlow1_HomebrewModeration(t *testing.T) {
	s := setupTestSuite(t)
	var spellID int64

	t.Run("POST /spells submits pending homebrew", func(t *testing.T) {
		w := s.request(http.MethodPost, "/api/v1/spells", map[string]any{
			"name":       "Frost Lance",
			"desc":       "A shard of ice deals cold damage.",
			"level":      2,
			"school":     "evocation",
			"components": []string{"V", "S"},
		}, s.playerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var view itemView
		decode(t, w, &view)
		assert.Equal(t, "pending", view.Status)
		assert.True(t, view.CanEdit)
		assert.Equal(t, "Воплощение", view.Labels["school"])
		spellID = view.Item.ID
	})

	path := fmt.Sprintf("/api/v1/spells/%d", spellID)

	t.Run("pending item is hidden from others", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.request(http.MethodGet, path, nil, "").Code)
		assert.Equal(t, http.StatusOK, s.request(http.MethodGet, path, nil, s.playerToken).Code)
		assert.Equal(t, http.StatusOK, s.request(http.MethodGet, path, nil, s.adminToken).Code)

		var page pageView
		decode(t, s.request(http.MethodGet, "/api/v1/spells?homebrew=true", nil, ""), &page)
		assert.Empty(t, page.Items)

		decode(t, s.request(http.MethodGet, "/api/v1/spells/mine", nil, s.playerToken), &page)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Frost Lance", page.Items[0].Item.Name)
	})

	t.Run("invalid submission is rejected with details", func(t *testing.T) {
		w := s.request(http.MethodPost, "/api/v1/spells", map[string]any{
			"name": "Bad", "level": 12, "school": "chronomancy",
		}, s.playerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("non-admin cannot reach moderation", func(t *testing.T) {
		w := s.request(http.MethodGet, "/api/v1/admin/moderation", nil, s.playerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.request(http.MethodDelete, path, nil, s.playerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin dashboard counts pending", func(t *testing.T) {
		var dash struct {
			TotalPending int64 `json:"total_pending"`
		}
		decode(t, s.request(http.MethodGet, "/api/v1/admin/moderation", nil, s.adminToken), &dash)
		assert.Equal(t, int64(1), dash.TotalPending)

		var page pageView
		decode(t, s.request(http.MethodGet, "/api/v1/admin/moderation/spell/pending", nil, s.adminToken), &page)
		require.Len(t, page.Items, 1)
		assert.Equal(t, spellID, page.Items[0].Item.ID)
	})

	t.Run("approve publishes the item", func(t *testing.T) {
		w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/admin/moderation/spell/%d/approve", spellID), nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var view itemView
		decode(t, s.request(http.MethodGet, path, nil, ""), &view)
		assert.Equal(t, "approved", view.Status)
		assert.False(t, view.CanEdit)

		var page pageView
		decode(t, s.request(http.MethodGet, "/api/v1/spells?homebrew=true", nil, ""), &page)
		assert.Len(t, page.Items, 1)

		// approving twice finds nothing pending
		w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/admin/moderation/spell/%d/approve", spellID), nil, s.adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("owner edit sends it back to moderation", func(t *testing.T) {
		w := s.request(http.MethodPut, path, map[string]any{
			"name":   "Frost Lance",
			"desc":   "Now with more cold damage.",
			"level":  2,
			"school": "evocation",
		}, s.playerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var view itemView
		decode(t, w, &view)
		assert.Equal(t, "pending", view.Status)
		assert.Equal(t, http.StatusNotFound, s.request(http.MethodGet, path, nil, "").Code)
	})

	t.Run("reject removes it", func(t *testing.T) {
		w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/admin/moderation/spell/%d/reject", spellID), nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, http.StatusNotFound, s.request(http.MethodGet, path, nil, s.playerToken).Code)
	})
}

// =============================================================================
// Flow 2: browsing official content
// =============================================================================

func TestFlow2_BrowseAndSimilar(t *testing.T) {
	s := setupTestSuite(t)

	var page pageView
	decode(t, s.request(http.MethodGet, "/api/v1/spells?sort=name&search=fire", nil, ""), &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Fireball", page.Items[0].Item.Name)
	assert.Equal(t, "official", page.Items[0].Status)
	assert.Equal(t, "3 ур.", page.Items[0].Labels["level"])
	fireball := page.Items[0].Item.ID

	decode(t, s.request(http.MethodGet, "/api/v1/spells?level=1", nil, ""), &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Cure Wounds", page.Items[0].Item.Name)

	var similar struct {
		Items []itemView `json:"items"`
	}
	decode(t, s.request(http.MethodGet, fmt.Sprintf("/api/v1/spells/%d/similar", fireball), nil, ""), &similar)
	require.Len(t, similar.Items, 1)
	assert.Equal(t, "Cure Wounds", similar.Items[0].Item.Name)

	w := s.request(http.MethodGet, "/api/v1/dragons", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.request(http.MethodGet, "/api/v1/spells/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))

	var table map[string]any
	decode(t, s.request(http.MethodGet, "/api/v1/labels", nil, ""), &table)
	assert.Contains(t, table, "schools")
}

// =============================================================================
// Flow 3: favorites and account removal
// =============================================================================

func TestFlow3_FavoritesAndUserDeletion(t *testing.T) {
	s := setupTestSuite(t)

	var page pageView
	decode(t, s.request(http.MethodGet, "/api/v1/equipment", nil, ""), &page)
	require.Len(t, page.Items, 1)
	rope := fmt.Sprintf("/api/v1/favorites/equipment/%d", page.Items[0].Item.ID)

	assert.Equal(t, http.StatusUnauthorized, s.request(http.MethodPost, rope, nil, "").Code)
	assert.Equal(t, http.StatusCreated, s.request(http.MethodPost, rope, nil, s.playerToken).Code)
	assert.Equal(t, http.StatusConflict, s.request(http.MethodPost, rope, nil, s.playerToken).Code)

	var favs struct {
		Total int `json:"total"`
	}
	decode(t, s.request(http.MethodGet, "/api/v1/favorites", nil, s.playerToken), &favs)
	assert.Equal(t, 1, favs.Total)

	var created itemView
	w := s.request(http.MethodPost, "/api/v1/equipment", map[string]any{
		"name": "Bag of Dice", "cost_quantity": 2, "cost_unit": "sp",
	}, s.playerToken)
	decode(t, w, &created)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", s.playerID), nil, s.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the account is gone but its homebrew stays, without an owner
	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/equipment/%d", created.Item.ID), nil, s.adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Item struct {
			CreatedByID *int64 `json:"created_by_id"`
		} `json:"item"`
	}
	decode(t, w, &view)
	assert.Nil(t, view.Item.CreatedByID)

	w = s.request(http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "player@test.com", "password": "PlayerPass123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var admin struct {
		ID int64 `json:"id"`
	}
	decode(t, s.request(http.MethodGet, "/api/v1/auth/me", nil, s.adminToken), &admin)
	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", admin.ID), nil, s.adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupTestSuite(t)

	assert.Equal(t, http.StatusOK, s.request(http.MethodGet, "/health", nil, "").Code)

	w := s.request(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dndinfo_http_requests_total")
}
