package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndinfo/internal/database"
	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/jwt"
	"dndinfo/internal/pkg/logger"
)

type fixture struct {
	hub    *Hub
	tokens *jwt.Service
	server *httptest.Server
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{hub: NewHub(logger.Nop()), tokens: jwt.New("feed-secret", time.Hour)}
	r := gin.New()
	NewHandler(f.hub, f.tokens, nil).RegisterRoutes(r.Group("/api/v1"))
	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) dial(t *testing.T, userID int64, role auth.UserRole) *websocket.Conn {
	t.Helper()
	token, err := f.tokens.GenerateToken(userID, string(role))
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/admin/feed?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *fixture) waitClients(t *testing.T, n int) {
	t.Helper()
	assert.Eventually(t, func() bool { return f.hub.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func readEvent(t *testing.T, conn *websocket.Conn) catalog.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e catalog.Event
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func TestFeed_DeliversCatalogEvents(t *testing.T) {
	f := setup(t)
	first := f.dial(t, 1, auth.RoleAdmin)
	second := f.dial(t, 9, auth.RoleAdmin)
	f.waitClients(t, 2)

	db, err := database.Connect(":memory:", database.Silent())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, catalog.Models()...))
	cat := catalog.NewService(catalog.NewRepository(db), labels.Default(), logger.Nop(), catalog.Options{Events: f.hub})

	ctx := context.Background()
	item, err := cat.Submit(ctx, auth.Actor{UserID: 2, Role: auth.RoleUser}, &catalog.EquipmentInput{Name: "Everburning Candle"})
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{first, second} {
		e := readEvent(t, conn)
		assert.Equal(t, catalog.EventSubmitted, e.Type)
		assert.Equal(t, catalog.KindEquipment, e.Kind)
		assert.Equal(t, item.ItemID(), e.ItemID)
		assert.Equal(t, "Everburning Candle", e.Name)
		assert.Equal(t, int64(2), e.ActorID)
	}

	require.NoError(t, cat.Approve(ctx, auth.Actor{UserID: 1, Role: auth.RoleAdmin}, catalog.KindEquipment, item.ItemID()))
	e := readEvent(t, first)
	assert.Equal(t, catalog.EventApproved, e.Type)
	assert.Equal(t, catalog.StatusApproved, e.Status)
}

func TestFeed_PingAndDisconnect(t *testing.T) {
	f := setup(t)
	conn := f.dial(t, 1, auth.RoleAdmin)
	f.waitClients(t, 1)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(msg))

	require.NoError(t, conn.Close())
	f.waitClients(t, 0)

	// publishing with nobody listening is a no-op
	f.hub.Publish(catalog.Event{Type: catalog.EventDeleted, Kind: catalog.KindSpell, ItemID: 1})
}

func TestFeed_RejectsNonAdmins(t *testing.T) {
	f := setup(t)
	base := f.server.URL + "/api/v1/admin/feed"

	resp, err := http.Get(base)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(base + "?token=garbage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := f.tokens.GenerateToken(5, string(auth.RoleUser))
	require.NoError(t, err)
	resp, err = http.Get(base + "?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, f.hub.Clients())
}
