package dndimport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndinfo/internal/database"
	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/logger"
)

var fakeAPI = map[string]string{
	"/monsters": `{"count":2,"results":[
		{"index":"goblin","name":"Goblin","url":"/api/2014/monsters/goblin"},
		{"index":"missing","name":"Missing","url":"/api/2014/monsters/missing"}]}`,
	"/monsters/goblin": `{"index":"goblin","name":"Goblin","size":"Small","type":"humanoid","hit_points":7,
		"strength":8,"dexterity":14,"constitution":10,"intelligence":10,"wisdom":8,"charisma":8,
		"armor_class":[{"type":"armor","value":15},{"type":"condition","value":17}],
		"speed":{"walk":"30 ft.","hover":true,"swim":"","teleport":"10 ft."}}`,
	"/spells": `{"count":1,"results":[{"index":"fireball","name":"Fireball","url":"/api/2014/spells/fireball"}]}`,
	"/spells/fireball": `{"index":"fireball","name":"Fireball","level":3,"desc":["A bright streak","then fire."],
		"range":"150 feet","duration":"Instantaneous","casting_time":"1 action",
		"components":["V","S","M","M"],"school":{"index":"evocation","name":"Evocation"}}`,
	"/equipment": `{"count":1,"results":[{"index":"rope","name":"Rope, hempen (50 feet)","url":"/api/2014/equipment/rope"}]}`,
	"/equipment/rope": `{"index":"rope","name":"Rope, hempen (50 feet)","weight":10,"cost":{"quantity":1,"unit":"gp"},"desc":[]}`,
}

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := fakeAPI[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	db, err := database.Connect(":memory:", database.Silent())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, catalog.Models()...))
	return catalog.NewService(catalog.NewRepository(db), labels.Default(), logger.Nop(), catalog.Options{})
}

func TestImporter_RunIsIdempotent(t *testing.T) {
	srv := newFakeServer(t)
	cat := newCatalog(t)
	client := NewClient(logger.Nop(), Config{BaseURL: srv.URL, MaxRetries: 1})
	im := NewImporter(client, cat, labels.Default(), logger.Nop())
	ctx := context.Background()

	report, err := im.Run(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, report.Kinds, 3)
	assert.Equal(t, KindReport{Kind: catalog.KindMonster, Listed: 2, Created: 1, Failed: 1}, report.Kinds[0])
	assert.Equal(t, KindReport{Kind: catalog.KindSpell, Listed: 1, Created: 1}, report.Kinds[1])

	report, err = im.Run(ctx, nil, 0)
	require.NoError(t, err)
	created, existing, failed := report.Totals()
	assert.Equal(t, 0, created)
	assert.Equal(t, 3, existing)
	assert.Equal(t, 1, failed)

	page, err := cat.ListVisible(ctx, catalog.KindMonster, catalog.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	goblin := page.Items[0].(*catalog.Monster)
	assert.Equal(t, catalog.StatusOfficial, goblin.Status())
	assert.Equal(t, []catalog.ArmorClass{
		{ID: goblin.ArmorClasses[0].ID, MonsterID: goblin.ID, Type: "armor", Value: 15},
		{ID: goblin.ArmorClasses[1].ID, MonsterID: goblin.ID, Type: "other", Value: 17},
	}, goblin.ArmorClasses)

	speeds := map[string]string{}
	for _, s := range goblin.Speeds {
		speeds[s.MovementType] = s.Value
	}
	assert.Equal(t, map[string]string{"hover": "yes", "other": "10 ft.", "walk": "30 ft."}, speeds)
}

func TestImporter_MapsSpellsAndLimit(t *testing.T) {
	srv := newFakeServer(t)
	cat := newCatalog(t)
	im := NewImporter(NewClient(logger.Nop(), Config{BaseURL: srv.URL}), cat, labels.Default(), logger.Nop())
	ctx := context.Background()

	report, err := im.Run(ctx, []catalog.Kind{catalog.KindSpell}, 1)
	require.NoError(t, err)
	require.Len(t, report.Kinds, 1)

	page, err := cat.ListVisible(ctx, catalog.KindSpell, catalog.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	fireball := page.Items[0].(*catalog.Spell)
	assert.Equal(t, "A bright streak then fire.", fireball.Desc)
	assert.Equal(t, "evocation", fireball.School)
	assert.Equal(t, "150 feet", fireball.Range)
	assert.ElementsMatch(t, []string{"V", "S", "M"}, fireball.ComponentCodes())

	// imported items are public
	got, err := cat.Get(ctx, auth.Anonymous, catalog.KindSpell, fireball.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fireball", got.ItemName())
}

func TestImporter_ListFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	im := NewImporter(NewClient(logger.Nop(), Config{BaseURL: srv.URL}), newCatalog(t), labels.Default(), logger.Nop())
	report, err := im.Run(context.Background(), []catalog.Kind{catalog.KindEquipment}, 5)
	require.NoError(t, err)
	require.Len(t, report.Kinds, 1)
	assert.Contains(t, report.Kinds[0].Error, "403")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"count":1,"results":[{"index":"rope","name":"Rope"}]}`))
	}))
	defer srv.Close()

	client := NewClient(logger.Nop(), Config{BaseURL: srv.URL + "/", MaxRetries: 3, RetryInterval: time.Millisecond})
	refs, err := client.List(context.Background(), ResourceEquipment)
	require.NoError(t, err)
	assert.Equal(t, []Reference{{Index: "rope", Name: "Rope"}}, refs)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NotFoundIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(logger.Nop(), Config{BaseURL: srv.URL, MaxRetries: 5, RetryInterval: time.Millisecond})
	_, err := client.Monster(context.Background(), "tarrasque")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMonsterArmorClassForms(t *testing.T) {
	m := &Monster{ArmorClass: []byte(`12`)}
	assert.Equal(t, []MonsterArmorClass{{Type: "natural", Value: 12}}, m.ArmorClasses())

	m = &Monster{}
	assert.Nil(t, m.ArmorClasses())
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("я", maxSpellDesc+10)
	assert.Len(t, []rune(truncateRunes(long, maxSpellDesc)), maxSpellDesc)
	assert.Equal(t, "short", truncateRunes("short", maxSpellDesc))
}
