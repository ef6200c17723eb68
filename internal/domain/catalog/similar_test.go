package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func monster(id int64, name, size, typ string, hp int) *Monster {
	return &Monster{ID: id, Name: name, Size: size, Type: typ, HitPoints: hp, Moderation: official()}
}

func TestRankSimilar_MonsterTieBreak(t *testing.T) {
	src := monster(1, "Orc", "Medium", "humanoid", 15)
	candidates := []Item{
		src,
		monster(2, "Bugbear", "Medium", "humanoid", 27),
		monster(3, "Wolf", "Medium", "beast", 11),
		monster(4, "Orc War Chief", "Medium", "humanoid", 93),
		monster(5, "Gnoll", "Medium", "humanoid", 22),
		monster(6, "Dragon", "Huge", "dragon", 200),
	}

	got := RankSimilar(src, candidates, nil, 5)

	// Orc War Chief matches name, type and size; the other humanoids tie on
	// two clauses and go by hit points; the wolf only shares the size.
	assert.Equal(t, []string{"Orc War Chief", "Gnoll", "Bugbear", "Wolf"}, names(got))
}

func TestRankSimilar_RespectsLimitAndIDOrder(t *testing.T) {
	src := &Equipment{ID: 10, Name: "Rope", Description: "Hempen rope"}
	var candidates []Item
	for id := int64(20); id > 11; id-- {
		candidates = append(candidates, &Equipment{ID: id, Name: "Rope"})
	}

	got := RankSimilar(src, candidates, nil, 3)

	assert.Len(t, got, 3)
	assert.Equal(t, []int64{12, 13, 14}, []int64{got[0].ItemID(), got[1].ItemID(), got[2].ItemID()})
}

func TestRankSimilar_SpellEffects(t *testing.T) {
	effects := []string{"fire", "cold", "урон"}
	src := &Spell{ID: 1, Name: "Ice Knife", Level: 1, School: "conjuration", Desc: "Deals cold damage to a creature"}

	candidates := []Item{
		&Spell{ID: 2, Name: "Ray of Frost", Level: 0, School: "evocation", Desc: "A frigid beam, cold damage"},
		&Spell{ID: 3, Name: "Burning Hands", Level: 1, School: "evocation", Desc: "Thin sheets of flames"},
		&Spell{ID: 4, Name: "Wish", Level: 9, School: "conjuration", Desc: "The mightiest spell"},
	}

	got := RankSimilar(src, candidates, effects, 5)

	// Ray of Frost matches "damage", "cold" as a keyword and "cold" as an effect;
	// Wish ties with Burning Hands on one clause and wins on level.
	assert.Equal(t, []string{"Ray of Frost", "Wish", "Burning Hands"}, names(got))
}

func TestRankSimilar_UnicodeCaseFolding(t *testing.T) {
	src := &Spell{ID: 1, Name: "Огненный шар", Level: 3, School: "evocation"}
	candidates := []Item{
		&Spell{ID: 2, Name: "ОГНЕННЫЙ клинок", Level: 2, School: "transmutation"},
		&Spell{ID: 3, Name: "Щит", Level: 1, School: "abjuration"},
	}

	got := RankSimilar(src, candidates, nil, 5)
	assert.Equal(t, []string{"ОГНЕННЫЙ клинок"}, names(got))
}

func TestRankSimilar_EdgeCases(t *testing.T) {
	src := monster(1, "Orc", "Medium", "humanoid", 15)

	assert.Empty(t, RankSimilar(src, nil, nil, 5))
	assert.NotNil(t, RankSimilar(src, nil, nil, 5))
	assert.Empty(t, RankSimilar(src, []Item{monster(2, "Orc", "Medium", "humanoid", 1)}, nil, 0))
	assert.Empty(t, RankSimilar(src, []Item{&Spell{ID: 2, Name: "Orc"}}, nil, 5))
}

func TestKeywords(t *testing.T) {
	got := keywords("A bright streak flashes, a bright bolt! of fire and smoke, then more words here")
	assert.Equal(t, []string{"bright", "streak", "flashes", "bolt", "fire"}, got)
	assert.Empty(t, keywords(""))
}
