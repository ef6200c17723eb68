// Package seed fills a development database with demo homebrew content.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
)

// Factory builds valid homebrew inputs whose coded fields come from the label table.
type Factory struct {
	labels *labels.Table
}

// NewFactory seeds gofakeit; a zero seed uses the clock.
func NewFactory(table *labels.Table, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{labels: table}
}

func (f *Factory) Input(kind catalog.Kind) (catalog.Input, error) {
	switch kind {
	case catalog.KindMonster:
		return f.Monster(), nil
	case catalog.KindSpell:
		return f.Spell(), nil
	case catalog.KindEquipment:
		return f.Equipment(), nil
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownKind, kind)
}

func (f *Factory) Monster() *catalog.MonsterInput {
	in := &catalog.MonsterInput{
		Name:         title(gofakeit.Adjective() + " " + gofakeit.Animal()),
		Size:         f.pick(labels.Sizes),
		Type:         gofakeit.RandomString([]string{"beast", "fiend", "undead", "dragon", "humanoid", "construct"}),
		HitPoints:    gofakeit.Number(4, 180),
		Strength:     ability(),
		Dexterity:    ability(),
		Constitution: ability(),
		Intelligence: ability(),
		Wisdom:       ability(),
		Charisma:     ability(),
		ArmorClasses: []catalog.ArmorClassInput{
			{Type: f.pick(labels.ArmorTypes), Value: gofakeit.Number(10, 20)},
		},
		Speeds: []catalog.SpeedInput{
			{MovementType: "walk", Value: fmt.Sprintf("%d ft.", 5*gofakeit.Number(4, 8))},
		},
	}
	if gofakeit.Bool() {
		in.Speeds = append(in.Speeds, catalog.SpeedInput{
			MovementType: f.pick(labels.MovementTypes),
			Value:        fmt.Sprintf("%d ft.", 5*gofakeit.Number(2, 16)),
		})
	}
	// speeds must not repeat a movement type
	if len(in.Speeds) == 2 && in.Speeds[1].MovementType == "walk" {
		in.Speeds = in.Speeds[:1]
	}
	return in
}

func (f *Factory) Spell() *catalog.SpellInput {
	in := &catalog.SpellInput{
		Name:          title(gofakeit.Adjective() + " " + gofakeit.Noun()),
		Desc:          gofakeit.Paragraph(1, 3, 8, " "),
		Range:         fmt.Sprintf("%d feet", 10*gofakeit.Number(1, 15)),
		Duration:      gofakeit.RandomString([]string{"Instantaneous", "1 minute", "1 hour", "Until dispelled"}),
		CastingTime:   gofakeit.RandomString([]string{"1 action", "1 bonus action", "1 reaction", "1 minute"}),
		Level:         gofakeit.Number(0, 9),
		School:        f.pick(labels.Schools),
		Ritual:        gofakeit.Bool(),
		Concentration: gofakeit.Bool(),
	}
	codes := f.labels.Codes(labels.ComponentTypes)
	gofakeit.ShuffleStrings(codes)
	in.Components = codes[:gofakeit.Number(1, len(codes))]
	return in
}

func (f *Factory) Equipment() *catalog.EquipmentInput {
	return &catalog.EquipmentInput{
		Name:         title(gofakeit.Adjective() + " " + gofakeit.Noun()),
		Description:  gofakeit.Sentence(12),
		Weight:       float64(gofakeit.Number(0, 400)) / 4,
		CostQuantity: gofakeit.Number(1, 500),
		CostUnit:     f.pick(labels.CurrencyUnits),
	}
}

func (f *Factory) pick(c labels.Category) string {
	return gofakeit.RandomString(f.labels.Codes(c))
}

func ability() int {
	return gofakeit.Number(3, 20)
}

func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
