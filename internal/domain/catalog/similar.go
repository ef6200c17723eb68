package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

const (
	keywordWindow  = 10
	keywordMinLen  = 4
	minMatchScore = 1
)

// matcher is one relatedness test against a candidate of the source's kind.
type matcher func(candidate Item) bool

type scored struct {
	item  Item
	score int
}

// RankSimilar scores candidates against src and returns at most limit of them,
// best first. Candidates matching no test are dropped; src is never returned.
func RankSimilar(src Item, candidates []Item, effects []string, limit int) []Item {
	if limit <= 0 || src == nil {
		return []Item{}
	}
	matchers := matchersFor(src, effects)

	ranked := lo.FilterMap(candidates, func(c Item, _ int) (scored, bool) {
		if c == nil || c.ItemKind() != src.ItemKind() || c.ItemID() == src.ItemID() {
			return scored{}, false
		}
		n := lo.CountBy(matchers, func(match matcher) bool { return match(c) })
		return scored{item: c, score: n}, n >= minMatchScore
	})

	less := tieBreak(src.ItemKind())
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if less(a.item, b.item) {
			return true
		}
		if less(b.item, a.item) {
			return false
		}
		return a.item.ItemID() < b.item.ItemID()
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return lo.Map(ranked, func(s scored, _ int) Item { return s.item })
}

func matchersFor(src Item, effects []string) []matcher {
	var out []matcher

	if token := firstWord(src.ItemName()); token != "" {
		out = append(out, func(c Item) bool {
			return containsFold(c.ItemName(), token) || containsFold(primaryText(c), token)
		})
	}
	for _, kw := range keywords(description(src)) {
		out = append(out, func(c Item) bool {
			return containsFold(c.ItemName(), kw) || containsFold(description(c), kw)
		})
	}

	switch s := src.(type) {
	case *Monster:
		if typ := strings.TrimSpace(s.Type); typ != "" {
			out = append(out, func(c Item) bool { return containsFold(c.(*Monster).Type, typ) })
		}
		out = append(out, func(c Item) bool { return c.(*Monster).Size == s.Size })
	case *Spell:
		out = append(out,
			func(c Item) bool { return c.(*Spell).Level == s.Level },
			func(c Item) bool { return strings.EqualFold(c.(*Spell).School, s.School) },
		)
		for _, word := range effects {
			if word == "" || !containsFold(s.Desc, word) {
				continue
			}
			out = append(out, func(c Item) bool { return containsFold(c.(*Spell).Desc, word) })
		}
	}
	return out
}

func tieBreak(kind Kind) func(a, b Item) bool {
	switch kind {
	case KindMonster:
		return func(a, b Item) bool {
			x, y := a.(*Monster), b.(*Monster)
			if x.Type != y.Type {
				return x.Type > y.Type
			}
			return x.HitPoints < y.HitPoints
		}
	case KindSpell:
		return func(a, b Item) bool {
			x, y := a.(*Spell), b.(*Spell)
			if x.Level != y.Level {
				return x.Level > y.Level
			}
			if x.School != y.School {
				return x.School < y.School
			}
			return x.Name < y.Name
		}
	}
	return func(a, b Item) bool { return a.ItemName() < b.ItemName() }
}

// primaryText is the field the name token is matched against besides the name.
func primaryText(item Item) string {
	if m, ok := item.(*Monster); ok {
		return m.Type
	}
	return description(item)
}

func description(item Item) string {
	switch v := item.(type) {
	case *Spell:
		return v.Desc
	case *Equipment:
		return v.Description
	}
	return ""
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return trimPunct(fields[0])
}

// keywords picks distinctive words from the start of a description.
func keywords(desc string) []string {
	words := strings.Fields(desc)
	if len(words) > keywordWindow {
		words = words[:keywordWindow]
	}
	picked := lo.FilterMap(words, func(w string, _ int) (string, bool) {
		w = strings.ToLower(trimPunct(w))
		return w, len([]rune(w)) >= keywordMinLen
	})
	return lo.Uniq(picked)
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
