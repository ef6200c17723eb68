package catalog

import "strings"

// Kind tags one of the catalog entity kinds.
type Kind string

const (
	KindMonster   Kind = "monster"
	KindSpell     Kind = "spell"
	KindEquipment Kind = "equipment"
)

// Kinds lists every catalog kind in display order.
var Kinds = []Kind{KindMonster, KindSpell, KindEquipment}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrUnknownKind
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindMonster, KindSpell, KindEquipment:
		return true
	}
	return false
}

// Plural is the collection name used in URLs.
func (k Kind) Plural() string {
	switch k {
	case KindMonster:
		return "monsters"
	case KindSpell:
		return "spells"
	}
	return string(k)
}
