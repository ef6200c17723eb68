package catalog

// Item is the moderatable shape shared by monsters, spells and equipment.
type Item interface {
	ItemID() int64
	ItemKind() Kind
	ItemName() string
	Mod() *Moderation
}

// parent is implemented by kinds that own dependent rows.
type parent interface {
	// dependentRows points every dependent row at the parent, clears row ids
	// and returns the non-empty slices ready for insertion.
	dependentRows() []any
}
