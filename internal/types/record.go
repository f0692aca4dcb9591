package types

// RecordRef identifies a record as returned by a listing. IDs are opaque
// to the tool; servers usually hand out integers.
type RecordRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecordDetail is the nested body of a single record: string keys whose
// values are scalars, nested RecordDetail-like maps or []any sequences.
type RecordDetail = map[string]any

// ListFilter narrows a listing server-side, e.g. patch policies bound to
// one software title.
type ListFilter struct {
	Path  string
	Value string
}

type RecordCapabilities struct {
	Create bool
	Update bool
	Delete bool
	Upload bool
}
