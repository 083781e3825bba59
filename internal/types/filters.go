package types

// Field names a filterable attribute of a catalog record.
type Field string

const (
	FieldCampagne     Field = "campagne"
	FieldSite         Field = "site"
	FieldStation      Field = "station"
	FieldTransect     Field = "transect"
	FieldTypePoissons Field = "type_poissons"
	FieldQ            Field = "q" // free-text search, not a facet
)

// FacetFields lists the exact-match facets in the order refine clauses are emitted.
var FacetFields = []Field{
	FieldCampagne,
	FieldSite,
	FieldStation,
	FieldTransect,
	FieldTypePoissons,
}

// AllFields is FacetFields followed by the free-text field.
var AllFields = append(append([]Field{}, FacetFields...), FieldQ)

// ParseField maps a field name to a Field, reporting whether it is known.
func ParseField(name string) (Field, bool) {
	switch f := Field(name); f {
	case FieldCampagne, FieldSite, FieldStation, FieldTransect, FieldTypePoissons, FieldQ:
		return f, true
	}
	return "", false
}

// FilterSet holds the six optional filter values. A nil pointer means unset.
type FilterSet struct {
	Campagne     *string `json:"campagne,omitempty" yaml:"campagne,omitempty"`
	Site         *string `json:"site,omitempty" yaml:"site,omitempty"`
	Station      *string `json:"station,omitempty" yaml:"station,omitempty"`
	Transect     *string `json:"transect,omitempty" yaml:"transect,omitempty"`
	TypePoissons *string `json:"type_poissons,omitempty" yaml:"type_poissons,omitempty"`
	Q            *string `json:"q,omitempty" yaml:"q,omitempty"`
}

// FilterChange is a partial FilterSet. A missing key leaves the filter
// unchanged, a nil value clears it, any other value sets it.
type FilterChange map[Field]*string

// Str returns a pointer to s, for building FilterSet and FilterChange literals.
func Str(s string) *string {
	return &s
}

// Value returns the pointer held for f.
func (fs FilterSet) Value(f Field) *string {
	switch f {
	case FieldCampagne:
		return fs.Campagne
	case FieldSite:
		return fs.Site
	case FieldStation:
		return fs.Station
	case FieldTransect:
		return fs.Transect
	case FieldTypePoissons:
		return fs.TypePoissons
	case FieldQ:
		return fs.Q
	}
	return nil
}

func (fs *FilterSet) set(f Field, v *string) {
	if v != nil {
		v = Str(*v)
	}
	switch f {
	case FieldCampagne:
		fs.Campagne = v
	case FieldSite:
		fs.Site = v
	case FieldStation:
		fs.Station = v
	case FieldTransect:
		fs.Transect = v
	case FieldTypePoissons:
		fs.TypePoissons = v
	case FieldQ:
		fs.Q = v
	}
}

// Active reports whether f constrains a query.
// Transect is active whenever it is set, since "0" and "" are valid
// identifiers; every other field also needs a non-empty value.
func (fs FilterSet) Active(f Field) bool {
	v := fs.Value(f)
	if v == nil {
		return false
	}
	if f == FieldTransect {
		return true
	}
	return *v != ""
}

// Merge returns a copy of fs with change applied.
func (fs FilterSet) Merge(change FilterChange) FilterSet {
	out := fs.Clone()
	for f, v := range change {
		out.set(f, v)
	}
	return out
}

// Clone returns a deep copy, so callers never share pointers with the original.
func (fs FilterSet) Clone() FilterSet {
	var out FilterSet
	for _, f := range AllFields {
		out.set(f, fs.Value(f))
	}
	return out
}

// Map returns the active filters keyed by field name.
func (fs FilterSet) Map() map[string]string {
	m := make(map[string]string)
	for _, f := range AllFields {
		if fs.Active(f) {
			m[string(f)] = *fs.Value(f)
		}
	}
	return m
}
