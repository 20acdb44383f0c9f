package domain

// Predicates is the set of filters applied to the combined table.
//
// A zero field is inactive. Active predicates combine with AND,
// Query matches any of OEE number, catalog and long description.
type Predicates struct {
	OEE             string
	Catalog         string
	LongDescription string
	StockingTypes   []string
	InStock         bool
	Query           string
}

func (p Predicates) Empty() bool {
	return p.OEE == "" &&
		p.Catalog == "" &&
		p.LongDescription == "" &&
		len(p.StockingTypes) == 0 &&
		!p.InStock &&
		p.Query == ""
}
