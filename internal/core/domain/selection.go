package domain

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type SelectionEntry struct {
	ItemCode         string          `json:"item_code"`
	Quantity         int             `json:"quantity"`
	DiscountOverride decimal.Decimal `json:"discount_override"`
}

// A Selection is the cart of one session.
//
// Entries are unique by item code and kept in first-insertion order.
type Selection struct {
	entries []SelectionEntry
}

// Add upserts e by item code. A repeated add replaces quantity and
// discount. Entries with a non-positive quantity are ignored and
// Add reports false.
func (s *Selection) Add(e SelectionEntry) (bool, error) {
	if e.Quantity <= 0 {
		return false, nil
	}
	if e.DiscountOverride.IsNegative() || e.DiscountOverride.GreaterThan(hundred) {
		return false, ErrInvalidDiscount
	}

	i := s.index(e.ItemCode)
	if i == -1 {
		s.entries = append(s.entries, e)
		return true, nil
	}
	s.entries[i] = e
	return true, nil
}

// Remove deletes the entry for itemCode and reports whether it existed.
func (s *Selection) Remove(itemCode string) bool {
	i := s.index(itemCode)
	if i == -1 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

func (s *Selection) Clear() {
	s.entries = nil
}

func (s Selection) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in order.
func (s Selection) Entries() []SelectionEntry {
	return slices.Clone(s.entries)
}

func (s Selection) index(itemCode string) int {
	return slices.IndexFunc(s.entries, func(e SelectionEntry) bool {
		return e.ItemCode == itemCode
	})
}

func (s Selection) MarshalJSON() ([]byte, error) {
	if s.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.entries)
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var entries []SelectionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	s.entries = nil
	for _, e := range entries {
		if _, err := s.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// A SelectionLine is a selection entry priced against the catalog.
type SelectionLine struct {
	SelectionEntry
	CatalogDescription string
	ListPrice          decimal.NullDecimal
	SalesPersonLimit   decimal.NullDecimal
	NetUnitPrice       decimal.NullDecimal
	LineTotal          decimal.NullDecimal
	ExceedsLimit       bool
}
