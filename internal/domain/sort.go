package domain

import (
	"fmt"
	"strings"
)

// SortField selects the column the market table is ordered by.
// Values are the API's field names.
type SortField string

const (
	SortByRank             SortField = "market_cap_rank"
	SortByPrice            SortField = "current_price"
	SortByPercentChange24h SortField = "price_change_percentage_24h"
	SortByMarketCap        SortField = "market_cap"
	SortByTotalVolume      SortField = "total_volume"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortConfig pairs a field with a direction.
type SortConfig struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort is rank ascending, i.e. biggest market cap first.
var DefaultSort = SortConfig{Field: SortByRank, Order: Ascending}

var shortSortNames = map[string]SortField{
	"rank":   SortByRank,
	"price":  SortByPrice,
	"change": SortByPercentChange24h,
	"cap":    SortByMarketCap,
	"volume": SortByTotalVolume,
}

// ParseSortField accepts either a short name (rank, price, change, cap, volume)
// or the API field name.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if f, ok := shortSortNames[s]; ok {
		return f, nil
	}
	switch f := SortField(s); f {
	case SortByRank, SortByPrice, SortByPercentChange24h, SortByMarketCap, SortByTotalVolume:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field: %q", s)
}

// APIOrder returns the value of the `order` query parameter.
// Rank ascending maps to market_cap_desc: rank 1 is the largest cap.
// Rank in either direction uses that ordering.
func (s SortConfig) APIOrder() string {
	if s.Field == SortByRank || s.Field == "" {
		return "market_cap_desc"
	}
	order := s.Order
	if order == "" {
		order = Ascending
	}
	return fmt.Sprintf("%s_%s", s.Field, order)
}

// Toggle returns the config a column-header click on field produces:
// clicking the active ascending column flips it to descending, anything else sorts ascending.
func (s SortConfig) Toggle(field SortField) SortConfig {
	if s.Field == field && s.Order == Ascending {
		return SortConfig{Field: field, Order: Descending}
	}
	return SortConfig{Field: field, Order: Ascending}
}

func (s SortConfig) String() string {
	return fmt.Sprintf("%s %s", s.Field, s.Order)
}
