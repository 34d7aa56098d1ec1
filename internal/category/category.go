// Package category holds the closed set of contest categories and the entry fee schedule.
package category

import "sort"

type Category string

const (
	BestVideo       Category = "BEST_VIDEO"
	BestDirection   Category = "BEST_DIRECTION"
	BestPhotography Category = "BEST_PHOTOGRAPHY"
	BestArt         Category = "BEST_ART"
	BestEditing     Category = "BEST_EDITING"
	BestColor       Category = "BEST_COLOR"
)

var all = []Category{BestVideo, BestDirection, BestPhotography, BestArt, BestEditing, BestColor}

// Fees in cents.
const (
	TeamFeeCents              int64 = 695
	IndividualBaseFeeCents    int64 = 495
	IndividualAdditionalCents int64 = 200
)

// Prize values in euros.
const (
	TeamPrizeValue       = 3000
	IndividualPrizeValue = 2000
)

// All returns every category in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

func (c Category) Valid() bool {
	for _, known := range all {
		if c == known {
			return true
		}
	}
	return false
}

// IsTeam reports whether c is the flagship team category.
func (c Category) IsTeam() bool { return c == BestVideo }

// PrizeValue is the award value for the category.
func (c Category) PrizeValue() float64 {
	if c.IsTeam() {
		return TeamPrizeValue
	}
	return IndividualPrizeValue
}

// Parse validates each name and returns the deduplicated set in display order,
// plus the names that were not recognised.
func Parse(names []string) (valid []Category, invalid []string) {
	seen := make(map[Category]bool, len(names))
	for _, name := range names {
		c := Category(name)
		if !c.Valid() {
			invalid = append(invalid, name)
			continue
		}
		seen[c] = true
	}
	for _, c := range all {
		if seen[c] {
			valid = append(valid, c)
		}
	}
	return valid, invalid
}

// PriceCents computes the entry fee for a set of categories. Duplicates count once.
func PriceCents(cats []Category) int64 {
	var hasTeam bool
	individual := map[Category]bool{}
	for _, c := range cats {
		if !c.Valid() {
			continue
		}
		if c.IsTeam() {
			hasTeam = true
		} else {
			individual[c] = true
		}
	}

	var total int64
	if hasTeam {
		total += TeamFeeCents
	}
	if n := int64(len(individual)); n > 0 {
		total += IndividualBaseFeeCents + IndividualAdditionalCents*(n-1)
	}
	return total
}

// Covers reports whether have contains every category in want.
func Covers(have, want []Category) bool {
	set := make(map[Category]bool, len(have))
	for _, c := range have {
		set[c] = true
	}
	for _, c := range want {
		if !set[c] {
			return false
		}
	}
	return true
}

// Strings returns the names sorted, for stable output.
func Strings(cats []Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	sort.Strings(out)
	return out
}
