package query

import (
	"sort"

	"github.com/feral-file/ff-market-sync/internal/domain"
)

// maxAttributeCombinations bounds the expansion of an attribute filter
const maxAttributeCombinations = 256

// ExpandAttributes expands a trait -> accepted values filter into every fully specified
// combination, one value per trait. A token matches the filter when it carries all the
// attributes of at least one combination. Traits are ordered by name; traits without
// values are ignored.
func ExpandAttributes(filter map[string][]string) [][]domain.Attribute {
	traits := make([]string, 0, len(filter))
	for trait, values := range filter {
		if len(values) > 0 {
			traits = append(traits, trait)
		}
	}
	if len(traits) == 0 {
		return nil
	}
	sort.Strings(traits)

	combinations := [][]domain.Attribute{{}}
	for _, trait := range traits {
		values := unique(filter[trait])
		next := make([][]domain.Attribute, 0, len(combinations)*len(values))
		for _, combination := range combinations {
			for _, value := range values {
				expanded := make([]domain.Attribute, len(combination), len(combination)+1)
				copy(expanded, combination)
				next = append(next, append(expanded, domain.Attribute{TraitType: trait, Value: value}))
			}
		}
		combinations = next
	}
	return combinations
}

// countAttributeCombinations returns the size of the expansion without building it
func countAttributeCombinations(filter map[string][]string) int {
	count := 1
	found := false
	for _, values := range filter {
		if n := len(unique(values)); n > 0 {
			found = true
			count *= n
			if count > maxAttributeCombinations {
				return count
			}
		}
	}
	if !found {
		return 0
	}
	return count
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
