package auc

import (
	"sort"
	"strings"
)

// DefaultDelimiter separates a metabolite's base name from its variant suffix,
// e.g. "GlcNAc#[M+H]+" and "GlcNAc#[M+Na]+" are both variants of "GlcNAc".
const DefaultDelimiter = "#"

// Combine collapses matrix rows sharing a base name into summed rows. The base
// name is the portion of the row name before the first delimiter; a name
// without the delimiter forms its own group.
//
// A row belongs to base name a iff the row name equals a or starts with
// a+delimiter. The delimiter boundary matters: base "Glc" must not absorb
// "Glucose". Combined rows are ordered lexicographically by base name.
func Combine(m *Matrix, delimiter string) *Matrix {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	baseSet := make(map[string]bool)
	for _, name := range m.names {
		base, _, _ := strings.Cut(name, delimiter)
		baseSet[base] = true
	}
	bases := make([]string, 0, len(baseSet))
	for base := range baseSet {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	combined := NewMatrix(bases)
	for _, base := range bases {
		for _, name := range m.names {
			if name != base && !strings.HasPrefix(name, base+delimiter) {
				continue
			}
			for _, file := range m.files {
				combined.SetCell(base, file, combined.Cell(base, file)+m.Cell(name, file))
			}
		}
	}
	return combined
}
