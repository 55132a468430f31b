package engine

import (
	"sort"

	"salaries/internal/models"
)

// View is a filtered subset of a ColumnStore, held as row indices in table order.
type View struct {
	store *ColumnStore
	rows  []int32
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.rows) }

// Records decodes rows [offset, offset+limit) of the view.
// A non-positive limit means "until the end".
func (v View) Records(offset, limit int) []models.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(v.rows) {
		return []models.Record{}
	}
	end := len(v.rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]models.Record, 0, end-offset)
	for _, r := range v.rows[offset:end] {
		out = append(out, v.store.Record(int(r)))
	}
	return out
}

// FilterOptions returns the sorted distinct values of every filterable column.
// It doubles as the default Selection, which lets every row through.
func FilterOptions(cs *ColumnStore) models.Selection {
	years := append([]int(nil), cs.YearDict...)
	sort.Ints(years)
	return models.Selection{
		Years:        nonNil(years),
		Seniorities:  sortedCopy(cs.SeniorityDict),
		Contracts:    sortedCopy(cs.ContractDict),
		CompanySizes: sortedCopy(cs.SizeDict),
	}
}

// ApplyFilters returns the rows matching the selection.
// Columns are AND-combined; values within a column are OR-combined.
// An empty value set for any column selects nothing.
func ApplyFilters(cs *ColumnStore, sel models.Selection) View {
	years := allowedIDs(cs.YearDict, sel.Years)
	seniorities := allowedIDs(cs.SeniorityDict, sel.Seniorities)
	contracts := allowedIDs(cs.ContractDict, sel.Contracts)
	sizes := allowedIDs(cs.SizeDict, sel.CompanySizes)

	rows := make([]int32, 0, cs.Len())
	if years == nil || seniorities == nil || contracts == nil || sizes == nil {
		return View{store: cs, rows: rows}
	}

	for i := 0; i < cs.Len(); i++ {
		if years[cs.YearIDs[i]] &&
			seniorities[cs.SeniorityIDs[i]] &&
			contracts[cs.ContractIDs[i]] &&
			sizes[cs.SizeIDs[i]] {
			rows = append(rows, int32(i))
		}
	}
	return View{store: cs, rows: rows}
}

// allowedIDs builds a mask indexed by dictionary ID.
// It returns nil when no dictionary entry is allowed.
func allowedIDs[T comparable](dictValues, allowed []T) []bool {
	set := make(map[T]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	mask := make([]bool, len(dictValues))
	found := false
	for id, v := range dictValues {
		if _, ok := set[v]; ok {
			mask[id] = true
			found = true
		}
	}
	if !found {
		return nil
	}
	return mask
}

func sortedCopy(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}

func nonNil(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
