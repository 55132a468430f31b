package engine

import "salaries/internal/models"

// ColumnStore holds the salary table in Struct-of-Arrays format.
// It is built once and never mutated afterwards.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	Salaries []float64

	// Dictionary Encoded IDs (0..N)
	YearIDs      []int32
	SeniorityIDs []int32
	ContractIDs  []int32
	SizeIDs      []int32
	RoleIDs      []int32
	RemoteIDs    []int32
	CountryIDs   []int32

	// Dictionaries (ID -> Value), in first-seen order
	YearDict      []int
	SeniorityDict []string
	ContractDict  []string
	SizeDict      []string
	RoleDict      []string
	RemoteDict    []string
	CountryDict   []string
}

// NewColumnStore encodes records into a ColumnStore, preserving their order.
func NewColumnStore(records []models.Record) *ColumnStore {
	b := newStoreBuilder(len(records))
	for _, r := range records {
		b.add(r)
	}
	return b.build()
}

// Len returns the number of rows.
func (cs *ColumnStore) Len() int {
	return len(cs.Salaries)
}

// Record decodes row i.
func (cs *ColumnStore) Record(i int) models.Record {
	return models.Record{
		Year:        cs.YearDict[cs.YearIDs[i]],
		Seniority:   cs.SeniorityDict[cs.SeniorityIDs[i]],
		Contract:    cs.ContractDict[cs.ContractIDs[i]],
		CompanySize: cs.SizeDict[cs.SizeIDs[i]],
		Role:        cs.RoleDict[cs.RoleIDs[i]],
		SalaryUSD:   cs.Salaries[i],
		Remote:      cs.RemoteDict[cs.RemoteIDs[i]],
		CountryISO3: cs.CountryDict[cs.CountryIDs[i]],
	}
}

// All returns a view over every row.
func (cs *ColumnStore) All() View {
	rows := make([]int32, cs.Len())
	for i := range rows {
		rows[i] = int32(i)
	}
	return View{store: cs, rows: rows}
}

// dict assigns dense IDs to values in first-seen order.
type dict[T comparable] struct {
	ids    map[T]int32
	values []T
}

func newDict[T comparable]() *dict[T] {
	return &dict[T]{ids: make(map[T]int32)}
}

func (d *dict[T]) id(v T) int32 {
	if id, ok := d.ids[v]; ok {
		return id
	}
	id := int32(len(d.values))
	d.values = append(d.values, v)
	d.ids[v] = id
	return id
}

type storeBuilder struct {
	store     *ColumnStore
	years     *dict[int]
	seniority *dict[string]
	contract  *dict[string]
	size      *dict[string]
	role      *dict[string]
	remote    *dict[string]
	country   *dict[string]
}

func newStoreBuilder(capacity int) *storeBuilder {
	return &storeBuilder{
		store: &ColumnStore{
			Salaries:     make([]float64, 0, capacity),
			YearIDs:      make([]int32, 0, capacity),
			SeniorityIDs: make([]int32, 0, capacity),
			ContractIDs:  make([]int32, 0, capacity),
			SizeIDs:      make([]int32, 0, capacity),
			RoleIDs:      make([]int32, 0, capacity),
			RemoteIDs:    make([]int32, 0, capacity),
			CountryIDs:   make([]int32, 0, capacity),
		},
		years:     newDict[int](),
		seniority: newDict[string](),
		contract:  newDict[string](),
		size:      newDict[string](),
		role:      newDict[string](),
		remote:    newDict[string](),
		country:   newDict[string](),
	}
}

func (b *storeBuilder) add(r models.Record) {
	cs := b.store
	cs.Salaries = append(cs.Salaries, r.SalaryUSD)
	cs.YearIDs = append(cs.YearIDs, b.years.id(r.Year))
	cs.SeniorityIDs = append(cs.SeniorityIDs, b.seniority.id(r.Seniority))
	cs.ContractIDs = append(cs.ContractIDs, b.contract.id(r.Contract))
	cs.SizeIDs = append(cs.SizeIDs, b.size.id(r.CompanySize))
	cs.RoleIDs = append(cs.RoleIDs, b.role.id(r.Role))
	cs.RemoteIDs = append(cs.RemoteIDs, b.remote.id(r.Remote))
	cs.CountryIDs = append(cs.CountryIDs, b.country.id(r.CountryISO3))
}

func (b *storeBuilder) build() *ColumnStore {
	cs := b.store
	cs.YearDict = b.years.values
	cs.SeniorityDict = b.seniority.values
	cs.ContractDict = b.contract.values
	cs.SizeDict = b.size.values
	cs.RoleDict = b.role.values
	cs.RemoteDict = b.remote.values
	cs.CountryDict = b.country.values
	return cs
}
