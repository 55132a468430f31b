package engine

import (
	"math"
	"sort"

	"salaries/internal/models"
)

const (
	DefaultTopRoles       = 10
	DefaultHistogramBins  = 30
	DefaultCountryMapRole = "Data Scientist"
)

// Notice keys, one per chart on the dashboard.
const (
	ChartTopRoles        = "top_roles"
	ChartSalaryHistogram = "salary_histogram"
	ChartRemoteWork      = "remote_work"
	ChartCountrySalaries = "country_salaries"
)

var emptyNotices = map[string]string{
	ChartTopRoles:        "No data to display in the roles chart.",
	ChartSalaryHistogram: "No data to display in the salary distribution chart.",
	ChartRemoteWork:      "No data to display in the work type chart.",
	ChartCountrySalaries: "No data to display in the countries chart.",
}

type aggStats struct {
	Sum   float64
	Count int
}

func (a aggStats) mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// Metrics computes the four summary figures. An empty view yields the zero value.
//
// Ties for the most frequent role go to the lexicographically smallest role.
func (v View) Metrics() models.Metrics {
	if v.Len() == 0 {
		return models.Metrics{}
	}

	cs := v.store
	roleCounts := make([]int, len(cs.RoleDict))
	var sum float64
	maxSalary := math.Inf(-1)

	for _, r := range v.rows {
		usd := cs.Salaries[r]
		sum += usd
		if usd > maxSalary {
			maxSalary = usd
		}
		roleCounts[cs.RoleIDs[r]]++
	}

	best := -1
	for id, n := range roleCounts {
		if n == 0 {
			continue
		}
		if best == -1 || n > roleCounts[best] ||
			(n == roleCounts[best] && cs.RoleDict[id] < cs.RoleDict[best]) {
			best = id
		}
	}

	return models.Metrics{
		MeanSalary:       sum / float64(v.Len()),
		MaxSalary:        maxSalary,
		RecordCount:      v.Len(),
		MostFrequentRole: cs.RoleDict[best],
	}
}

// TopRolesBySalary returns the k roles with the highest mean salary,
// ordered ascending by mean so a horizontal bar chart draws the largest on top.
func (v View) TopRolesBySalary(k int) []models.RoleSalary {
	out := make([]models.RoleSalary, 0)
	if k <= 0 || v.Len() == 0 {
		return out
	}

	cs := v.store
	stats := make([]aggStats, len(cs.RoleDict))
	for _, r := range v.rows {
		s := &stats[cs.RoleIDs[r]]
		s.Sum += cs.Salaries[r]
		s.Count++
	}

	for id, s := range stats {
		if s.Count > 0 {
			out = append(out, models.RoleSalary{Role: cs.RoleDict[id], MeanSalary: s.mean()})
		}
	}

	// Highest first, so the cut keeps the k largest.
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanSalary != out[j].MeanSalary {
			return out[i].MeanSalary > out[j].MeanSalary
		}
		return out[i].Role < out[j].Role
	})
	if len(out) > k {
		out = out[:k]
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SalaryHistogram splits [min, max] of the view's salaries into equal-width
// buckets. The last bucket is closed on the right. An empty view yields no buckets.
func (v View) SalaryHistogram(bins int) []models.Bucket {
	out := make([]models.Bucket, 0)
	if bins <= 0 || v.Len() == 0 {
		return out
	}

	cs := v.store
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range v.rows {
		usd := cs.Salaries[r]
		lo = math.Min(lo, usd)
		hi = math.Max(hi, usd)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, r := range v.rows {
		idx := int((cs.Salaries[r] - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	for i, n := range counts {
		upper := lo + float64(i+1)*width
		if i == bins-1 {
			upper = hi
		}
		out = append(out, models.Bucket{
			Lower: lo + float64(i)*width,
			Upper: upper,
			Count: n,
		})
	}
	return out
}

// RemoteWorkDistribution counts rows per remote-work type, most common first.
func (v View) RemoteWorkDistribution() []models.CategoryCount {
	if v.Len() == 0 {
		return []models.CategoryCount{}
	}
	cs := v.store
	counts := make([]int, len(cs.RemoteDict))
	for _, r := range v.rows {
		counts[cs.RemoteIDs[r]]++
	}

	out := make([]models.CategoryCount, 0, len(counts))
	for id, n := range counts {
		if n > 0 {
			out = append(out, models.CategoryCount{Category: cs.RemoteDict[id], Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MeanSalaryByCountry averages the salaries of rows with the given role,
// grouped by residence country and ordered by ISO3 code.
func (v View) MeanSalaryByCountry(role string) []models.CountrySalary {
	out := make([]models.CountrySalary, 0)
	if v.Len() == 0 {
		return out
	}
	cs := v.store

	roleID := int32(-1)
	for id, name := range cs.RoleDict {
		if name == role {
			roleID = int32(id)
			break
		}
	}
	if roleID < 0 {
		return out
	}

	stats := make([]aggStats, len(cs.CountryDict))
	for _, r := range v.rows {
		if cs.RoleIDs[r] != roleID {
			continue
		}
		s := &stats[cs.CountryIDs[r]]
		s.Sum += cs.Salaries[r]
		s.Count++
	}

	for id, s := range stats {
		if s.Count > 0 {
			out = append(out, models.CountrySalary{CountryISO3: cs.CountryDict[id], MeanSalary: s.mean()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryISO3 < out[j].CountryISO3 })
	return out
}

// AggregateOptions parameterizes Aggregate. Zero fields take the defaults.
type AggregateOptions struct {
	TopRoles      int
	HistogramBins int
	CountryRole   string
}

// WithDefaults fills zero fields with the package defaults.
func (o AggregateOptions) WithDefaults() AggregateOptions {
	if o.TopRoles <= 0 {
		o.TopRoles = DefaultTopRoles
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = DefaultHistogramBins
	}
	if o.CountryRole == "" {
		o.CountryRole = DefaultCountryMapRole
	}
	return o
}

// Aggregate computes the metrics and every chart dataset for the view.
// When the view is empty each chart gets a "no data" notice instead of data.
func (v View) Aggregate(opts AggregateOptions) *models.DashboardData {
	opts = opts.WithDefaults()

	data := &models.DashboardData{
		Metrics:         v.Metrics(),
		TopRoles:        v.TopRolesBySalary(opts.TopRoles),
		SalaryHistogram: v.SalaryHistogram(opts.HistogramBins),
		RemoteWork:      v.RemoteWorkDistribution(),
		CountrySalaries: v.MeanSalaryByCountry(opts.CountryRole),
		CountryRole:     opts.CountryRole,
	}

	if v.Len() == 0 {
		data.Notices = make(map[string]string, len(emptyNotices))
		for chart, msg := range emptyNotices {
			data.Notices[chart] = msg
		}
	}
	return data
}
