package models

// Record is one salary observation.
type Record struct {
	Year        int     `json:"year"`
	Seniority   string  `json:"seniority"`
	Contract    string  `json:"contract"`
	CompanySize string  `json:"company_size"`
	Role        string  `json:"role"`
	SalaryUSD   float64 `json:"usd"`
	Remote      string  `json:"remote"`
	CountryISO3 string  `json:"country_iso3"`
}

// Selection holds the allowed values per filterable column.
// An empty slice allows nothing.
type Selection struct {
	Years        []int    `json:"years"`
	Seniorities  []string `json:"seniorities"`
	Contracts    []string `json:"contracts"`
	CompanySizes []string `json:"company_sizes"`
}

type Metrics struct {
	MeanSalary       float64 `json:"mean_salary"`
	MaxSalary        float64 `json:"max_salary"`
	RecordCount      int     `json:"record_count"`
	MostFrequentRole string  `json:"most_frequent_role"`
}

type RoleSalary struct {
	Role       string  `json:"role"`
	MeanSalary float64 `json:"mean_usd"`
}

type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type CountrySalary struct {
	CountryISO3 string  `json:"country_iso3"`
	MeanSalary  float64 `json:"mean_usd"`
}

// DashboardData is everything the dashboard page renders for one selection.
type DashboardData struct {
	Metrics         Metrics           `json:"metrics"`
	TopRoles        []RoleSalary      `json:"top_roles"`
	SalaryHistogram []Bucket          `json:"salary_histogram"`
	RemoteWork      []CategoryCount   `json:"remote_work"`
	CountrySalaries []CountrySalary   `json:"country_salaries"`
	CountryRole     string            `json:"country_role"`
	Notices         map[string]string `json:"notices,omitempty"`
}
