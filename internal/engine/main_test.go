package engine

import (
	"testing"

	"go.uber.org/goleak"

	"salaries/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scenarioStore returns the two-row table used across the engine tests.
func scenarioStore() *ColumnStore {
	return NewColumnStore([]models.Record{
		{Year: 2023, Seniority: "senior", Contract: "full-time", CompanySize: "large", Role: "Data Scientist", SalaryUSD: 150000, Remote: "remote", CountryISO3: "USA"},
		{Year: 2023, Seniority: "junior", Contract: "full-time", CompanySize: "small", Role: "Data Analyst", SalaryUSD: 60000, Remote: "hybrid", CountryISO3: "BRA"},
	})
}

// sampleStore is a larger table with repeated roles and countries.
func sampleStore() *ColumnStore {
	return NewColumnStore([]models.Record{
		{Year: 2022, Seniority: "mid", Contract: "full-time", CompanySize: "medium", Role: "Data Engineer", SalaryUSD: 100000, Remote: "remote", CountryISO3: "USA"},
		{Year: 2023, Seniority: "senior", Contract: "full-time", CompanySize: "large", Role: "Data Scientist", SalaryUSD: 180000, Remote: "on-site", CountryISO3: "USA"},
		{Year: 2023, Seniority: "senior", Contract: "contract", CompanySize: "large", Role: "Data Scientist", SalaryUSD: 120000, Remote: "remote", CountryISO3: "GBR"},
		{Year: 2024, Seniority: "junior", Contract: "full-time", CompanySize: "small", Role: "Data Analyst", SalaryUSD: 50000, Remote: "hybrid", CountryISO3: "BRA"},
		{Year: 2024, Seniority: "executive", Contract: "full-time", CompanySize: "medium", Role: "Head of Data", SalaryUSD: 250000, Remote: "remote", CountryISO3: "USA"},
		{Year: 2024, Seniority: "mid", Contract: "freelance", CompanySize: "small", Role: "Data Scientist", SalaryUSD: 90000, Remote: "remote", CountryISO3: "USA"},
	})
}
