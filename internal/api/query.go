package api

import (
	"fmt"
	"net/url"
	"strconv"

	"salaries/internal/models"
)

// Filter query parameters. Each may repeat; an absent parameter keeps every
// value and a parameter given only empty values selects nothing.
const (
	ParamYear        = "year"
	ParamSeniority   = "seniority"
	ParamContract    = "contract"
	ParamCompanySize = "company_size"
)

func selectionFromQuery(q url.Values, defaults models.Selection) (models.Selection, error) {
	sel := defaults

	if values, ok := q[ParamYear]; ok {
		years := make([]int, 0, len(values))
		for _, v := range nonEmpty(values) {
			y, err := strconv.Atoi(v)
			if err != nil {
				return models.Selection{}, fmt.Errorf("invalid %s %q", ParamYear, v)
			}
			years = append(years, y)
		}
		sel.Years = years
	}
	if values, ok := q[ParamSeniority]; ok {
		sel.Seniorities = nonEmpty(values)
	}
	if values, ok := q[ParamContract]; ok {
		sel.Contracts = nonEmpty(values)
	}
	if values, ok := q[ParamCompanySize]; ok {
		sel.CompanySizes = nonEmpty(values)
	}
	return sel, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
