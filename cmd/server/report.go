package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"salaries/internal/dataset"
	"salaries/internal/engine"
	"salaries/internal/logging"
	"salaries/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Width(24)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard metrics for a filter selection",
		Long: `Load the dataset, apply the filters and print the summary metrics and chart data.
Filters default to every value; pass a filter with an empty value (--seniority=) to select nothing.`,
		RunE: runReport,
	}
	cmd.Flags().StringSlice("year", nil, "Years to include")
	cmd.Flags().StringSlice("seniority", nil, "Seniority levels to include")
	cmd.Flags().StringSlice("contract", nil, "Contract types to include")
	cmd.Flags().StringSlice("company-size", nil, "Company sizes to include")
	cmd.Flags().Int("top", engine.DefaultTopRoles, "Number of roles in the top roles chart")
	cmd.Flags().Int("bins", engine.DefaultHistogramBins, "Number of salary histogram buckets")
	cmd.Flags().String("role", engine.DefaultCountryMapRole, "Role for the mean salary by country chart")
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	src := dataset.NewSource(cfg.DataURL,
		dataset.WithTimeout(cfg.FetchTimeout),
		dataset.WithLogger(logger),
	)
	store, err := src.Store(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	sel, err := selectionFromFlags(cmd, engine.FilterOptions(store))
	if err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	bins, _ := cmd.Flags().GetInt("bins")
	role, _ := cmd.Flags().GetString("role")

	data := engine.ApplyFilters(store, sel).Aggregate(engine.AggregateOptions{
		TopRoles:      top,
		HistogramBins: bins,
		CountryRole:   role,
	})
	renderReport(cmd.OutOrStdout(), data)
	return nil
}

// selectionFromFlags narrows the default selection to the filter flags that were set.
func selectionFromFlags(cmd *cobra.Command, sel models.Selection) (models.Selection, error) {
	flags := cmd.Flags()

	if flags.Changed("year") {
		raw, _ := flags.GetStringSlice("year")
		years := make([]int, 0, len(raw))
		for _, v := range raw {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			y, err := strconv.Atoi(v)
			if err != nil {
				return models.Selection{}, fmt.Errorf("invalid --year %q", v)
			}
			years = append(years, y)
		}
		sel.Years = years
	}

	for name, dst := range map[string]*[]string{
		"seniority":    &sel.Seniorities,
		"contract":     &sel.Contracts,
		"company-size": &sel.CompanySizes,
	} {
		if flags.Changed(name) {
			values, _ := flags.GetStringSlice(name)
			*dst = values
		}
	}
	return sel, nil
}

func formatUSD(v float64) string {
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func renderReport(w io.Writer, data *models.DashboardData) {
	m := data.Metrics
	fmt.Fprintln(w, headingStyle.Render("Salary metrics (annual, USD)"))
	fmt.Fprintln(w, labelStyle.Render("Mean salary")+formatUSD(m.MeanSalary))
	fmt.Fprintln(w, labelStyle.Render("Max salary")+formatUSD(m.MaxSalary))
	fmt.Fprintln(w, labelStyle.Render("Records")+humanize.Comma(int64(m.RecordCount)))
	fmt.Fprintln(w, labelStyle.Render("Most frequent role")+m.MostFrequentRole)

	if len(data.Notices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, noticeStyle.Render("No data for the current filters."))
		return
	}

	fmt.Fprintln(w, headingStyle.Render("Top roles by mean salary"))
	// Ascending order suits a bar chart; a list reads better largest first.
	for i := len(data.TopRoles) - 1; i >= 0; i-- {
		r := data.TopRoles[i]
		fmt.Fprintln(w, labelStyle.Render(r.Role)+formatUSD(r.MeanSalary))
	}

	fmt.Fprintln(w, headingStyle.Render("Salary distribution"))
	for _, b := range data.SalaryHistogram {
		if b.Count == 0 {
			continue
		}
		fmt.Fprintln(w, labelStyle.Render(formatUSD(b.Lower)+" - "+formatUSD(b.Upper))+strconv.Itoa(b.Count))
	}

	fmt.Fprintln(w, headingStyle.Render("Work type"))
	for _, c := range data.RemoteWork {
		share := float64(c.Count) / float64(m.RecordCount) * 100
		fmt.Fprintf(w, "%s%d (%.1f%%)\n", labelStyle.Render(c.Category), c.Count, share)
	}

	fmt.Fprintln(w, headingStyle.Render("Mean salary by country: "+data.CountryRole))
	if len(data.CountrySalaries) == 0 {
		fmt.Fprintln(w, noticeStyle.Render("No "+data.CountryRole+" records for the current filters."))
	}
	for _, c := range data.CountrySalaries {
		fmt.Fprintln(w, labelStyle.Render(c.CountryISO3)+formatUSD(c.MeanSalary))
	}
}
