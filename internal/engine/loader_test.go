package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salaries/internal/models"
)

// Same column layout as the published dataset, including columns the loader skips.
const sampleCSV = `ano,senioridade,contrato,cargo,salario,moeda,usd,residencia,remoto,empresa,tamanho_empresa,residencia_iso3
2025,senior,integral,Data Scientist,150000,USD,150000.0,US,remoto,US,grande,USA
2024,junior,integral,Data Analyst,300000,BRL,60000.5,BR,hibrido,BR,pequena,BRA
2025.0,pleno,contrato,Data Scientist,90000,EUR,97000.0,DE,presencial,DE,media,DEU
`

func TestLoadColumnar(t *testing.T) {
	store, err := LoadColumnar(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Expect 3 rows
	require.Equal(t, 3, store.Len())

	assert.Equal(t, models.Record{
		Year:        2025,
		Seniority:   "senior",
		Contract:    "integral",
		CompanySize: "grande",
		Role:        "Data Scientist",
		SalaryUSD:   150000,
		Remote:      "remoto",
		CountryISO3: "USA",
	}, store.Record(0))

	assert.Equal(t, 60000.5, store.Salaries[1])
	assert.Equal(t, 2025, store.Record(2).Year)

	// Dictionary Checks
	assert.Equal(t, []int{2025, 2024}, store.YearDict)
	assert.Len(t, store.RoleDict, 2)
	assert.Len(t, store.CountryDict, 3)
}

func TestLoadColumnar_HeaderOnly(t *testing.T) {
	header := strings.Join(RequiredColumns, ",")

	for name, input := range map[string]string{
		"trailing newline": header + "\n",
		"no newline":       header,
		"crlf":             header + "\r\n",
	} {
		t.Run(name, func(t *testing.T) {
			store, err := LoadColumnar(strings.NewReader(input))
			require.NoError(t, err)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestLoadColumnar_EmptyInput(t *testing.T) {
	_, err := LoadColumnar(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyInput), "got %v", err)
}

func TestLoadColumnar_ByteOrderMark(t *testing.T) {
	csv := "\ufeff" + strings.Join(RequiredColumns, ",") + "\n" +
		"2025,senior,integral,grande,Data Scientist,150000,remoto,USA\n"

	store, err := LoadColumnar(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2025, store.Record(0).Year)
}

func TestLoadColumnar_MissingColumn(t *testing.T) {
	csv := "ano,senioridade,contrato,cargo,usd,remoto,residencia_iso3\n" +
		"2025,senior,integral,Data Scientist,150000,remoto,USA\n"

	_, err := LoadColumnar(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn), "got %v", err)
	assert.Contains(t, err.Error(), ColCompanySize)
}

func TestLoadColumnar_InvalidSalary(t *testing.T) {
	tests := []struct {
		name string
		usd  string
		want string
	}{
		{"not a number", "abc", `invalid salary "abc"`},
		{"nan", "NaN", `invalid salary "NaN"`},
		{"infinite", "+Inf", `invalid salary "+Inf"`},
		{"empty", "", "missing value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := strings.Join(RequiredColumns, ",") + "\n" +
				"2025,senior,integral,grande,Data Scientist,150000,remoto,USA\n" +
				"2024,junior,integral,pequena,Data Analyst," + tt.usd + ",hibrido,BRA\n"

			_, err := LoadColumnar(strings.NewReader(csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
			assert.Contains(t, err.Error(), ColSalaryUSD)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadColumnar_RaggedRow(t *testing.T) {
	header := strings.Join(RequiredColumns, ",") + "\n"
	good := "2025,senior,integral,grande,Data Scientist,150000,remoto,USA\n"

	for name, bad := range map[string]string{
		"too many fields": "2024,junior,integral,pequena,Data Analyst,60000,hibrido,BRA,extra\n",
		"too few fields":  "2024,junior,integral,pequena,Data Analyst,60000\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadColumnar(strings.NewReader(header + good + bad))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "read csv")
		})
	}
}

func TestLoadColumnar_InvalidYear(t *testing.T) {
	csv := strings.Join(RequiredColumns, ",") + "\n" +
		"2025,senior,integral,grande,Data Scientist,150000,remoto,USA\n" +
		"next,junior,integral,pequena,Data Analyst,60000,hibrido,BRA\n"

	_, err := LoadColumnar(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), `invalid year "next"`)
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"2023", 2023, false},
		{" 2024 ", 2024, false},
		{"2022.0", 2022, false},
		{"2022.5", 0, true},
		{"", 0, true},
		{"twenty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseYear(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
