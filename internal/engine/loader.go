package engine

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	arrowcsv "github.com/apache/arrow/go/v18/arrow/csv"

	"salaries/internal/models"
)

// Source CSV column names.
const (
	ColYear        = "ano"
	ColSeniority   = "senioridade"
	ColContract    = "contrato"
	ColCompanySize = "tamanho_empresa"
	ColRole        = "cargo"
	ColSalaryUSD   = "usd"
	ColRemote      = "remoto"
	ColCountryISO3 = "residencia_iso3"
)

// RequiredColumns lists the CSV columns the loader reads. Others are ignored.
var RequiredColumns = []string{
	ColYear, ColSeniority, ColContract, ColCompanySize,
	ColRole, ColSalaryUSD, ColRemote, ColCountryISO3,
}

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyInput is returned when the CSV has no header line.
var ErrEmptyInput = errors.New("empty csv input")

const loadChunkRows = 4096

// LoadColumnar parses salary CSV data into a ColumnStore.
// Rows keep their file order.
func LoadColumnar(r io.Reader) (*ColumnStore, error) {
	br := bufio.NewReader(r)
	line, header, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	index, err := requiredIndex(header)
	if err != nil {
		return nil, err
	}

	// Every column is read as text; typed parsing happens per row so errors
	// carry the row number.
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
	}

	// The header line is replayed so the reader fixes the field count from it
	// and rejects rows of a different width.
	rdr := arrowcsv.NewReader(io.MultiReader(strings.NewReader(line), br), arrow.NewSchema(fields, nil),
		arrowcsv.WithHeader(true),
		arrowcsv.WithChunk(loadChunkRows),
	)
	defer rdr.Release()

	b := newStoreBuilder(0)
	row := 0
	for rdr.Next() {
		cols, err := bindColumns(rdr.Record(), index)
		if err != nil {
			return nil, err
		}
		for i := 0; i < cols.len(); i++ {
			row++
			parsed, err := cols.record(i)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			b.add(parsed)
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("read csv after row %d: %w", row, err)
	}

	return b.build(), nil
}

// readHeader consumes the first line of the stream and returns it along with
// its column names.
func readHeader(br *bufio.Reader) (string, []string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read csv header: %w", err)
	}
	line = strings.TrimPrefix(line, "\ufeff")
	if strings.TrimSpace(line) == "" {
		return "", nil, ErrEmptyInput
	}

	names, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return "", nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}
	return line, names, nil
}

// requiredIndex maps each required column to its position in the header.
func requiredIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	index := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		i, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		index[name] = i
	}
	return index, nil
}

// batchColumns holds the required columns of one arrow record batch.
type batchColumns struct {
	year, seniority, contract, size, role, usd, remote, country *array.String
}

func bindColumns(rec arrow.Record, index map[string]int) (*batchColumns, error) {
	var cols batchColumns
	for name, dst := range map[string]**array.String{
		ColYear:        &cols.year,
		ColSeniority:   &cols.seniority,
		ColContract:    &cols.contract,
		ColCompanySize: &cols.size,
		ColRole:        &cols.role,
		ColSalaryUSD:   &cols.usd,
		ColRemote:      &cols.remote,
		ColCountryISO3: &cols.country,
	} {
		col := rec.Column(index[name])
		s, ok := col.(*array.String)
		if !ok {
			return nil, fmt.Errorf("column %s: unexpected type %s", name, col.DataType())
		}
		*dst = s
	}
	return &cols, nil
}

func (c *batchColumns) len() int { return c.usd.Len() }

func (c *batchColumns) record(i int) (models.Record, error) {
	year, err := parseYear(c.year.Value(i))
	if err != nil {
		return models.Record{}, err
	}
	usd, err := parseSalary(c.usd.Value(i))
	if err != nil {
		return models.Record{}, err
	}
	return models.Record{
		Year:        year,
		Seniority:   c.seniority.Value(i),
		Contract:    c.contract.Value(i),
		CompanySize: c.size.Value(i),
		Role:        c.role.Value(i),
		SalaryUSD:   usd,
		Remote:      c.remote.Value(i),
		CountryISO3: c.country.Value(i),
	}, nil
}

// parseSalary accepts finite decimal amounts only.
func parseSalary(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("column %s: missing value", ColSalaryUSD)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("column %s: invalid salary %q", ColSalaryUSD, s)
	}
	return v, nil
}

// parseYear accepts "2023" as well as float renderings such as "2023.0".
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("column %s: invalid year %q", ColYear, s)
	}
	return int(f), nil
}
