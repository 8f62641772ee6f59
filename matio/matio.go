package matio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/genemod/expr"
)

var (
	// ErrEmptyTable is returned when the input has no data rows.
	ErrEmptyTable = errors.New("empty table")
)

// ErrBadRecord is returned when a row cannot be parsed.
type ErrBadRecord struct {
	// Line is the 1-based line number of the offending row.
	Line int
	// Detail describes what is wrong with the row.
	Detail string

	cause error
}

func (e *ErrBadRecord) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Detail)
}

func (e *ErrBadRecord) Unwrap() error {
	return e.cause
}

// Options configures table parsing.
type Options struct {
	// Comma is the field delimiter.
	Comma rune
}

// DefaultOptions parse tab-separated tables.
var DefaultOptions = Options{
	Comma: '\t',
}

// WithComma sets the field delimiter.
func WithComma(comma rune) func(*Options) {
	return func(o *Options) {
		o.Comma = comma
	}
}

// ReadMatrix parses a genes-by-cells expression table. The first header
// field is a corner label and is ignored, the rest are cell identifiers.
// Every following row holds a gene identifier and one value per cell.
func ReadMatrix(r io.Reader, optFns ...func(o *Options)) (*expr.Matrix, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, &ErrBadRecord{Line: 1, Detail: "header has no cell columns"}
	}

	cells := make([]string, len(header)-1)
	copy(cells, header[1:])

	var (
		genes  []string
		values []float64
		line   = 1
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) != len(header) {
			return nil, &ErrBadRecord{
				Line:   line,
				Detail: fmt.Sprintf("got %d fields, want %d", len(record), len(header)),
			}
		}

		genes = append(genes, record[0])

		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, &ErrBadRecord{
					Line:   line,
					Detail: fmt.Sprintf("bad value %q", field),
					cause:  err,
				}
			}
			values = append(values, v)
		}
	}

	if len(genes) == 0 {
		return nil, ErrEmptyTable
	}

	return expr.NewMatrix(genes, cells, values)
}

// ReadMetadata parses a cell metadata table. The header must name a
// "cell" and a "cluster" column; a "sample" column is optional. Extra
// columns are ignored.
func ReadMetadata(r io.Reader, optFns ...func(o *Options)) (*expr.Metadata, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cellCol, clusterCol, sampleCol := -1, -1, -1

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "cell":
			cellCol = i
		case "cluster":
			clusterCol = i
		case "sample":
			sampleCol = i
		}
	}

	if cellCol < 0 || clusterCol < 0 {
		return nil, &ErrBadRecord{Line: 1, Detail: `header must name "cell" and "cluster" columns`}
	}

	info := make(map[string]expr.CellInfo)
	line := 1

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) != len(header) {
			return nil, &ErrBadRecord{
				Line:   line,
				Detail: fmt.Sprintf("got %d fields, want %d", len(record), len(header)),
			}
		}

		cell := record[cellCol]
		if _, ok := info[cell]; ok {
			return nil, &ErrBadRecord{
				Line:   line,
				Detail: fmt.Sprintf("duplicate cell %q", cell),
			}
		}

		ci := expr.CellInfo{Cluster: record[clusterCol]}
		if sampleCol >= 0 {
			ci.Sample = record[sampleCol]
		}
		info[cell] = ci
	}

	if len(info) == 0 {
		return nil, ErrEmptyTable
	}

	return expr.NewMetadata(info), nil
}

// OpenMatrix loads an expression table from a file. Files ending in
// ".gz" are decompressed, and ".csv" (or ".csv.gz") switches the
// delimiter to a comma.
func OpenMatrix(name string) (*expr.Matrix, error) {
	r, closeFn, opts, err := openTable(name)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	m, err := ReadMatrix(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return m, nil
}

// OpenMetadata loads a cell metadata table from a file, with the same
// name conventions as OpenMatrix.
func OpenMetadata(name string) (*expr.Metadata, error) {
	r, closeFn, opts, err := openTable(name)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	md, err := ReadMetadata(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return md, nil
}

func openTable(name string) (io.Reader, func(), []func(o *Options), error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, nil, err
	}

	var r io.Reader = f

	closeFn := func() { f.Close() }
	base := name

	if strings.HasSuffix(base, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, nil, fmt.Errorf("open %s: %w", name, err)
		}
		r = gz
		closeFn = func() {
			gz.Close()
			f.Close()
		}
		base = strings.TrimSuffix(base, ".gz")
	}

	var opts []func(o *Options)
	if strings.HasSuffix(base, ".csv") {
		opts = append(opts, WithComma(','))
	}

	return r, closeFn, opts, nil
}
