// Package ingest loads transaction rows from delimited exports into observations
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aouyang1/go-demandforecaster/timedataset"
	"github.com/shopspring/decimal"
)

const (
	DefaultSeparator      = ";"
	DefaultDateColumn     = "Factuurdatum"
	DefaultProductColumn  = "Grondstof"
	DefaultQuantityColumn = "Liter"
)

// DefaultDateLayouts are tried in order. Day first layouts precede ISO layouts.
var DefaultDateLayouts = []string{
	"02-01-2006",
	"2-1-2006",
	"02-01-2006 15:04",
	"02-01-2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var (
	ErrInvalidSeparator = errors.New("separator must be a single character")
	ErrMissingColumn    = errors.New("column not found in header")
	ErrNoHeader         = errors.New("no header row")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidDate      = errors.New("invalid date")
)

// Options configures how a delimited export is mapped onto observations
type Options struct {
	Separator      string   `json:"separator" yaml:"separator"`
	DateColumn     string   `json:"date_column" yaml:"date_column"`
	ProductColumn  string   `json:"product_column" yaml:"product_column"`
	QuantityColumn string   `json:"quantity_column" yaml:"quantity_column"`
	DateLayouts    []string `json:"date_layouts" yaml:"date_layouts"`

	// Location is used for timestamps without a zone. Defaults to UTC.
	Location *time.Location `json:"-" yaml:"-"`
}

// NewDefaultOptions returns the options for semicolon separated invoice exports
func NewDefaultOptions() *Options {
	return &Options{
		Separator:      DefaultSeparator,
		DateColumn:     DefaultDateColumn,
		ProductColumn:  DefaultProductColumn,
		QuantityColumn: DefaultQuantityColumn,
		DateLayouts:    DefaultDateLayouts,
		Location:       time.UTC,
	}
}

// Validate checks the options and fills unset values with defaults
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if utf8.RuneCountInString(o.Separator) != 1 {
		return nil, fmt.Errorf("got %q, %w", o.Separator, ErrInvalidSeparator)
	}
	if o.DateColumn == "" {
		o.DateColumn = DefaultDateColumn
	}
	if o.ProductColumn == "" {
		o.ProductColumn = DefaultProductColumn
	}
	if o.QuantityColumn == "" {
		o.QuantityColumn = DefaultQuantityColumn
	}
	if len(o.DateLayouts) == 0 {
		o.DateLayouts = DefaultDateLayouts
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o, nil
}

// Stats counts what happened to the data rows of an export
type Stats struct {
	Rows           int `json:"rows"`
	Loaded         int `json:"loaded"`
	BadDate        int `json:"bad_date"`
	MissingProduct int `json:"missing_product"`
	BadQuantity    int `json:"bad_quantity"`
	NonPositive    int `json:"non_positive"`
}

// Skipped returns the number of data rows not converted into an observation
func (s Stats) Skipped() int {
	return s.Rows - s.Loaded
}

// LoadFile loads the observations of a delimited export on disk
func LoadFile(filename string, opt *Options) ([]timedataset.Observation, Stats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open sales file %s: %w", filename, err)
	}
	defer file.Close()

	return Load(file, opt)
}

// Load reads a delimited export with a header row. Rows with an unparseable date, an empty
// product, an unparseable quantity or a quantity that is not positive are skipped and counted.
func Load(r io.Reader, opt *Options) ([]timedataset.Observation, Stats, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, Stats{}, err
	}

	sep, _ := utf8.DecodeRuneInString(opt.Separator)
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, Stats{}, ErrNoHeader
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := columnIndex(header, opt.DateColumn, opt.ProductColumn, opt.QuantityColumn)
	if err != nil {
		return nil, Stats{}, err
	}
	dateIdx, productIdx, quantityIdx := cols[0], cols[1], cols[2]

	var stats Stats
	var obs []timedataset.Observation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read row %d: %w", stats.Rows+2, err)
		}
		if isBlank(record) {
			continue
		}
		stats.Rows++

		ts, err := ParseDate(field(record, dateIdx), opt.DateLayouts, opt.Location)
		if err != nil {
			stats.BadDate++
			continue
		}
		productID := strings.TrimSpace(field(record, productIdx))
		if productID == "" {
			stats.MissingProduct++
			continue
		}
		qty, err := ParseQuantity(field(record, quantityIdx))
		if err != nil {
			stats.BadQuantity++
			continue
		}
		if qty <= 0 {
			stats.NonPositive++
			continue
		}

		obs = append(obs, timedataset.Observation{
			Time:      ts,
			ProductID: productID,
			Quantity:  qty,
		})
		stats.Loaded++
	}

	if stats.Skipped() > 0 {
		slog.Debug("skipped sales rows",
			"rows", stats.Rows,
			"bad_date", stats.BadDate,
			"missing_product", stats.MissingProduct,
			"bad_quantity", stats.BadQuantity,
			"non_positive", stats.NonPositive,
		)
	}
	return obs, stats, nil
}

// ParseQuantity parses a decimal quantity written with either a comma or a dot as decimal
// separator. When both appear the dot is taken as a thousands separator.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q, %w", s, ErrInvalidQuantity)
	}
	v, _ := d.Float64()
	return v, nil
}

// ParseDate parses a timestamp with the first matching layout
func ParseDate(s string, layouts []string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidDate)
}

func columnIndex(header []string, names ...string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, exists := pos[h]; !exists {
			pos[h] = i
		}
	}

	idx := make([]int, 0, len(names))
	for _, name := range names {
		i, exists := pos[strings.TrimSpace(name)]
		if !exists {
			return nil, fmt.Errorf("%q in %v, %w", name, header, ErrMissingColumn)
		}
		idx = append(idx, i)
	}
	return idx, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
