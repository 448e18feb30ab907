package csvcodec

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/gastos/internal/id"
	"github.com/cleared-dev/gastos/internal/model"
)

const bom = "\ufeff"

// Options configures Parse. Zero values pick the defaults.
type Options struct {
	IDs id.Generator
	Now func() time.Time
}

// Warning notes a value that could not be read and was replaced by a default.
type Warning struct {
	Row   int // 1-based line number in the input, header is line 1
	Field string
	Value string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d: %s %q replaced by default", w.Row, w.Field, w.Value)
}

// Result is the outcome of Parse.
type Result struct {
	Records  []model.Expense
	Warnings []Warning
}

// columns maps the header to field positions; -1 means absent.
type columns struct {
	id, date, cat, crew, base, rate, jobType, notes int
}

func resolveColumns(header []string) columns {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(h, `"`, "")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	find := func(names ...string) int {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i
			}
		}
		return -1
	}
	return columns{
		id:      find(ColID),
		date:    find(ColDate),
		cat:     find(ColCat),
		crew:    find(ColCrew),
		base:    find(ColBase, ColBaseLegacy),
		rate:    find(ColRate, ColRateLegacy),
		jobType: find(ColJobType),
		notes:   find(ColNotes),
	}
}

// Parse reads CSV text with a header row. Columns are located by name, so
// order and extra columns do not matter. Missing or unreadable values fall
// back to defaults: a generated id, today's date, the first category, the
// default job type and zero amounts. Input with fewer than two non-empty
// lines yields no records.
func Parse(r io.Reader, opts Options) (Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading CSV: %w", err)
	}
	if opts.IDs == nil {
		opts.IDs = id.UUID{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	type line struct {
		num  int
		text string
	}
	var lines []line
	for i, l := range strings.Split(strings.TrimPrefix(string(raw), bom), "\n") {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, line{num: i + 1, text: l})
	}
	if len(lines) < 2 {
		return Result{}, nil
	}

	cols := resolveColumns(SplitFields(lines[0].text))
	today := model.Today(opts.Now())

	var res Result
	for _, l := range lines[1:] {
		e, warns := unmarshalRow(SplitFields(l.text), cols, l.num, today, opts.IDs)
		res.Records = append(res.Records, e)
		res.Warnings = append(res.Warnings, warns...)
	}
	return res, nil
}

func unmarshalRow(fields []string, cols columns, num int, today time.Time, ids id.Generator) (model.Expense, []Warning) {
	get := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	var warns []Warning
	number := func(i int, name string) decimal.Decimal {
		v := get(i)
		d := model.Coerce(v)
		if d.IsZero() && strings.TrimSpace(v) != "" && !isZeroLiteral(v) {
			warns = append(warns, Warning{Row: num, Field: name, Value: v})
		}
		return d
	}

	e := model.Expense{
		ID:       get(cols.id),
		Category: model.Category(get(cols.cat)),
		Crew:     get(cols.crew),
		Amount:   number(cols.base, ColBase),
		TaxRate:  number(cols.rate, ColRate),
		JobType:  model.JobType(get(cols.jobType)),
		Notes:    get(cols.notes),
	}
	if e.ID == "" {
		e.ID = ids.NewID()
	}
	if e.Category == "" {
		e.Category = model.DefaultCategory()
	}
	if e.JobType == "" {
		e.JobType = model.DefaultJobType
	}

	e.Date = today
	if v := get(cols.date); v != "" {
		if d, err := model.ParseDate(v); err == nil {
			e.Date = d
		} else {
			warns = append(warns, Warning{Row: num, Field: ColDate, Value: v})
		}
	}
	return e, warns
}

func isZeroLiteral(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil && d.IsZero()
}
