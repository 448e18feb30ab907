package csvcodec

import "strings"

type splitState int

const (
	fieldStart splitState = iota
	unquoted
	quoted
	quoteInQuoted // saw '"' inside a quoted field: either an escape or the closing quote
)

// SplitFields splits one CSV line into fields. It handles quoted fields,
// commas inside quotes and doubled quotes. Malformed input never fails: stray
// quotes in unquoted fields are kept literally, text after a closing quote is
// appended, and an unterminated quote runs to the end of the line.
func SplitFields(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		state  = fieldStart
	)
	emit := func() {
		fields = append(fields, cur.String())
		cur.Reset()
		state = fieldStart
	}

	for _, r := range line {
		switch state {
		case fieldStart:
			switch r {
			case '"':
				state = quoted
			case ',':
				emit()
			default:
				cur.WriteRune(r)
				state = unquoted
			}
		case unquoted:
			if r == ',' {
				emit()
				continue
			}
			cur.WriteRune(r)
		case quoted:
			if r == '"' {
				state = quoteInQuoted
				continue
			}
			cur.WriteRune(r)
		case quoteInQuoted:
			switch r {
			case '"':
				cur.WriteRune('"')
				state = quoted
			case ',':
				emit()
			default:
				cur.WriteRune(r)
				state = unquoted
			}
		}
	}
	emit()
	return fields
}

// quoteField wraps s in double quotes, doubling any inner quote.
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
