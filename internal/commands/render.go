package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/model"
	"github.com/cleared-dev/gastos/internal/money"
)

// styles binds lipgloss styles to one output so colour is dropped when it is
// not a terminal.
type styles struct {
	header lipgloss.Style
	muted  lipgloss.Style
	total  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		total:  r.NewStyle().Bold(true),
	}
}

type column struct {
	title string
	width int
	right bool
}

var listColumns = []column{
	{title: "ID", width: 12},
	{title: "DATE", width: 10},
	{title: "CATEGORY", width: 18},
	{title: "CREW", width: 14},
	{title: "BASE", width: 12, right: true},
	{title: "RATE", width: 6, right: true},
	{title: "TOTAL", width: 12, right: true},
	{title: "JOB", width: 16},
	{title: "NOTES", width: 28},
}

func formatRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		col := listColumns[i]
		c = ansi.Truncate(c, col.width, "…")
		pad := col.width - ansi.StringWidth(c)
		if pad < 0 {
			pad = 0
		}
		if col.right {
			parts[i] = strings.Repeat(" ", pad) + c
		} else {
			parts[i] = c + strings.Repeat(" ", pad)
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func renderList(w io.Writer, view ledger.View) {
	st := newStyles(w)
	if len(view.Records) == 0 {
		fmt.Fprintln(w, st.muted.Render("No expenses match this filter."))
		return
	}

	titles := make([]string, len(listColumns))
	for i, c := range listColumns {
		titles[i] = c.title
	}
	fmt.Fprintln(w, st.header.Render(formatRow(titles)))

	for _, e := range view.Records {
		fmt.Fprintln(w, formatRow([]string{
			e.ID,
			e.Date.Format(model.DateFormat),
			string(e.Category),
			e.Crew,
			money.Euro(e.Amount),
			money.Rate(e.TaxRate),
			money.Euro(e.Gross()),
			string(e.JobType),
			strings.Join(strings.Fields(e.Notes), " "),
		}))
	}
	fmt.Fprintln(w, st.total.Render(fmt.Sprintf("%d expenses, total %s", view.Summary.Count, money.Euro(view.Summary.Total))))
}

func renderSummary(w io.Writer, view ledger.View) {
	st := newStyles(w)
	fmt.Fprintln(w, st.muted.Render(describeFilter(view.Filter)))
	fmt.Fprintln(w, st.total.Render(fmt.Sprintf("Total: %s (%d expenses)", money.Euro(view.Summary.Total), view.Summary.Count)))

	section := func(title string, b ledger.Breakdown) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.header.Render(title))
		for _, sub := range b.Sorted() {
			label := ansi.Truncate(sub.Label, 24, "…")
			fmt.Fprintf(w, "  %-24s %12s\n", label, money.Euro(sub.Total))
		}
	}
	if view.Summary.Count == 0 {
		return
	}
	section("By category", view.Summary.ByCategory)
	section("By crew", view.Summary.ByCrew)
}

func describeFilter(f ledger.Filter) string {
	month := f.Month
	if month == "" {
		month = "all"
	}
	job := string(f.JobType)
	if job == "" {
		job = string(model.JobAll)
	}
	out := fmt.Sprintf("Month: %s  Job: %s", month, job)
	if q := strings.TrimSpace(f.Search); q != "" {
		out += fmt.Sprintf("  Search: %q", q)
	}
	return out
}
