package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleared-dev/gastos/internal/csvcodec"
	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/model"
	"github.com/cleared-dev/gastos/internal/report"
)

type subtotalResponse struct {
	Label string      `json:"label"`
	Total json.Number `json:"total"`
}

type summaryResponse struct {
	Total      json.Number        `json:"total"`
	Count      int                `json:"count"`
	ByCategory []subtotalResponse `json:"byCategory"`
	ByCrew     []subtotalResponse `json:"byCrew"`
}

func toSummaryResponse(s ledger.Summary) summaryResponse {
	conv := func(b ledger.Breakdown) []subtotalResponse {
		out := make([]subtotalResponse, 0, len(b))
		for _, st := range b.Sorted() {
			out = append(out, subtotalResponse{Label: st.Label, Total: json.Number(st.Total.String())})
		}
		return out
	}
	return summaryResponse{
		Total:      json.Number(s.Total.String()),
		Count:      s.Count,
		ByCategory: conv(s.ByCategory),
		ByCrew:     conv(s.ByCrew),
	}
}

type createRequest struct {
	Date     string      `json:"date"`
	Category string      `json:"category"`
	Crew     string      `json:"crew"`
	Amount   json.Number `json:"amount"`
	TaxRate  json.Number `json:"taxRate"`
	JobType  string      `json:"jobType"`
	Notes    string      `json:"notes"`
}

func (s *Server) filter(c *gin.Context) (ledger.Filter, bool) {
	f, err := ledger.ParseFilter(c.Query("month"), c.Query("jobType"), c.Query("q"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return ledger.Filter{}, false
	}
	return f, true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "degraded": s.store.Degraded()})
}

func (s *Server) listExpenses(c *gin.Context) {
	f, ok := s.filter(c)
	if !ok {
		return
	}
	view := s.store.View(f)
	c.JSON(http.StatusOK, gin.H{
		"records": view.Records,
		"summary": toSummaryResponse(view.Summary),
	})
}

func (s *Server) getExpense(c *gin.Context) {
	e, ok := s.store.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "expense not found")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) createExpense(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry := ledger.Entry{
		Date:     req.Date,
		Category: req.Category,
		Crew:     req.Crew,
		Amount:   req.Amount.String(),
		TaxRate:  req.TaxRate.String(),
		JobType:  req.JobType,
		Notes:    req.Notes,
	}
	candidate, err := entry.Expense(s.catalog, s.taxRate, s.now())
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	e, err := s.store.Add(c.Request.Context(), candidate)
	if err != nil {
		if ledger.IsInputError(err) {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("adding expense failed")
		writeError(c, http.StatusInternalServerError, "could not add expense")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) deleteExpense(c *gin.Context) {
	s.store.Remove(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) summary(c *gin.Context) {
	f, ok := s.filter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(s.store.View(f).Summary))
}

// export downloads the full record set. The month parameter only names the file.
func (s *Server) export(c *gin.Context) {
	month := c.DefaultQuery("month", s.now().Format(model.MonthFormat))
	records := s.store.All()

	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvcodec.Filename(month)))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvcodec.Encode(records)))
	case "xlsx":
		var buf bytes.Buffer
		if err := report.WriteXLSX(&buf, records); err != nil {
			s.log.Error().Err(err).Msg("rendering workbook failed")
			writeError(c, http.StatusInternalServerError, "could not render workbook")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(month)))
		c.Data(http.StatusOK, report.ContentType, buf.Bytes())
	default:
		writeError(c, http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
	}
}

type importResponse struct {
	Added       int                   `json:"added"`
	Regenerated []ledger.Regeneration `json:"regenerated"`
	Warnings    []string              `json:"warnings"`
}

func (s *Server) importCSV(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "missing file field")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable upload")
		return
	}
	defer f.Close()

	var warnings []string
	res, err := s.store.Import(c.Request.Context(), func(_ context.Context) ([]model.Expense, error) {
		parsed, err := csvcodec.Parse(f, csvcodec.Options{IDs: s.ids, Now: s.now})
		for _, w := range parsed.Warnings {
			warnings = append(warnings, w.String())
		}
		return parsed.Records, err
	})
	if err != nil {
		if errors.Is(err, ledger.ErrImportCancelled) {
			writeError(c, http.StatusServiceUnavailable, "import cancelled")
			return
		}
		s.log.Error().Err(err).Str("file", fh.Filename).Msg("import failed")
		writeError(c, http.StatusInternalServerError, "import failed")
		return
	}

	s.log.Info().Str("file", fh.Filename).Int("added", res.Added).Msg("CSV imported")
	if res.Regenerated == nil {
		res.Regenerated = []ledger.Regeneration{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(http.StatusOK, importResponse{Added: res.Added, Regenerated: res.Regenerated, Warnings: warnings})
}

func (s *Server) catalogHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":     s.catalog.Categories(),
		"crew":           s.catalog.Crew(),
		"jobTypes":       s.catalog.JobTypes(),
		"defaultTaxRate": json.Number(s.taxRate.String()),
	})
}
