// Package server is the HTTP shell over the ledger.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/gastos/internal/catalog"
	"github.com/cleared-dev/gastos/internal/id"
	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/logger"
)

// Options configures a Server. Zero values pick the defaults.
type Options struct {
	Mode           string // gin mode: debug, release or test
	DefaultTaxRate decimal.Decimal
	IDs            id.Generator // ids for imported rows without one
	Now            func() time.Time
	Logger         *zerolog.Logger
}

// Server routes HTTP requests to a ledger Store.
type Server struct {
	store   *ledger.Store
	catalog *catalog.Service
	taxRate decimal.Decimal
	ids     id.Generator
	now     func() time.Time
	log     zerolog.Logger
	engine  *gin.Engine
}

// New builds the gin engine with every API route registered.
func New(store *ledger.Store, cat *catalog.Service, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	s := &Server{
		store:   store,
		catalog: cat,
		taxRate: opts.DefaultTaxRate,
		ids:     opts.IDs,
		now:     opts.Now,
		log:     logger.Nop(),
	}
	if s.ids == nil {
		s.ids = id.UUID{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Logger != nil {
		s.log = logger.Component(*opts.Logger, "server")
	}

	r := gin.New()
	r.Use(requestLogger(s.log), recovery(s.log))

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	api.GET("/expenses", s.listExpenses)
	api.POST("/expenses", s.createExpense)
	api.GET("/expenses/:id", s.getExpense)
	api.DELETE("/expenses/:id", s.deleteExpense)
	api.GET("/summary", s.summary)
	api.GET("/export", s.export)
	api.POST("/import", s.importCSV)
	api.GET("/catalog", s.catalogHandler)

	s.engine = r
	return s
}

// Engine returns the router, for serving and for registering extra routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
