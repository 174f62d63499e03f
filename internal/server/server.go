// Package server implements the HTTP API of bbflow
//
// It exposes request records, their flow execution paths, input resolution,
// archiving and rainy-day treatments over gin
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/archive"
	"github.com/dshills/bbflow/flow/policy"
	"github.com/dshills/bbflow/flow/resolve"
	"github.com/dshills/bbflow/flow/rest"
	"github.com/dshills/bbflow/flow/store"
	"github.com/dshills/bbflow/internal/logging"
)

const serviceName = "bbflow"

type (
	// PlanResolver resolves the building-block inputs of a request's
	// original execution path
	PlanResolver interface {
		ResolveOriginalPlan(ctx context.Context, requestID string) ([]resolve.StepInputs, error)
	}

	// RequestArchiver writes and reads execution path archives
	RequestArchiver interface {
		ArchiveRequest(ctx context.Context, requestID string) (*archive.Record, error)
		Get(ctx context.Context, requestID string) (*archive.Record, error)
	}

	// TreatmentSource looks up the rainy-day treatments allowed for a
	// building block
	TreatmentSource interface {
		AllowedTreatments(ctx context.Context, bbID, workStep string) (*policy.DictionaryData, error)
	}

	// Server implements the HTTP API
	Server struct {
		store    store.Store
		replayer *flow.Replayer
		resolver PlanResolver
		archiver RequestArchiver
		policy   TreatmentSource
		gatherer prometheus.Gatherer
		logger   *slog.Logger
	}

	// Option configures a Server
	Option func(*Server)
)

var (
	// ErrFeatureDisabled is returned when an endpoint's backing component
	// was not configured
	ErrFeatureDisabled = errors.New("feature not configured")

	// ErrInvalidJSON is returned when a request body cannot be decoded
	ErrInvalidJSON = errors.New("invalid JSON")
)

// WithResolver enables POST /requests/:requestID/resolve
func WithResolver(r PlanResolver) Option {
	return func(s *Server) {
		s.resolver = r
	}
}

// WithArchiver enables the archive endpoints
func WithArchiver(a RequestArchiver) Option {
	return func(s *Server) {
		s.archiver = a
	}
}

// WithPolicy enables GET /policy/treatments
func WithPolicy(p TreatmentSource) Option {
	return func(s *Server) {
		s.policy = p
	}
}

// WithGatherer sets the registry served on /metrics. Defaults to
// prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithLogger sets the logger used for request logging and handler errors
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new HTTP API server
func NewServer(st store.Store, rp *flow.Replayer, opts ...Option) *Server {
	s := &Server{
		store:    st,
		replayer: rp,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return s.logger
		}),
		glog.WithSkipPath([]string{"/health", "/metrics"}),
	))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}),
	))

	req := router.Group("/requests")
	{
		req.POST("", s.createRequest)
		req.GET("/:requestID", s.getRequest)

		// Execution paths
		req.PUT("/:requestID/flow-execution-path", s.saveFlowExecutionPath)
		req.GET("/:requestID/flow-execution-path", s.getFlowExecutionPath)
		req.GET("/:requestID/original-flow-execution-path", s.getOriginalFlowExecutionPath)

		req.POST("/:requestID/resolve", s.resolveRequest)

		req.POST("/:requestID/archive", s.archiveRequest)
		req.GET("/:requestID/archive", s.getArchive)
	}

	router.GET("/policy/treatments", s.getTreatments)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Service: serviceName,
		Status:  StatusHealthy,
	}

	if p, ok := s.store.(store.Pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			resp.Status = StatusUnhealthy
			resp.Error = err.Error()
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps err to a status code and writes an ErrorResponse
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			logging.RequestID(c.Param("requestID")),
			logging.Error(err))
	}
	c.JSON(status, ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidJSON),
		errors.Is(err, ErrDuplicateRequestID),
		errors.Is(err, flow.ErrInvalidExecutionPath),
		errors.Is(err, flow.ErrEmptyExecutionPath),
		errors.Is(err, store.ErrMissingRequestID):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, archive.ErrArchiveNotFound),
		errors.Is(err, policy.ErrNoTreatment):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrNoOriginalRequest),
		errors.Is(err, resolve.ErrMultipleObjectsFound),
		errors.Is(err, resolve.ErrNoServiceInstanceFound):
		return http.StatusConflict
	case errors.Is(err, ErrFeatureDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, rest.ErrCircuitOpen),
		errors.Is(err, store.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
