// Package server exposes the filter registry over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/a11yfix/internal/logger"
	"github.com/jmylchreest/a11yfix/internal/version"
	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
	"github.com/jmylchreest/a11yfix/pkg/filter"
)

// DefaultMaxBodySize bounds request bodies.
const DefaultMaxBodySize = 10 << 20

// Options configures the server.
type Options struct {
	Addr        string
	MaxBodySize int64
	// Cleaner serves /v1/transform and is registered on the default hooks
	// when Registry is nil. An observer already set on it keeps running;
	// the server's metrics observer is called after it.
	Cleaner  *a11y.Cleaner
	Registry *filter.Registry
}

// Server is the HTTP filter service.
type Server struct {
	opts     Options
	cleaner  *a11y.Cleaner
	registry *filter.Registry
	metrics  *metrics
	engine   *gin.Engine
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.Cleaner == nil {
		opts.Cleaner = a11y.New(nil)
	}
	if opts.Registry == nil {
		opts.Registry = filter.NewRegistry()
		opts.Registry.RegisterDefaults(opts.Cleaner)
	}

	s := &Server{
		opts:     opts,
		cleaner:  opts.Cleaner,
		registry: opts.Registry,
		metrics:  newMetrics(),
	}
	observe := s.metrics.observe
	if prev := s.cleaner.Observer(); prev != nil {
		observe = func(r *a11y.Result) {
			prev(r)
			s.metrics.observe(r)
		}
	}
	s.cleaner.SetObserver(observe)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	v1 := engine.Group("/v1")
	v1.GET("/filters", s.handleListHooks)
	v1.POST("/filters/:hook", s.handleFilter)
	v1.POST("/transform", s.handleTransform)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", s.opts.Addr,
			"max_body", humanize.IBytes(uint64(s.opts.MaxBodySize)),
			"hooks", s.registry.Hooks())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.String(),
	})
}

func (s *Server) handleListHooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hooks": s.registry.Hooks()})
}

// handleFilter handles POST /v1/filters/:hook with a raw HTML body.
func (s *Server) handleFilter(c *gin.Context) {
	hook := c.Param("hook")
	chain, err := s.registry.Lookup(hook)
	if err != nil {
		s.fail(c, hook, http.StatusNotFound, err)
		return
	}

	body, status, err := s.readBody(c)
	if err != nil {
		s.fail(c, hook, status, err)
		return
	}

	start := time.Now()
	out, err := chain.Clean(string(body))
	s.metrics.duration.WithLabelValues(hook).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(c, hook, http.StatusInternalServerError, err)
		return
	}

	s.metrics.requests.WithLabelValues(hook, strconv.Itoa(http.StatusOK)).Inc()
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}

// TransformRequest is the body of POST /v1/transform.
type TransformRequest struct {
	HTML string `json:"html"`
}

// TransformResponse is the reply to POST /v1/transform.
type TransformResponse struct {
	HTML     string         `json:"html"`
	Stats    *a11y.Stats    `json:"stats"`
	Warnings []a11y.Warning `json:"warnings,omitempty"`
}

const transformLabel = "transform"

func (s *Server) handleTransform(c *gin.Context) {
	body, status, err := s.readBody(c)
	if err != nil {
		s.fail(c, transformLabel, status, err)
		return
	}

	var req TransformRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(c, transformLabel, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	result := s.cleaner.CleanWithStats(req.HTML)
	s.metrics.duration.WithLabelValues(transformLabel).Observe(time.Since(start).Seconds())

	s.metrics.requests.WithLabelValues(transformLabel, strconv.Itoa(http.StatusOK)).Inc()
	c.JSON(http.StatusOK, TransformResponse{
		HTML:     result.Content,
		Stats:    result.Stats,
		Warnings: result.Warnings,
	})
}

// readBody reads the request body within the size limit.
func (s *Server) readBody(c *gin.Context) ([]byte, int, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxBodySize)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("request body exceeds " + humanize.IBytes(uint64(tooLarge.Limit)))
		}
		return nil, http.StatusBadRequest, err
	}
	s.metrics.bodyBytes.Observe(float64(len(body)))
	return body, http.StatusOK, nil
}

func (s *Server) fail(c *gin.Context, hook string, status int, err error) {
	s.metrics.requests.WithLabelValues(hook, strconv.Itoa(status)).Inc()
	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString(requestIDKey),
	})
}
