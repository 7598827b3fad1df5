// Package server wires the HTTP API, CORS and the metrics endpoint onto gin.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/celerix-dev/firmdesk/internal/api"
)

// NewRouter builds the route table. A nil gatherer leaves /metrics unmounted.
func NewRouter(h *api.Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(), cors())

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "pong"}) })

		apiGroup.GET("/documents", h.ListDocuments)
		apiGroup.POST("/documents", h.CreateDocument)
		apiGroup.GET("/documents/:id", h.GetDocument)
		apiGroup.DELETE("/documents/:id", h.DeleteDocument)
		apiGroup.POST("/documents/:id/:transition", h.TransitionDocument)

		apiGroup.GET("/clients", h.ListClients)
		apiGroup.POST("/clients", h.AddClient)
		apiGroup.PUT("/clients/:id", h.RenameClient)
		apiGroup.POST("/clients/:id/ask", h.Ask)
		apiGroup.GET("/clients/:id/chat", h.ChatHistory)

		apiGroup.GET("/invoices", h.ListInvoices)
		apiGroup.POST("/invoices", h.CreateInvoice)
		apiGroup.POST("/invoices/:id/paid", h.MarkInvoicePaid)

		apiGroup.GET("/logs", h.GetLogs)
		apiGroup.GET("/backup", h.ExportBackup)
		apiGroup.POST("/backup", h.RestoreBackup)
		apiGroup.POST("/reset", h.Reset)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Server runs the router on a TCP port until Stop is called.
type Server struct {
	handler http.Handler

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

func New(handler http.Handler) *Server {
	return &Server{handler: handler}
}

// Listen serves on port and blocks. It returns nil after Stop.
func (s *Server) Listen(port string) error {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.srv = &http.Server{Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}
	srv := s.srv
	s.mu.Unlock()

	slog.Info("http listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address once Listen has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
