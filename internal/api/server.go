// Package api exposes the cached data over HTTP and forwards poll events to
// WebSocket clients.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/diego-devita/stopweb/internal/dateutil"
	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/portal"
	"github.com/diego-devita/stopweb/internal/state"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

// FavoritesSource is the portal surface the preferiti route needs.
// Implemented by *portal.Client.
type FavoritesSource interface {
	FetchDirectory(ctx context.Context, employeeID string) ([]portal.DirectoryEntry, error)
}

// Server serves the read-only HTTP API and the event WebSocket.
type Server struct {
	engine    *timesheet.Engine
	directory FavoritesSource
	state     *state.Store
	hub       *Hub
	log       *zap.Logger
}

// NewServer wires the API over the given collaborators. state may be nil
// when no poll loop is running.
func NewServer(engine *timesheet.Engine, directory FavoritesSource, st *state.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		engine:    engine,
		directory: directory,
		state:     st,
		hub:       NewHub(log),
		log:       log,
	}
}

// Notify forwards freshly emitted events to the connected WebSocket clients.
func (s *Server) Notify(entries []events.LogEntry) { s.hub.Notify(entries) }

// Close disconnects all WebSocket clients.
func (s *Server) Close() { s.hub.Close() }

// Router builds the gin routing table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	g := r.Group("/stopweb/api")
	g.GET("/timbrature/:dataInizio/:dataFine", s.handleTimesheet)
	g.GET("/preferiti", s.handleFavorites)
	g.GET("/stato", s.handleStatus)
	g.GET("/eventi", func(c *gin.Context) { s.hub.Handle(c.Writer, c.Request) })
	return r
}

func (s *Server) handleTimesheet(c *gin.Context) {
	got, err := s.engine.FetchRange(c.Request.Context(), timesheet.Options{
		Start: c.Param("dataInizio"),
		End:   c.Param("dataFine"),
	})
	switch {
	case errors.Is(err, dateutil.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, portal.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, got)
	}
}

func (s *Server) handleFavorites(c *gin.Context) {
	entries, err := s.directory.FetchDirectory(c.Request.Context(), portal.DirectoryFavorites)
	switch {
	case errors.Is(err, portal.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, entries)
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	if s.state == nil {
		c.JSON(http.StatusOK, gin.H{"polling": false})
		return
	}
	snap := s.state.Snapshot()
	status := gin.H{
		"polling":             true,
		"cycles":              snap.Cycles,
		"consecutiveFailures": snap.ConsecutiveFailures,
		"paused":              snap.Paused,
		"nextCycle":           snap.NextCycle,
		"recentEvents":        snap.RecentEvents,
	}
	if snap.LastError != nil {
		status["lastError"] = snap.LastError.Error()
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
