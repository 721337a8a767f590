package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"checkctl/internal/system"
	appver "checkctl/internal/version"
)

// Server is the checkbox authority: it owns the persistent bit store and
// fans mutations out to every connected viewer over websocket.
type Server struct {
	Addr      string
	StatePath string // bbolt file; empty keeps state in memory only

	store   *BitStore
	hub     *hub
	started time.Time
}

// Start runs the server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	store, err := OpenBitStore(s.StatePath)
	if err != nil {
		return err
	}
	s.store = store
	defer func() {
		if err := s.store.Close(); err != nil {
			system.Logger.Error("failed to close state db", "err", err)
		}
	}()

	s.hub = newHub()
	go s.hub.run(ctx)
	go s.flushLoop(ctx)
	s.started = time.Now()

	srv := &http.Server{Addr: s.Addr, Handler: s.handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	system.Logger.Info("authority listening", "addr", s.Addr, "checked", s.store.Count())
	return srv.ListenAndServe()
}

// handler builds the gin router. Split out so tests can mount it on httptest.
func (s *Server) handler() http.Handler {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ws", gin.WrapF(s.serveWS))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": appver.AppVersion})
	})
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"checked": s.store.Count(),
			"viewers": s.hub.count(),
			"uptime":  time.Since(s.started).Round(time.Second).String(),
		})
	})
	return r
}

// flushLoop persists dirty state every few seconds and once more on shutdown.
func (s *Server) flushLoop(ctx context.Context) {
	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := s.store.Flush(); err != nil {
				system.Logger.Error("state flush failed", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
