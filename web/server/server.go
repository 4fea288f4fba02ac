// Package server is a small HTTP server reporting the bot's health and event counts.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/common/log"
)

// Workers is the set of guilds the bot is tracking invites in.
type Workers interface {
	Len() int
	Guilds() []discord.GuildID
}

// Counter returns event totals since startup.
type Counter interface {
	Totals() map[string]uint64
}

type Server struct {
	Workers Workers
	Stats   Counter

	started time.Time
}

func New(workers Workers, stats Counter) *Server {
	return &Server{
		Workers: workers,
		Stats:   stats,
		started: time.Now(),
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", s.health)
	r.Get("/stats", s.stats)

	return r
}

// Listen serves on port until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + strings.TrimPrefix(port, ":"),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := srv.Shutdown(sctx)
		if err != nil {
			log.Errorf("shutting down status server: %v", err)
		}
	}()

	log.Infof("Status server listening on %v", srv.Addr)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving status")
	}
	return nil
}

type healthResponse struct {
	Status string `json:"status"`
	Guilds int    `json:"guilds"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{Status: "ok", Guilds: s.Workers.Len()})
}

type statsResponse struct {
	Version     string            `json:"version"`
	Uptime      string            `json:"uptime"`
	Guilds      []discord.GuildID `json:"guilds"`
	Events      map[string]uint64 `json:"events"`
	TotalEvents string            `json:"total_events"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	events := s.Stats.Totals()
	if events == nil {
		events = map[string]uint64{}
	}

	var total uint64
	for _, v := range events {
		total += v
	}

	render.JSON(w, r, statsResponse{
		Version:     common.Version(),
		Uptime:      strings.TrimSpace(humanize.RelTime(s.started, time.Now(), "", "")),
		Guilds:      s.Workers.Guilds(),
		Events:      events,
		TotalEvents: humanize.Comma(int64(total)),
	})
}
