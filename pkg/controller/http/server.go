package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
	"github.com/rigcse/modbridge/pkg/utils/safe"
)

// ActionLister returns pending actions of a guild
type ActionLister interface {
	Pending(ctx context.Context, guildID string) ([]*model.ScheduledAction, error)
}

type Server struct {
	router   *chi.Mux
	actions  ActionLister
	registry *model.GuildRegistry
}

type Options func(*Server)

func WithGuildRegistry(registry *model.GuildRegistry) Options {
	return func(s *Server) {
		s.registry = registry
	}
}

func WithActionLister(actions ActionLister) Options {
	return func(s *Server) {
		s.actions = actions
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		registry: model.NewGuildRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/guilds", func(r chi.Router) {
		r.Get("/", guildsHandler(s.registry))
		if s.actions != nil {
			r.Get("/{guildID}/scheduled-actions", scheduledActionsHandler(s.registry, s.actions))
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// guildsHandler serves the configured guilds as JSON
func guildsHandler(registry *model.GuildRegistry) http.HandlerFunc {
	type guildResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Subreddit string `json:"subreddit"`
		Relay     bool   `json:"relay"`
	}
	type response struct {
		Guilds []guildResponse `json:"guilds"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		guilds := registry.List()
		resp := response{Guilds: make([]guildResponse, len(guilds))}
		for i, g := range guilds {
			resp.Guilds[i] = guildResponse{
				ID:        g.ID,
				Name:      g.Name,
				Subreddit: g.Subreddit,
				Relay:     g.Relay.Enabled(),
			}
		}
		writeJSON(w, r, resp)
	}
}

type scheduledActionResponse struct {
	ID            string `json:"id"`
	Action        string `json:"action"`
	PostLink      string `json:"postLink"`
	EpochTime     int64  `json:"epochTime"`
	DueAt         string `json:"dueAt"`
	ScheduledBy   string `json:"scheduledBy"`
	ScheduledByID string `json:"scheduledById"`
	ChannelID     string `json:"channelId"`
	AttemptCount  int    `json:"attemptCount"`
	LastError     string `json:"lastError,omitempty"`
}

func toScheduledActionResponse(a *model.ScheduledAction) scheduledActionResponse {
	return scheduledActionResponse{
		ID:            a.ID.String(),
		Action:        a.Type.String(),
		PostLink:      a.PostLink,
		EpochTime:     a.DueAt.UnixMilli(),
		DueAt:         a.DueAt.UTC().Format(time.RFC3339),
		ScheduledBy:   a.ScheduledBy,
		ScheduledByID: a.ScheduledByID,
		ChannelID:     a.ChannelID,
		AttemptCount:  a.AttemptCount,
		LastError:     a.LastError,
	}
}

// scheduledActionsHandler serves pending actions of one guild
func scheduledActionsHandler(registry *model.GuildRegistry, actions ActionLister) http.HandlerFunc {
	type response struct {
		GuildID string                    `json:"guildId"`
		Actions []scheduledActionResponse `json:"actions"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		if _, err := registry.Get(guildID); err != nil {
			http.Error(w, "guild not found", http.StatusNotFound)
			return
		}

		pending, err := actions.Pending(r.Context(), guildID)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to list pending actions",
				goerr.V("guild_id", guildID)), http.StatusInternalServerError)
			return
		}

		resp := response{GuildID: guildID, Actions: make([]scheduledActionResponse, len(pending))}
		for i, a := range pending {
			resp.Actions[i] = toScheduledActionResponse(a)
		}
		writeJSON(w, r, resp)
	}
}
