package server

import (
	"log/slog"
	"net/http"
	"time"

	"wonder-stats/internal/config"
)

type Server struct {
	store  Store
	hub    *roomHub
	cfg    config.Config
	logger *slog.Logger
}

func New(store Store, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:  store,
		hub:    newRoomHub(),
		cfg:    cfg,
		logger: logger,
	}
	store.Subscribe(NewNotifier(store, s.hub, logger))
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/game-lobby/", s.handleLobbySocket)
	mux.HandleFunc("GET /ws/game/", s.handleGameSocket)
	return mux
}

func (s *Server) writeWait() time.Duration {
	if s.cfg.WriteWaitSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.cfg.WriteWaitSeconds) * time.Second
}
