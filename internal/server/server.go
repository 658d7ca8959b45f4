package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/voidkat/astrotype-backend/internal"
	"github.com/voidkat/astrotype-backend/internal/game"
)

type Server struct {
	port int
	hub  *Hub
	mm   *game.Matchmaker

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewServer wires the hub, matchmaker, and router into an http.Server.
// PORT comes from the environment; 5005 is the default.
func NewServer(bank []string) *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 5005
	}

	hub := NewHub()
	s := &Server{
		port:     port,
		hub:      hub,
		mm:       game.NewMatchmaker(bank, internal.DefaultConfig(), hub),
		limiters: make(map[string]*rate.Limiter),
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
