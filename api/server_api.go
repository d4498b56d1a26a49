package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/seabattle/internal/config"
	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

const (
	defaultPort     = 8000
	shutdownTimeout = time.Second * 5
	restTimeout     = time.Second * 10
)

// MatchAnalytics records per-server counters. It is optional; a nil
// MatchAnalytics disables counting.
type MatchAnalytics interface {
	IncrementMatchesCreatedCount(ctx context.Context) error
	IncrementMatchesFinishedCount(ctx context.Context) error
}

type Server struct {
	port           int
	stage          string
	router         *chi.Mux
	gameManager    mb.GameManager
	sessionManager mc.SessionManager
	analytics      MatchAnalytics

	shipAttempts  int
	boardAttempts int
}

type Option func(*Server) error

func NewServer(gameManager mb.GameManager, sessionManager mc.SessionManager, optFuncs ...Option) *Server {
	server := Server{
		port:           defaultPort,
		stage:          config.StageDev,
		gameManager:    gameManager,
		sessionManager: sessionManager,
		shipAttempts:   mb.DefaultShipAttempts,
		boardAttempts:  mb.DefaultBoardAttempts,
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	server.router = server.routes()
	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != config.StageProd && stage != config.StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithAnalytics(analytics MatchAnalytics) Option {
	return func(s *Server) error {
		s.analytics = analytics
		return nil
	}
}

func WithPlacementAttempts(perShip, perBoard int) Option {
	return func(s *Server) error {
		if perShip <= 0 || perBoard <= 0 {
			return fmt.Errorf("placement attempts must be positive: %d/%d", perShip, perBoard)
		}
		s.shipAttempts = perShip
		s.boardAttempts = perBoard
		return nil
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// The websocket route is hijacked, so it stays outside the timeout group
	r.Method(http.MethodGet, "/battleship", NewRequestProcessor(s))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(restTimeout))
		r.Use(jsonContentType)

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/matches/{id}", s.handleGetMatch)
	})

	return r
}

// Router exposes the router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: time.Second * 5,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.port).Str("stage", s.stage).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type matchPlayerView struct {
	ID             string             `json:"id"`
	Ready          bool               `json:"ready"`
	RemainingShips int                `json:"remaining_ships"`
	Stats          mc.RespPlayerStats `json:"stats"`
}

// matchView is the public read model of a match. Ship positions are never
// part of it.
type matchView struct {
	MatchID          string            `json:"match_id"`
	Status           string            `json:"status"`
	CurrentTurnOwner string            `json:"current_turn_owner,omitempty"`
	Winner           string            `json:"winner,omitempty"`
	EndReason        string            `json:"end_reason,omitempty"`
	Players          []matchPlayerView `json:"players"`
	CreatedAt        time.Time         `json:"created_at"`
	EndedAt          *time.Time        `json:"ended_at,omitempty"`
}

func newMatchView(m *mb.Match) matchView {
	view := matchView{
		MatchID:          m.ID,
		Status:           m.Status.String(),
		CurrentTurnOwner: m.CurrentTurnOwner,
		Winner:           m.Winner,
		EndReason:        string(m.EndReason),
		Players:          make([]matchPlayerView, 0, 2),
		CreatedAt:        m.CreatedAt,
	}
	if !m.EndedAt.IsZero() {
		endedAt := m.EndedAt
		view.EndedAt = &endedAt
	}
	for _, p := range m.Players {
		if p == nil {
			continue
		}
		view.Players = append(view.Players, matchPlayerView{
			ID:             p.ID,
			Ready:          p.Ready,
			RemainingShips: p.Board.RemainingShips(),
			Stats:          mc.NewRespPlayerStats(p.Stats),
		})
	}
	return view
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.gameManager.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cerr.ErrNotFound) {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(mc.NewRespErr(errorKind(err), err.Error()))
		return
	}

	_ = json.NewEncoder(w).Encode(newMatchView(m))
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// FindServerIpNet returns the first IPv4 network of an interface that is up
// and not a loopback. Analytics rows are keyed by it.
func FindServerIpNet() (net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.IPNet{}, err
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			return net.IPNet{}, err
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipnet.IP.To4(); ip != nil && !ip.IsLoopback() {
				return net.IPNet{IP: ip, Mask: ipnet.Mask}, nil
			}
		}
	}

	return net.IPNet{}, errors.New("no non-loopback ipv4 interface found")
}
