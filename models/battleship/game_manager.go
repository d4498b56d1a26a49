package battleship

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const DefaultMaxMatchDuration = time.Minute * 30

// createAttempts bounds how many fresh ids CreateMatch tries after collisions.
const createAttempts = 5

type GameManager interface {
	CreateMatch(ctx context.Context, playerID string) (*Match, error)
	JoinMatch(ctx context.Context, matchID, playerID string) (*Match, error)
	SubmitFleet(ctx context.Context, matchID, playerID string, ships []ShipPlacement) (*Match, error)
	Shoot(ctx context.Context, matchID, playerID string, row, col int) (ShotResult, error)
	Abandon(ctx context.Context, matchID, playerID string) error
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	ExpireStaleMatches(ctx context.Context, now time.Time) (int, error)
	ManageMatchExpiry(ctx context.Context, interval time.Duration)
}

type matchLock struct {
	mu   sync.Mutex
	refs int
}

// BattleshipGameManager applies player commands to stored matches. Each
// command runs as load, apply, save under a lock keyed by match id, so two
// commands on the same match never interleave. Events go out only after the
// save succeeded.
type BattleshipGameManager struct {
	store     Store
	publisher Publisher
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
	maxAge    time.Duration

	locks map[string]*matchLock
	mu    sync.Mutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

type ManagerOption func(*BattleshipGameManager)

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(bgm *BattleshipGameManager) {
		bgm.logger = logger
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(bgm *BattleshipGameManager) {
		bgm.now = now
	}
}

// WithMatchIDs replaces the generator CreateMatch draws match ids from.
func WithMatchIDs(next func() string) ManagerOption {
	return func(bgm *BattleshipGameManager) {
		bgm.newID = next
	}
}

func WithMaxMatchDuration(d time.Duration) ManagerOption {
	return func(bgm *BattleshipGameManager) {
		if d > 0 {
			bgm.maxAge = d
		}
	}
}

func NewBattleshipGameManager(store Store, publisher Publisher, opts ...ManagerOption) *BattleshipGameManager {
	bgm := &BattleshipGameManager{
		store:     store,
		publisher: publisher,
		logger:    zerolog.Nop(),
		now:       time.Now,
		newID:     NewMatchID,
		maxAge:    DefaultMaxMatchDuration,
		locks:     make(map[string]*matchLock, 10),
	}
	for _, opt := range opts {
		opt(bgm)
	}
	return bgm
}

func (bgm *BattleshipGameManager) lockMatch(matchID string) func() {
	bgm.mu.Lock()
	l, prs := bgm.locks[matchID]
	if !prs {
		l = &matchLock{}
		bgm.locks[matchID] = l
	}
	l.refs++
	bgm.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		bgm.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(bgm.locks, matchID)
		}
		bgm.mu.Unlock()
	}
}

// withMatch runs apply against the current state of matchID and persists the
// result. Nothing is saved or published when apply fails.
func (bgm *BattleshipGameManager) withMatch(ctx context.Context, matchID string, apply func(m *Match) ([]Event, error)) (*Match, error) {
	unlock := bgm.lockMatch(matchID)
	defer unlock()

	m, err := bgm.store.Load(ctx, matchID)
	if err != nil {
		if errors.Is(err, cerr.ErrNotFound) {
			return nil, err
		}
		bgm.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to load match")
		return nil, cerr.ErrStore("load", err)
	}

	events, err := apply(m)
	if err != nil {
		bgm.logger.Debug().Err(err).Str("match_id", matchID).Msg("command rejected")
		return nil, err
	}
	if len(events) == 0 {
		return m, nil
	}

	if m.Status.IsTerminal() && m.EndedAt.IsZero() {
		m.EndedAt = bgm.now()
	}
	if err := bgm.store.Save(ctx, m); err != nil {
		bgm.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to save match")
		return nil, cerr.ErrStore("save", err)
	}

	bgm.logger.Debug().
		Str("match_id", m.ID).
		Stringer("status", m.Status).
		Str("turn", m.CurrentTurnOwner).
		Msg("match updated")
	for _, ev := range events {
		bgm.publisher.Publish(ev)
	}
	return m, nil
}

// CreateMatch seats playerID in a new match. A taken id is never
// overwritten; another id is drawn instead.
func (bgm *BattleshipGameManager) CreateMatch(ctx context.Context, playerID string) (*Match, error) {
	m := NewMatch(playerID, bgm.now())

	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		m.ID = bgm.newID()
		err = bgm.store.Create(ctx, m)
		if err == nil {
			bgm.logger.Debug().Str("match_id", m.ID).Str("player_id", playerID).Msg("match created")
			bgm.publisher.Publish(stateChangedEvent(m))
			return m, nil
		}
		if !errors.Is(err, cerr.ErrDuplicateID) {
			break
		}
		bgm.logger.Warn().Str("match_id", m.ID).Msg("match id taken, drawing another")
	}

	bgm.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to create match")
	return nil, cerr.ErrStore("create", err)
}

func (bgm *BattleshipGameManager) JoinMatch(ctx context.Context, matchID, playerID string) (*Match, error) {
	return bgm.withMatch(ctx, matchID, func(m *Match) ([]Event, error) {
		if err := m.Join(playerID); err != nil {
			return nil, err
		}
		return []Event{stateChangedEvent(m)}, nil
	})
}

func (bgm *BattleshipGameManager) SubmitFleet(ctx context.Context, matchID, playerID string, ships []ShipPlacement) (*Match, error) {
	return bgm.withMatch(ctx, matchID, func(m *Match) ([]Event, error) {
		if _, err := m.SubmitFleet(playerID, ships); err != nil {
			return nil, err
		}
		return []Event{stateChangedEvent(m)}, nil
	})
}

func (bgm *BattleshipGameManager) Shoot(ctx context.Context, matchID, playerID string, row, col int) (ShotResult, error) {
	var result ShotResult
	_, err := bgm.withMatch(ctx, matchID, func(m *Match) ([]Event, error) {
		var err error
		result, err = m.Shoot(playerID, row, col)
		if err != nil {
			return nil, err
		}

		events := []Event{shotResolvedEvent(m, result)}
		if result.GameOver {
			events = append(events, matchEndedEvent(m))
		}
		return events, nil
	})
	if err != nil {
		return ShotResult{}, err
	}
	return result, nil
}

func (bgm *BattleshipGameManager) Abandon(ctx context.Context, matchID, playerID string) error {
	_, err := bgm.withMatch(ctx, matchID, func(m *Match) ([]Event, error) {
		changed, err := m.Abandon(playerID, bgm.now())
		if err != nil || !changed {
			return nil, err
		}
		return []Event{matchEndedEvent(m)}, nil
	})
	return err
}

func (bgm *BattleshipGameManager) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	m, err := bgm.store.Load(ctx, matchID)
	if err != nil {
		if errors.Is(err, cerr.ErrNotFound) {
			return nil, err
		}
		return nil, cerr.ErrStore("load", err)
	}
	return m, nil
}

// ExpireStaleMatches ends every unfinished match older than the configured
// maximum duration and returns how many were ended.
func (bgm *BattleshipGameManager) ExpireStaleMatches(ctx context.Context, now time.Time) (int, error) {
	ids, err := bgm.store.StaleMatchIDs(ctx, now.Add(-bgm.maxAge))
	if err != nil {
		return 0, cerr.ErrStore("list stale matches", err)
	}

	expired := 0
	for _, id := range ids {
		ended := false
		_, err := bgm.withMatch(ctx, id, func(m *Match) ([]Event, error) {
			if ended = m.Expire(now, bgm.maxAge); !ended {
				return nil, nil
			}
			return []Event{matchEndedEvent(m)}, nil
		})
		if err != nil {
			if errors.Is(err, cerr.ErrStoreUnavailable) {
				return expired, err
			}
			continue
		}
		if ended {
			expired++
		}
	}
	return expired, nil
}

// finishedPruner is implemented by stores that hold finished matches in
// process memory and must drop them eventually.
type finishedPruner interface {
	Delete(cutoff time.Time) int
}

// sweep expires stale matches and prunes finished ones older than the
// maximum match duration.
func (bgm *BattleshipGameManager) sweep(ctx context.Context, now time.Time) error {
	n, err := bgm.ExpireStaleMatches(ctx, now)
	if n > 0 {
		bgm.logger.Info().Int("expired", n).Msg("expired stale matches")
	}
	if err != nil {
		return err
	}

	if pruner, ok := bgm.store.(finishedPruner); ok {
		if pruned := pruner.Delete(now.Add(-bgm.maxAge)); pruned > 0 {
			bgm.logger.Debug().Int("pruned", pruned).Msg("pruned finished matches")
		}
	}
	return nil
}

// ManageMatchExpiry sweeps stale matches every interval until ctx is done.
func (bgm *BattleshipGameManager) ManageMatchExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := bgm.sweep(ctx, bgm.now()); err != nil {
				bgm.logger.Error().Err(err).Msg("match expiry sweep failed")
			}
		}
	}
}
