package battleship

import (
	"sync"

	"github.com/rs/zerolog"
)

type EventKind uint8

const (
	EventMatchStateChanged EventKind = iota
	EventShotResolved
	EventMatchEnded
)

func (k EventKind) String() string {
	switch k {
	case EventMatchStateChanged:
		return "MatchStateChanged"
	case EventShotResolved:
		return "ShotResolved"
	case EventMatchEnded:
		return "MatchEnded"
	default:
		return "Unknown"
	}
}

// Event is emitted after a command has been applied and persisted. Players
// lists who should receive it.
type Event struct {
	Kind             EventKind
	MatchID          string
	Players          []string
	Status           MatchStatus
	CurrentTurnOwner string
	Shot             *ShotResult
	Winner           string
	Reason           EndReason
	Stats            map[string]PlayerStats
}

func stateChangedEvent(m *Match) Event {
	return Event{
		Kind:             EventMatchStateChanged,
		MatchID:          m.ID,
		Players:          m.PlayerIDs(),
		Status:           m.Status,
		CurrentTurnOwner: m.CurrentTurnOwner,
	}
}

func shotResolvedEvent(m *Match, result ShotResult) Event {
	ev := stateChangedEvent(m)
	ev.Kind = EventShotResolved
	ev.Shot = &result
	return ev
}

func matchEndedEvent(m *Match) Event {
	stats := make(map[string]PlayerStats, len(m.Players))
	for _, p := range m.Players {
		if p != nil {
			stats[p.ID] = p.Stats
		}
	}

	ev := stateChangedEvent(m)
	ev.Kind = EventMatchEnded
	ev.Winner = m.Winner
	ev.Reason = m.EndReason
	ev.Stats = stats
	return ev
}

type Publisher interface {
	Publish(Event)
}

// ChannelPublisher hands events to a single consumer through a buffered
// channel. Publish never blocks: when the buffer is full the event is dropped.
type ChannelPublisher struct {
	events chan Event
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*ChannelPublisher)(nil)

func NewChannelPublisher(buffer int, logger zerolog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		events: make(chan Event, buffer),
		logger: logger,
	}
}

func (cp *ChannelPublisher) Publish(ev Event) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	if cp.closed {
		return
	}

	select {
	case cp.events <- ev:
	default:
		cp.logger.Warn().
			Str("match_id", ev.MatchID).
			Stringer("kind", ev.Kind).
			Msg("event buffer full, dropping event")
	}
}

func (cp *ChannelPublisher) Events() <-chan Event {
	return cp.events
}

// Close stops accepting events and closes the channel returned by Events.
func (cp *ChannelPublisher) Close() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if !cp.closed {
		cp.closed = true
		close(cp.events)
	}
}
