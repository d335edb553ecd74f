package cache

import (
	"context"
	"encoding/json"
	"time"
)

// State classifies a lookup against the entry lifecycle: an entry is Fresh
// while its age is under the freshness window, Stale until twice that window,
// and gone (Miss) afterwards.
type State int

const (
	StateMiss State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "miss"
	}
}

// Lookup describes the outcome of a Get.
type Lookup struct {
	State   State
	WroteAt time.Time
}

// Age returns how old the entry was at the time of the lookup.
func (l Lookup) Age() time.Duration {
	if l.WroteAt.IsZero() {
		return 0
	}
	return time.Since(l.WroteAt)
}

// Store is the keyed payload cache. Get is a pure lookup: it never touches
// the network and never removes entries — only Sweep and the size cap do.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (Lookup, error)
	Put(ctx context.Context, key string, value interface{}) error
	Sweep(ctx context.Context) int
	Len(ctx context.Context) int
	Close() error
}

// envelope is the stored form of every entry: the payload plus the write
// timestamp the lifecycle is computed from. All backends share it so the
// layered store can move entries between layers without resetting their age.
type envelope struct {
	Payload json.RawMessage `json:"p"`
	WroteAt time.Time       `json:"at"`
}

func newEnvelope(value interface{}) (*envelope, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return &envelope{Payload: raw, WroteAt: time.Now()}, nil
}

// state classifies the envelope age against the freshness window.
func (e *envelope) state(freshFor time.Duration) State {
	age := time.Since(e.WroteAt)
	switch {
	case age < freshFor:
		return StateFresh
	case age < 2*freshFor:
		return StateStale
	default:
		return StateMiss
	}
}

func (e *envelope) decode(dest interface{}) error {
	if dest == nil {
		return nil
	}
	return json.Unmarshal(e.Payload, dest)
}
