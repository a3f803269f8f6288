package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Option names as operators write them.
const (
	OptEndpoints   = "IPv4"
	OptConfFail    = "CONF_FAIL"
	OptConfRecover = "CONF_RECOVER"
	OptInterval    = "CHECKINTERVAL"
	OptPingCount   = "PINGCOUNT"
	OptPingTimeout = "PINGTIMEOUT"
	OptHoldup      = "HOLDUP"
	OptHolddown    = "HOLDDOWN"
	OptSource      = "SOURCE"
	OptVRF         = "VRF"
)

// Defaults applied when an option is absent.
const (
	DefaultInterval    = 5 * time.Second
	DefaultPingCount   = 2
	DefaultPingTimeout = 2 * time.Second
	DefaultHoldup      = 0
	DefaultHolddown    = 0
)

// MaxPingTimeout caps the per-reply wait.
const MaxPingTimeout = 3600 * time.Second

// Snapshot is one round's complete view of the configuration. The
// scheduler builds a fresh one every round and never carries values
// over.
type Snapshot struct {
	Endpoints   []string
	FailPath    string
	RecoverPath string
	Interval    time.Duration
	PingCount   int
	PingTimeout time.Duration
	Holdup      int
	Holddown    int
	Source      string
	VRF         string

	// SourceAddr is the IPv4 resolved from Source during validation.
	SourceAddr string
}

// PaceInterval is the round interval the scheduler should pace by,
// falling back to the default when the configured value is unusable.
func (s *Snapshot) PaceInterval() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return DefaultInterval
}

// Read assembles a snapshot from the store. It covers syntax only;
// Validate covers meaning. The returned snapshot is non-nil even on
// error so the scheduler can still pace the next round.
func Read(store Store) (*Snapshot, error) {
	snap := &Snapshot{
		Interval:    DefaultInterval,
		PingCount:   DefaultPingCount,
		PingTimeout: DefaultPingTimeout,
		Holdup:      DefaultHoldup,
		Holddown:    DefaultHolddown,
	}

	if raw, ok := store.Get(OptEndpoints); ok {
		snap.Endpoints = splitEndpoints(raw)
	}
	snap.FailPath, _ = store.Get(OptConfFail)
	snap.RecoverPath, _ = store.Get(OptConfRecover)
	snap.Source, _ = store.Get(OptSource)
	snap.VRF, _ = store.Get(OptVRF)

	var firstErr error
	readInt := func(name string, assign func(int)) {
		value, ok, err := intOption(store, name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		if ok {
			assign(value)
		}
	}

	readInt(OptInterval, func(v int) { snap.Interval = time.Duration(v) * time.Second })
	readInt(OptPingCount, func(v int) { snap.PingCount = v })
	readInt(OptPingTimeout, func(v int) { snap.PingTimeout = time.Duration(v) * time.Second })
	readInt(OptHoldup, func(v int) { snap.Holdup = v })
	readInt(OptHolddown, func(v int) { snap.Holddown = v })

	return snap, firstErr
}

// splitEndpoints splits the comma-separated endpoint list. Items are
// space-trimmed but empty items are kept so validation can reject them.
func splitEndpoints(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	endpoints := make([]string, len(parts))
	for i, part := range parts {
		endpoints[i] = strings.TrimSpace(part)
	}
	return endpoints
}

// intOption parses an integer option, reporting presence separately
// from parse failure.
func intOption(store Store, name string) (int, bool, error) {
	raw, ok := store.Get(name)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidOption, name, raw)
	}
	return value, true, nil
}
