package config

import (
	"fmt"
	"net"
	"os"
)

// Resolver answers the host-level questions validation asks. netif
// provides the real one; tests substitute fakes.
type Resolver interface {
	AddrByInterface(name string) (string, error)
	VRFExists(name string) bool
}

// Load reads and validates one round's configuration. The snapshot is
// non-nil even on error so callers can pace the next round from it.
func Load(store Store, resolver Resolver) (*Snapshot, error) {
	snap, err := Read(store)
	if err != nil {
		return snap, err
	}
	return snap, Validate(snap, resolver)
}

// Validate checks a snapshot against the world and fills its derived
// fields. Any failure suspends monitoring for the round.
func Validate(snap *Snapshot, resolver Resolver) error {
	if len(snap.Endpoints) == 0 {
		return fmt.Errorf("%w: %s", ErrMissingOption, OptEndpoints)
	}
	for _, endpoint := range snap.Endpoints {
		if !isIPv4(endpoint) {
			return fmt.Errorf("%w: %s: %q is not an IPv4 address", ErrInvalidOption, OptEndpoints, endpoint)
		}
	}

	if snap.FailPath == "" {
		return fmt.Errorf("%w: %s", ErrMissingOption, OptConfFail)
	}
	if snap.RecoverPath == "" {
		return fmt.Errorf("%w: %s", ErrMissingOption, OptConfRecover)
	}
	if err := checkActionFile(OptConfFail, snap.FailPath); err != nil {
		return err
	}
	if err := checkActionFile(OptConfRecover, snap.RecoverPath); err != nil {
		return err
	}

	if snap.Interval <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidOption, OptInterval)
	}
	if snap.PingCount < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidOption, OptPingCount)
	}
	if snap.PingTimeout < 0 || snap.PingTimeout > MaxPingTimeout {
		return fmt.Errorf("%w: %s must be within [0, %d] seconds",
			ErrInvalidOption, OptPingTimeout, int(MaxPingTimeout.Seconds()))
	}
	if snap.Holdup < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidOption, OptHoldup)
	}
	if snap.Holddown < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidOption, OptHolddown)
	}

	snap.SourceAddr = ""
	if snap.Source != "" {
		addr, err := resolver.AddrByInterface(snap.Source)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidOption, OptSource, err)
		}
		snap.SourceAddr = addr
	}

	if snap.VRF != "" && !resolver.VRFExists(snap.VRF) {
		return fmt.Errorf("%w: %s: no such VRF %q", ErrInvalidOption, OptVRF, snap.VRF)
	}

	return nil
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// checkActionFile requires a readable, non-empty regular file. The
// content is read again at dispatch time; this check keeps a broken
// action file from going unnoticed until the transition that needs it.
func checkActionFile(option, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidOption, option, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s: %s is a directory", ErrInvalidOption, option, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s: %s is empty", ErrInvalidOption, option, path)
	}
	return nil
}
