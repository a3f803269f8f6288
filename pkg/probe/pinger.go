// Package probe shells out to the system ping binary, one endpoint at
// a time. VRF-scoped probes run inside the VRF's network namespace.
package probe

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pingcheck/pkg/log"
	"pingcheck/pkg/netif"
)

const (
	// sendInterval is ping's default gap between echo requests.
	sendInterval = time.Second
	// graceTimeout pads the kill deadline so ping normally exits on its own.
	graceTimeout = 2 * time.Second
)

// Params carries the per-round knobs shared by every probe.
type Params struct {
	Count      int           // echo requests per probe
	Timeout    time.Duration // per-reply wait, whole seconds
	SourceAddr string        // optional source address for -I
	VRF        string        // optional VRF to probe from
}

// Prober answers whether a single endpoint is reachable right now.
type Prober interface {
	Probe(host string, p Params) bool
}

// Pinger probes endpoints with the system ping binary.
type Pinger struct {
	logger zerolog.Logger
}

// NewPinger returns a ready Pinger.
func NewPinger() *Pinger {
	return &Pinger{logger: log.Component("prober")}
}

// buildArgs assembles the ping invocation.
func buildArgs(host string, p Params) []string {
	args := []string{
		"ping",
		"-c", strconv.Itoa(p.Count),
		"-W", strconv.Itoa(int(p.Timeout / time.Second)),
	}
	if p.SourceAddr != "" {
		args = append(args, "-I", p.SourceAddr)
	}
	args = append(args, host)

	if p.VRF != "" {
		args = append([]string{"ip", "netns", "exec", netif.NamespaceName(p.VRF)}, args...)
	}
	return args
}

// deadline bounds a whole probe: every request gets its send slot plus
// the per-reply wait, and the grace pad covers process startup.
func deadline(p Params) time.Duration {
	return time.Duration(p.Count)*(p.Timeout+sendInterval) + graceTimeout
}

// sourceBindFailed recognizes ping's complaint about an unusable
// source address.
func sourceBindFailed(stderr string) bool {
	return strings.Contains(stderr, "Cannot assign requested address")
}

// Probe runs one ping and reports whether the host answered. Probe
// failure detail stays at debug level; the set aggregation upstream
// decides what is worth saying at info.
func (g *Pinger) Probe(host string, p Params) bool {
	ctx, cancel := context.WithTimeout(context.Background(), deadline(p))
	defer cancel()

	args := buildArgs(host, p)
	//nolint:gosec // argv comes from the validated configuration snapshot
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		g.logger.Debug().Err(err).Str("host", host).Msg("probe got no answer")
		if sourceBindFailed(stderr.String()) {
			g.logger.Warn().Str("host", host).Str("source", p.SourceAddr).
				Msg("ping could not bind the source address, the interface is probably down")
		}
		return false
	}
	return true
}
