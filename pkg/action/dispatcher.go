package action

import (
	"context"

	"github.com/rs/zerolog"

	"pingcheck/pkg/health"
	"pingcheck/pkg/log"
)

// Applier submits a command batch to the device configuration.
type Applier interface {
	Apply(ctx context.Context, cmds []string) error
}

// DryRun logs the batch instead of applying it.
type DryRun struct {
	logger zerolog.Logger
}

// NewDryRun returns an applier that never touches the device.
func NewDryRun() *DryRun {
	return &DryRun{logger: log.Component("dry-run")}
}

func (d *DryRun) Apply(_ context.Context, cmds []string) error {
	d.logger.Info().Strs("commands", cmds).Msg("dry run, configuration not applied")
	return nil
}

// Result records one dispatch for the journal and metrics.
type Result struct {
	Edge     health.Edge
	Path     string
	Commands int
	Err      error
}

// Dispatcher picks the action file for a transition and applies it.
// Failures are logged and carried in the Result; they never stop the
// monitoring loop and are not retried until the next transition.
type Dispatcher struct {
	applier Applier
	logger  zerolog.Logger
}

// NewDispatcher returns a dispatcher backed by the given applier.
func NewDispatcher(applier Applier) *Dispatcher {
	return &Dispatcher{applier: applier, logger: log.Component("dispatcher")}
}

// Dispatch applies the fail file on EdgeToFail and the recover file on
// EdgeToGood.
func (d *Dispatcher) Dispatch(ctx context.Context, edge health.Edge, failPath, recoverPath string) Result {
	path := failPath
	if edge == health.EdgeToGood {
		path = recoverPath
	}
	res := Result{Edge: edge, Path: path}

	cmds, err := ReadCommands(path)
	if err != nil {
		res.Err = err
		d.logger.Error().Err(err).Str("path", path).Msg("configuration apply skipped")
		return res
	}
	res.Commands = len(cmds)

	if err := d.applier.Apply(ctx, cmds); err != nil {
		res.Err = err
		d.logger.Error().Err(err).Str("path", path).Int("commands", len(cmds)).
			Msg("configuration apply failed")
		return res
	}

	d.logger.Info().Str("path", path).Int("commands", len(cmds)).Str("edge", edge.String()).
		Msg("configuration applied")
	return res
}
