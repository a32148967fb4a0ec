package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/logging"
	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/token"
)

// DefaultMaxIterations bounds the number of dirty passes over one file.
const DefaultMaxIterations = 10

// State is the fix loop state of one file.
type State int

const (
	StateReady State = iota
	StateIterating
	StateConverged
	StateDiverged
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateDiverged:
		return "diverged"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Loop applies an ordered list of fixers to a stream until a full pass
// changes nothing.
//
// A Loop holds no per-file state; one value serves every worker.
type Loop struct {
	Fixers        []fixer.Active
	MaxIterations int // dirty passes allowed before giving up; 0 means DefaultMaxIterations
	Logger        *slog.Logger
}

// LoopResult describes one run of the loop.
type LoopResult struct {
	State      State
	Iterations int      // passes run, including the final clean one
	Changed    bool     // at least one fixer changed the stream
	Applied    []string // fixers that changed the stream, in first-change order
}

// Run fixes stream in place. path only labels errors and log lines.
//
// Errors are model.ErrDiverged when more than MaxIterations passes changed
// the stream, model.ErrFixerApply when a fixer failed or panicked, or the
// context error. On error the stream is in an unspecified intermediate
// state and must not be written.
func (l *Loop) Run(ctx context.Context, path string, stream *token.Stream) (LoopResult, error) {
	limit := l.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	logger := logging.OrDiscard(l.Logger)

	res := LoopResult{State: StateIterating}
	language := stream.Language()
	dirtyPasses := 0

	for {
		res.Iterations++
		dirty := false

		for _, active := range l.Fixers {
			if err := ctx.Err(); err != nil {
				res.State = StateFailed
				return res, err
			}
			if !fixer.Supports(active.Fixer, language) || !active.IsCandidate(stream) {
				continue
			}

			changed, err := apply(active, stream)
			if err != nil {
				res.State = StateFailed
				return res, model.Wrap(model.ErrFixerApply, path, active.Name(), err)
			}
			if changed {
				dirty = true
				res.Changed = true
				if !slices.Contains(res.Applied, active.Name()) {
					res.Applied = append(res.Applied, active.Name())
				}
				logger.Debug("fixer applied", "path", path, "fixer", active.Name(), "pass", res.Iterations)
			}
		}

		if !dirty {
			res.State = StateConverged
			return res, nil
		}
		dirtyPasses++
		if dirtyPasses > limit {
			res.State = StateDiverged
			return res, model.Errorf(model.ErrDiverged, path,
				"still changing after %d passes (fixers: %v)", limit, res.Applied)
		}
	}
}

// apply runs one fixer, turning a panic into an error. A fixer that
// mutated the stream but reported no change still counts as a change.
func apply(active fixer.Active, stream *token.Stream) (changed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	stream.ResetChanged()
	changed, err = active.Apply(stream, active.Config)
	if err != nil {
		return false, err
	}
	return changed || stream.Changed(), nil
}
