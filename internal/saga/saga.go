// Package saga runs multi-step writes against independent backends (object
// storage, records) and unwinds the committed steps when a later one fails.
package saga

import (
	"context"

	"go.uber.org/zap"
)

type step struct {
	name string
	undo func(ctx context.Context) error
}

// Saga records the steps committed so far in one operation.
type Saga struct {
	name  string
	log   *zap.Logger
	steps []step
	names []string
}

// Step records a committed step that needs no compensation.
func (s *Saga) Step(name string) {
	s.names = append(s.names, name)
}

// Compensate records a committed step together with the action that
// reverses it.
func (s *Saga) Compensate(name string, undo func(ctx context.Context) error) {
	s.names = append(s.names, name)
	s.steps = append(s.steps, step{name: name, undo: undo})
}

// Committed lists committed step names in order.
func (s *Saga) Committed() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// unwind runs compensations newest first. The context is detached from the
// caller's cancellation so that cleanup finishes even if nobody waits for it.
func (s *Saga) unwind(ctx context.Context, cause error) {
	ctx = context.WithoutCancel(ctx)
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if err := st.undo(ctx); err != nil {
			s.log.Warn("compensation failed",
				zap.String("saga", s.name),
				zap.String("step", st.name),
				zap.Error(err),
				zap.NamedError("cause", cause),
			)
		}
	}
	s.steps = nil
}

// Run executes fn. If fn returns an error every compensation registered so
// far runs in reverse order and the error is returned unchanged.
func Run(ctx context.Context, log *zap.Logger, name string, fn func(s *Saga) error) error {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Saga{name: name, log: log}
	if err := fn(s); err != nil {
		s.unwind(ctx, err)
		return err
	}
	return nil
}
