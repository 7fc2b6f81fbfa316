package saga

import "context"

// Step is one unit of a flow. Compensate, when set, undoes Execute and runs
// only if a later step fails.
type Step[S any] struct {
	Name       string
	Execute    func(ctx context.Context, state *S) error
	Compensate func(ctx context.Context, state *S) error
	// BestEffort steps log their failure and let the flow continue.
	BestEffort bool
}

func NewStep[S any](name string, execute func(ctx context.Context, state *S) error) *Step[S] {
	return &Step[S]{
		Name:    name,
		Execute: execute,
	}
}

func (s *Step[S]) WithCompensation(compensate func(ctx context.Context, state *S) error) *Step[S] {
	s.Compensate = compensate
	return s
}

func (s *Step[S]) AsBestEffort() *Step[S] {
	s.BestEffort = true
	return s
}

type Flow[S any] struct {
	name  string
	steps []*Step[S]
}

func NewFlow[S any](name string, steps ...*Step[S]) *Flow[S] {
	return &Flow[S]{name: name, steps: steps}
}

func (f *Flow[S]) Name() string {
	return f.name
}

func (f *Flow[S]) Steps() []*Step[S] {
	return f.steps
}
