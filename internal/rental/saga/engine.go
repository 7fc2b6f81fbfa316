package saga

import (
	"context"
	"fmt"

	"bikeshare/pkg/logger"
	"bikeshare/pkg/metrics"
)

const (
	OutcomeCompleted   = "completed"
	OutcomeFailed      = "failed"
	OutcomeCompensated = "compensated"
)

// StepError reports which step stopped a flow. Err is the step's own error,
// reachable through errors.As.
type StepError struct {
	Flow string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s step failed: %v", e.Flow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Engine[S any] struct {
	flows map[string]*Flow[S]
	log   *logger.Logger
}

func NewEngine[S any](log *logger.Logger, flows ...*Flow[S]) *Engine[S] {
	m := make(map[string]*Flow[S], len(flows))
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine[S]{flows: m, log: log}
}

// Run executes the named flow's steps in order. When a mandatory step fails,
// the already completed steps are compensated in reverse order and the
// failure is returned as a *StepError.
func (e *Engine[S]) Run(ctx context.Context, flowName string, state *S) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %v", flowName)
	}

	completed := make([]*Step[S], 0, len(f.steps))
	for _, step := range f.steps {
		err := step.Execute(ctx, state)
		if err == nil {
			completed = append(completed, step)
			continue
		}

		if step.BestEffort {
			e.log.Warn("best-effort step failed, continuing",
				"flow", f.name,
				"step", step.Name,
				"error", err,
			)
			continue
		}

		outcome := OutcomeFailed
		if e.compensate(ctx, f.name, completed, state) {
			outcome = OutcomeCompensated
		}
		metrics.RecordSagaRun(f.name, outcome)
		return &StepError{Flow: f.name, Step: step.Name, Err: err}
	}

	metrics.RecordSagaRun(f.name, OutcomeCompleted)
	return nil
}

// compensate reports whether any compensation ran. Compensations are not
// bound to the caller's cancellation: once started they must finish.
func (e *Engine[S]) compensate(ctx context.Context, flowName string, completed []*Step[S], state *S) bool {
	ctx = context.WithoutCancel(ctx)
	ran := false

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		ran = true

		if err := step.Compensate(ctx, state); err != nil {
			metrics.RecordCompensation(flowName, step.Name, false)
			e.log.Error("compensation failed",
				"flow", flowName,
				"step", step.Name,
				"error", err,
			)
			continue
		}

		metrics.RecordCompensation(flowName, step.Name, true)
		e.log.Info("step compensated", "flow", flowName, "step", step.Name)
	}
	return ran
}
