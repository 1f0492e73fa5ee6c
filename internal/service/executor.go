package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/folio-labs/bulk-operations/internal/auth"
)

// Executor runs stage workers off the request goroutine. The pool is
// unbounded; exclusivity per operation comes from the state machine,
// not from the pool.
type Executor struct {
	wg sync.WaitGroup
}

func NewExecutor() *Executor {
	return &Executor{}
}

// Dispatch schedules task on its own goroutine. The ambient request
// values (tenant, user, locale) are carried over; the request's
// cancellation is not, since stages outlive the triggering request.
func (e *Executor) Dispatch(ctx context.Context, name string, task func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)

	log := zap.S().Named("executor")
	if user, ok := auth.UserFromContext(ctx); ok {
		log = log.With("tenant", user.Tenant)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("task %s panicked: %v", name, r)
			}
		}()
		log.Debugf("running task %s", name)
		task(ctx)
	}()
}

// Wait blocks until every dispatched task has returned.
func (e *Executor) Wait() {
	e.wg.Wait()
}
