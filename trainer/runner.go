package trainer

import (
	"context"
	"errors"
	"sync"
)

var ErrRunning = errors.New("training is already running")

// Runner starts a controller in the background and stops it on request.
type Runner struct {
	controller Controller

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	running bool
}

func NewRunner(controller Controller) *Runner {
	return &Runner{controller: controller}
}

// Start runs the controller on its own goroutine until Stop is called, ctx is
// cancelled or the controller returns.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.err = nil
	r.running = true

	go func() {
		err := r.controller.Run(ctx)
		cancel()
		r.mu.Lock()
		r.err = err
		r.running = false
		r.mu.Unlock()
		close(done)
	}()
	return nil
}

// Stop cancels a running controller and waits for it to return.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	return r.Wait()
}

// Wait blocks until the controller returns and reports its error.
func (r *Runner) Wait() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
