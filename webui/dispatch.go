package webui

import (
	"context"
	"runtime"
	"sync"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/pkg/errors"
)

var ErrLoopClosed = errors.New("execution loop closed")

const loopQueueSize = 16

// ExecutionContext runs work on a caller chosen thread, such as a UI main loop.
type ExecutionContext interface {
	// Post schedules fn and returns without waiting for it.
	Post(fn func()) error
}

// completion is the message a challenge sends back to the waiting acquisition.
type completion struct {
	resp *oauthmodel.AuthorizationResponse
	err  error
}

// Dispatch runs ui.Challenge on ec, or on a dedicated goroutine when ec is nil, and waits for its
// completion. Errors returned by the challenge are passed through unchanged.
func Dispatch(ctx context.Context, ec ExecutionContext, ui WebUI, authorizationURI, redirectURI string) (*oauthmodel.AuthorizationResponse, error) {
	done := make(chan completion, 1)
	run := func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: errors.Errorf("[Dispatch] webui panicked: %v", r)}
			}
		}()
		resp, err := ui.Challenge(ctx, authorizationURI, redirectURI)
		done <- completion{resp: resp, err: err}
	}

	if ec == nil {
		go run()
	} else if err := ec.Post(run); err != nil {
		return nil, errors.Wrap(err, "[Dispatch] posting challenge")
	}

	select {
	case c := <-done:
		return c.resp, c.err
	case <-ctx.Done():
		return nil, interrupted(ctx)
	}
}

// Loop is an ExecutionContext backed by one goroutine locked to its OS thread. Posted functions
// run one at a time in posting order.
type Loop struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

var _ ExecutionContext = (*Loop)(nil)

func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), loopQueueSize),
		done:  make(chan struct{}),
	}
	started := make(chan struct{})
	go l.run(started)
	<-started
	return l
}

func (l *Loop) run(started chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	close(started)
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.done:
			return
		}
	}
}

func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Close stops the loop after the function it is running returns.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}
