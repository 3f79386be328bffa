package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	e "authd/internal/core/domain/errors"
	"authd/internal/core/domain/logging"
	"authd/internal/core/domain/user"
)

var ErrQueueFull = errors.New("notification queue is full")

type task func(ctx context.Context) error

// Dispatcher decouples email delivery from request handling: sends are
// queued and executed by background workers under their own timeout, so a
// slow or failing delivery channel can never block an HTTP response or
// undo the state change that triggered it. Failures are logged only.
type Dispatcher struct {
	log           logging.Logger
	resetSender   user.PasswordResetTokenSender
	changedSender user.PasswordChangedNotificationSender
	sendTimeout   time.Duration

	tasks     chan task
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewDispatcher(
	log logging.Logger,
	resetSender user.PasswordResetTokenSender,
	changedSender user.PasswordChangedNotificationSender,
	queueSize int,
	workerCount int,
	sendTimeout time.Duration,
) *Dispatcher {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if resetSender == nil {
		panic(e.NewNilArgumentError("resetSender"))
	}
	if changedSender == nil {
		panic(e.NewNilArgumentError("changedSender"))
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if workerCount < 1 {
		workerCount = 1
	}

	d := &Dispatcher{
		log:           log,
		resetSender:   resetSender,
		changedSender: changedSender,
		sendTimeout:   sendTimeout,
		tasks:         make(chan task, queueSize),
	}
	d.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go d.work()
	}
	return d
}

func (d *Dispatcher) SendPasswordResetToken(
	ctx context.Context,
	u user.User,
	token user.PasswordResetToken,
) error {
	return d.enqueue(func(ctx context.Context) error {
		return d.resetSender.SendPasswordResetToken(ctx, u, token)
	})
}

func (d *Dispatcher) SendPasswordChangedNotification(ctx context.Context, u user.User) error {
	return d.enqueue(func(ctx context.Context) error {
		return d.changedSender.SendPasswordChangedNotification(ctx, u)
	})
}

func (d *Dispatcher) enqueue(t task) error {
	select {
	case d.tasks <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for t := range d.tasks {
		// The request context is gone by the time the task runs, so each
		// send gets its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		if err := t(ctx); err != nil {
			d.log.Error(ctx, "Could not deliver notification.", logging.Entry("err", err))
		}
		cancel()
	}
}

// Close drains queued notifications and stops the workers.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.tasks)
	})
	d.wg.Wait()
}
