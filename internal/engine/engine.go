// Package engine holds the money-moving operations of the platform: joining
// tournaments, kill rewards and settlement, and review of deposit and
// withdrawal requests. Every mutation runs as one store.RunAtomic unit.
//
// Engines do not log. Callers log and record metrics from the returned error.
package engine

import (
	"context"
	"errors"
	"time"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// Notifier delivers account events. Delivery is best-effort: Notify is only
// called after commit and its outcome never changes an operation's result.
type Notifier interface {
	Notify(ctx context.Context, accountID uint, event domain.Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, uint, domain.Event) {}

// Engine runs platform operations against a Store
type Engine struct {
	store    store.Store
	notifier Notifier
	now      func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithNotifier sets the notification sender
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Engine over s
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, notifier: nopNotifier{}, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) emit(ctx context.Context, ev domain.Event) {
	ev.OccurredAt = e.now()
	e.notifier.Notify(context.WithoutCancel(ctx), ev.AccountID, ev)
}

// ownedTournament loads a tournament under lock and hides it from anyone
// but its owner.
func ownedTournament(ctx context.Context, tx store.Tx, adminID, id uint) (*domain.Tournament, error) {
	t, err := lockTournament(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if t.OwnerAdminID != adminID {
		return nil, errTournamentNotFound
	}
	return t, nil
}

var errTournamentNotFound = domain.Errorf(domain.ErrNotFound, "tournament not found")

func lockTournament(ctx context.Context, tx store.Tx, id uint) (*domain.Tournament, error) {
	t, err := tx.LockTournament(ctx, id)
	if isNotFound(err) {
		return nil, errTournamentNotFound
	}
	return t, err
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func validation(format string, args ...any) error {
	return domain.Errorf(domain.ErrValidation, format, args...)
}
