// README: Operator notification sinks; all of them are fire-and-forget.
package dispatch

import (
	"context"
	"errors"
)

// Notifier delivers a one-line operator summary. Implementations must be
// safe for concurrent use; errors are for the caller's log only and never
// roll anything back.
type Notifier interface {
	Notify(ctx context.Context, summary string) error
}

type multi []Notifier

// Multi fans a notification out to every configured sink. Each sink gets the
// message regardless of the others' failures; the errors come back joined.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

func (m multi) Notify(ctx context.Context, summary string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
