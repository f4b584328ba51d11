package probe

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no live host is configured for
// introspection. Detectors fall back to static-file analysis.
var ErrUnavailable = errors.New("probe: live introspection unavailable")

// LiveIntrospectionProbe is an optional collaborator that can inspect a
// running instance of the target framework, e.g. to list registered
// middleware. There is no portable static equivalent, so the interface is
// explicit about being indeterminate when no live host exists.
type LiveIntrospectionProbe interface {
	// Middleware lists globally registered middleware class names.
	Middleware(ctx context.Context) ([]string, error)
}

// Unavailable is the default probe: every query is indeterminate.
type Unavailable struct{}

func (Unavailable) Middleware(context.Context) ([]string, error) { return nil, ErrUnavailable }
