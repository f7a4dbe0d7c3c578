package domain

import "fmt"

// NotFoundError represents a missing resource. Expired sessions surface as
// this same error so callers cannot distinguish expired from never-issued.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError is malformed or out-of-range caller input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel for errors.Is checks against ValidationError.
var ErrValidation = ValidationError{}

// DuplicateError is a uniqueness violation within a role namespace.
type DuplicateError struct {
	Field string
}

func (e DuplicateError) Error() string {
	if e.Field == "" {
		return "already taken"
	}
	return fmt.Sprintf("%s already taken", e.Field)
}

func (e DuplicateError) Is(target error) bool {
	_, ok := target.(DuplicateError)
	if ok {
		return true
	}
	_, ok = target.(*DuplicateError)
	return ok
}

var ErrDuplicate = DuplicateError{}

// ForbiddenError is a valid session acting outside its rights: wrong role,
// inactive account, or acting on another partner's property.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return e.Reason
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// IllegalTransitionError is a state-machine violation on an offer or bid.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e IllegalTransitionError) Error() string {
	if e.From == "" && e.To == "" {
		return "illegal transition"
	}
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

func (e IllegalTransitionError) Is(target error) bool {
	_, ok := target.(IllegalTransitionError)
	if ok {
		return true
	}
	_, ok = target.(*IllegalTransitionError)
	return ok
}

var ErrIllegalTransition = IllegalTransitionError{}

// DependencyFailureError hides persistence or payment collaborator faults
// behind a generic retryable failure. The cause is kept for logs, never
// serialized to callers.
type DependencyFailureError struct {
	Op    string
	Cause error
}

func (e DependencyFailureError) Error() string {
	if e.Op == "" {
		return "dependency failure"
	}
	return fmt.Sprintf("dependency failure during %s", e.Op)
}

func (e DependencyFailureError) Unwrap() error { return e.Cause }

func (e DependencyFailureError) Is(target error) bool {
	_, ok := target.(DependencyFailureError)
	if ok {
		return true
	}
	_, ok = target.(*DependencyFailureError)
	return ok
}

var ErrDependencyFailure = DependencyFailureError{}

var (
	// ErrUnauthenticated is a missing, expired or unresolvable session.
	ErrUnauthenticated = fmt.Errorf("unauthenticated")

	// ErrSubscriptionRequired is a valid investor session lacking the
	// foreclosure entitlement. Kept distinct from ForbiddenError so the
	// surface can render an upsell instead of a dead end.
	ErrSubscriptionRequired = fmt.Errorf("active subscription required")

	// ErrThrottled is returned when login attempts exceed the per-account
	// limit inside the throttle window.
	ErrThrottled = fmt.Errorf("too many attempts")

	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords, indistinguishably.
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
)
