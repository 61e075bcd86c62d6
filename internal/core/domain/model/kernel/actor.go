package kernel

import "dispatch/internal/pkg/errs"

// Actor is the verified identity behind a call. The zero value is an anonymous caller.
type Actor struct {
	id      UUID
	isAdmin bool
}

// NewActor builds an authenticated identity carrying the admin claim.
func NewActor(id UUID, isAdmin bool) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, errs.NewValueIsInvalidErrorWithCause("actor", err)
	}
	return Actor{id: id, isAdmin: isAdmin}, nil
}

// ID returns the caller identifier.
func (a Actor) ID() UUID {
	return a.id
}

// IsAdmin reports the admin claim.
func (a Actor) IsAdmin() bool {
	return a.isAdmin
}

// IsAuthenticated reports whether an identity is attached.
func (a Actor) IsAuthenticated() bool {
	return a.id.Validate() == nil
}

// RequireAuthenticated fails for anonymous callers.
func (a Actor) RequireAuthenticated() error {
	if !a.IsAuthenticated() {
		return errs.NewUnauthenticatedError("the function must be called while authenticated")
	}
	return nil
}

// RequireAdmin fails for anonymous callers first, then for callers without the admin claim.
func (a Actor) RequireAdmin() error {
	if err := a.RequireAuthenticated(); err != nil {
		return err
	}
	if !a.isAdmin {
		return errs.NewPermissionDeniedError("only admins can perform this action")
	}
	return nil
}

// Is reports whether the caller is the given user.
func (a Actor) Is(id UUID) bool {
	return a.IsAuthenticated() && a.id.IsEqual(id)
}
