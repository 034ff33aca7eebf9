// Package guard gates view navigation on authentication state. The TUI
// router consults a guard before switching views and follows the returned
// redirect when entry is denied.
package guard

// Decision is the outcome of evaluating a guard for a navigation attempt.
type Decision struct {
	Allowed  bool
	Redirect string // target view when not allowed
}

// credentialed reports whether a bearer credential is stored.
type credentialed interface {
	HasCredential() bool
}

// Well-known view names used as redirect targets.
const (
	ViewLogin   = "login"
	ViewCompare = "compare"
)

// RequireAuth admits only authenticated navigation, redirecting to the
// login view otherwise.
type RequireAuth struct {
	Sessions credentialed
}

// Check implements the guard.
func (g RequireAuth) Check() Decision {
	if g.Sessions.HasCredential() {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: ViewLogin}
}

// RequireAnon is the inverse gate: it keeps authenticated users off the
// login view by redirecting them to the default landing view.
type RequireAnon struct {
	Sessions credentialed
}

// Check implements the guard.
func (g RequireAnon) Check() Decision {
	if g.Sessions.HasCredential() {
		return Decision{Redirect: ViewCompare}
	}
	return Decision{Allowed: true}
}
