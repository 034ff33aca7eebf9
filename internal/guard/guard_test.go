package guard

import "testing"

type stubSessions bool

func (s stubSessions) HasCredential() bool { return bool(s) }

func TestRequireAuth(t *testing.T) {
	g := RequireAuth{Sessions: stubSessions(true)}
	if d := g.Check(); !d.Allowed {
		t.Errorf("authenticated user denied: %+v", d)
	}

	g = RequireAuth{Sessions: stubSessions(false)}
	d := g.Check()
	if d.Allowed {
		t.Error("unauthenticated user admitted")
	}
	if d.Redirect != ViewLogin {
		t.Errorf("Redirect = %q, want %q", d.Redirect, ViewLogin)
	}
}

func TestRequireAnon(t *testing.T) {
	g := RequireAnon{Sessions: stubSessions(false)}
	if d := g.Check(); !d.Allowed {
		t.Errorf("anonymous user denied: %+v", d)
	}

	g = RequireAnon{Sessions: stubSessions(true)}
	d := g.Check()
	if d.Allowed {
		t.Error("authenticated user admitted to login view")
	}
	if d.Redirect != ViewCompare {
		t.Errorf("Redirect = %q, want %q", d.Redirect, ViewCompare)
	}
}
