// Package guard decides, per screen, whether the current session may
// render it and where an unauthorized viewer is redirected.
package guard

import (
	"github.com/rainflow/accounts/internal/client/session"
	"github.com/rainflow/accounts/internal/models"
)

// Requirement is the capability a screen declares before it renders.
type Requirement int

const (
	// RequireNone renders for anyone.
	RequireNone Requirement = iota
	// RequireAuthenticated renders only for authenticated sessions.
	RequireAuthenticated
	// RequireAdministrator renders only for authenticated administrators.
	RequireAdministrator
)

// Screen identifies a navigable screen of the client.
type Screen int

const (
	// ScreenSignIn is the unauthenticated entry screen.
	ScreenSignIn Screen = iota
	// ScreenHome is the default authenticated screen.
	ScreenHome
	// ScreenRoster is the administrator-only user management screen.
	ScreenRoster
)

// Decision is the outcome of evaluating a requirement against a session:
// either the screen renders, or the viewer is redirected.
type Decision struct {
	// Allowed is true when the screen may render.
	Allowed bool
	// RedirectTo is the target screen when Allowed is false.
	RedirectTo Screen
}

// Evaluate is a pure function of session state and requirement. Only the
// session identity's role gates access; roster data never does.
func Evaluate(sess session.Session, req Requirement) Decision {
	switch req {
	case RequireAuthenticated:
		if !sess.Authenticated {
			return Decision{RedirectTo: ScreenSignIn}
		}
	case RequireAdministrator:
		if !sess.Authenticated {
			return Decision{RedirectTo: ScreenSignIn}
		}
		if sess.Identity.Role != models.RoleAdministrator {
			return Decision{RedirectTo: ScreenHome}
		}
	}
	return Decision{Allowed: true}
}

// Required maps each screen to the capability it declares.
func Required(s Screen) Requirement {
	switch s {
	case ScreenHome:
		return RequireAuthenticated
	case ScreenRoster:
		return RequireAdministrator
	default:
		return RequireNone
	}
}
