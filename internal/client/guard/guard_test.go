package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rainflow/accounts/internal/client/session"
	"github.com/rainflow/accounts/internal/models"
)

func sessionFor(role models.Role) session.Session {
	return session.Session{
		Identity:      &models.Identity{ID: 1, Name: "A", Email: "a@b.com", Role: role},
		Authenticated: true,
	}
}

func TestEvaluate(t *testing.T) {
	empty := session.Session{}

	tests := []struct {
		name string
		sess session.Session
		req  Requirement
		want Decision
	}{
		{"none always renders", empty, RequireNone, Decision{Allowed: true}},
		{"none renders for admin", sessionFor(models.RoleAdministrator), RequireNone, Decision{Allowed: true}},
		{"authenticated rejects empty session", empty, RequireAuthenticated, Decision{RedirectTo: ScreenSignIn}},
		{"authenticated renders for user", sessionFor(models.RoleUser), RequireAuthenticated, Decision{Allowed: true}},
		{"administrator rejects empty session", empty, RequireAdministrator, Decision{RedirectTo: ScreenSignIn}},
		{"administrator redirects plain user home", sessionFor(models.RoleUser), RequireAdministrator, Decision{RedirectTo: ScreenHome}},
		{"administrator renders for admin", sessionFor(models.RoleAdministrator), RequireAdministrator, Decision{Allowed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.sess, tt.req))
		})
	}
}

// Logging out while a protected screen is open must redirect on the next
// evaluation, not merely on the next navigation.
func TestEvaluate_AfterSessionCleared(t *testing.T) {
	sess := sessionFor(models.RoleAdministrator)
	assert.True(t, Evaluate(sess, RequireAdministrator).Allowed)

	cleared := session.Session{}
	dec := Evaluate(cleared, RequireAdministrator)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ScreenSignIn, dec.RedirectTo)
}

func TestRequired(t *testing.T) {
	assert.Equal(t, RequireNone, Required(ScreenSignIn))
	assert.Equal(t, RequireAuthenticated, Required(ScreenHome))
	assert.Equal(t, RequireAdministrator, Required(ScreenRoster))
}
