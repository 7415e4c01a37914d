// Package models defines the core data structures for identities,
// roster entries, and the backend wire format.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role is the closed set of authorization roles an account can hold.
type Role string

const (
	// RoleUser represents a regular account with no administrative access.
	RoleUser Role = "user"
	// RoleAdministrator represents an account allowed to manage the roster.
	RoleAdministrator Role = "administrator"
)

// RoleFromFlag converts the backend's numeric is_admin flag into a Role.
// The backend treats exactly 1 as administrator and everything else as a
// regular user; that binary treatment is preserved here.
func RoleFromFlag(flag int) Role {
	if flag == 1 {
		return RoleAdministrator
	}
	return RoleUser
}

// RoleFromFlagString converts the string form of the is_admin flag, as
// returned by the user list endpoint, into a Role.
func RoleFromFlagString(flag string) Role {
	if strings.TrimSpace(flag) == "1" {
		return RoleAdministrator
	}
	return RoleUser
}

// AdminFlag converts a Role back into the backend's numeric flag.
func (r Role) AdminFlag() int {
	if r == RoleAdministrator {
		return 1
	}
	return 0
}

// Identity is the server-issued profile of the authenticated user.
// It is immutable for the lifetime of a session; a new login replaces
// it wholesale.
type Identity struct {
	// ID is the unique server-assigned account identifier.
	ID int `json:"user_id"`
	// Name is the display name chosen at registration.
	Name string `json:"name"`
	// Email is the account's login email address.
	Email string `json:"email"`
	// Role is the account's authorization role.
	Role Role `json:"role"`
}

// DisplayID renders the account identifier zero-padded to six digits,
// the form shown on the home screen.
func (i Identity) DisplayID() string {
	return fmt.Sprintf("%06d", i.ID)
}

// RosterEntry is one account row in the administrator-visible roster.
// Roster entries are display and CRUD data only; they are never consulted
// for authorization decisions.
type RosterEntry struct {
	// ID is the account identifier as the backend returns it.
	ID string `json:"id"`
	// Name is the account's display name.
	Name string `json:"name"`
	// Email is the account's email address. Sent on update but not editable.
	Email string `json:"email"`
	// Number is the account's 10-digit phone number.
	Number string `json:"number"`
	// Gender is the self-reported gender selected at registration.
	Gender string `json:"gender"`
	// Role is the account's authorization role.
	Role Role `json:"role"`
}

// Account is the server-side account record, including credentials.
// It never crosses the wire as-is; handlers map it onto the payload types
// below.
type Account struct {
	ID           int
	Name         string
	Email        string
	Number       string
	Gender       string
	IsAdmin      int
	PasswordHash []byte
}

// ListItem maps the record onto the user list wire row, where every field
// is a string.
func (a Account) ListItem() UserListItem {
	return UserListItem{
		ID:      strconv.Itoa(a.ID),
		Name:    a.Name,
		Email:   a.Email,
		Number:  a.Number,
		Gender:  a.Gender,
		IsAdmin: strconv.Itoa(a.IsAdmin),
	}
}

// LoginPayload maps the record onto the login response payload.
func (a Account) LoginPayload() LoginPayload {
	return LoginPayload{
		UserID:  a.ID,
		Name:    a.Name,
		Email:   a.Email,
		IsAdmin: a.IsAdmin,
	}
}

// ErrorBody is the structured failure the backend attaches to an envelope.
type ErrorBody struct {
	// Code identifies the failure class, e.g. EMAIL_EXISTS or
	// INVALID_CREDENTIALS.
	Code string `json:"code"`
	// Message is the human-readable failure description.
	Message string `json:"message"`
}

// Envelope is the JSON response shape shared by every backend endpoint.
type Envelope struct {
	// Success reports whether the operation was accepted.
	Success bool `json:"success"`
	// Data carries the endpoint-specific payload, left raw until the
	// caller knows its shape.
	Data json.RawMessage `json:"data,omitempty"`
	// Message is an informational message accompanying the result.
	Message string `json:"message"`
	// Err holds the structured failure when Success is false.
	Err *ErrorBody `json:"error,omitempty"`
}

// Backend error codes observed in the production API.
const (
	// CodeEmailExists is returned when a registration email is taken.
	CodeEmailExists = "EMAIL_EXISTS"
	// CodeInvalidCredentials is returned when login credentials are rejected.
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// LoginPayload is the data object returned by a successful login.
type LoginPayload struct {
	UserID  int    `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin int    `json:"is_admin"`
}

// Identity converts the wire payload into a domain Identity, resolving
// the role flag at this boundary.
func (p LoginPayload) Identity() Identity {
	return Identity{
		ID:    p.UserID,
		Name:  p.Name,
		Email: p.Email,
		Role:  RoleFromFlag(p.IsAdmin),
	}
}

// RegisterPayload is the data object returned by a successful registration.
type RegisterPayload struct {
	UserID int `json:"user_id"`
}

// UserListItem is one roster row as the user list endpoint returns it.
// All fields, including the id and admin flag, arrive as strings.
type UserListItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Number  string `json:"number"`
	Gender  string `json:"gender"`
	IsAdmin string `json:"is_admin"`
}

// Entry converts the wire row into a domain RosterEntry.
func (u UserListItem) Entry() RosterEntry {
	return RosterEntry{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Number: u.Number,
		Gender: u.Gender,
		Role:   RoleFromFlagString(u.IsAdmin),
	}
}
