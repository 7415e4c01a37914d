// Package http provides the development server's HTTP handlers, which
// emulate the production account backend's endpoints and response shapes.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rainflow/accounts/internal/models"
	"github.com/rainflow/accounts/internal/service"
)

// sessionCookie is the cookie carrying the server-side session token.
const sessionCookie = "session_token"

// AccountService defines the operations required by the HTTP handlers.
type AccountService interface {
	// Register creates an account and returns the assigned id.
	Register(ctx context.Context, p service.RegisterParams) (int, error)
	// Authenticate verifies credentials and issues a session token.
	Authenticate(ctx context.Context, email, password string) (models.Account, string, error)
	// Logout drops a session token.
	Logout(ctx context.Context, token string) error
	// ListAccounts returns all accounts in roster order.
	ListAccounts(ctx context.Context) ([]models.Account, error)
	// UpdateAccount changes an account's mutable fields.
	UpdateAccount(ctx context.Context, id int, name, number, gender string) (models.Account, error)
	// DeleteAccount removes an account.
	DeleteAccount(ctx context.Context, id int) error
}

// AccountHandler handles the account endpoints.
type AccountHandler struct {
	// AccountService performs the underlying account operations.
	AccountService AccountService
}

// Register handles POST /new_user.php. Domain failures, including a
// duplicate email, ride a success:false envelope on HTTP 200, which is
// what the production backend does and the client expects.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeFail(w, http.StatusOK, "", "invalid form data")
		return
	}

	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")
	switch {
	case r.FormValue("name") == "" || r.FormValue("email") == "":
		writeFail(w, http.StatusOK, "", "name and email are required")
		return
	case len(password) < 6:
		writeFail(w, http.StatusOK, "", "password must be at least 6 characters")
		return
	case password != confirm:
		writeFail(w, http.StatusOK, "", "passwords do not match")
		return
	}

	isAdmin := 0
	if r.FormValue("is_admin") == "true" || r.FormValue("is_admin") == "1" {
		isAdmin = 1
	}

	id, err := h.AccountService.Register(r.Context(), service.RegisterParams{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Number:   r.FormValue("number"),
		Gender:   r.FormValue("gender"),
		IsAdmin:  isAdmin,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			writeFail(w, http.StatusOK, models.CodeEmailExists, "email already registered")
			return
		}
		writeFail(w, http.StatusInternalServerError, "", "internal error")
		return
	}

	writeOK(w, models.RegisterPayload{UserID: id}, "registered")
}

// Login handles POST /login.php. Rejected credentials answer 401 with an
// INVALID_CREDENTIALS envelope; the client reads the code either way.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeFail(w, http.StatusOK, "", "invalid form data")
		return
	}

	a, token, err := h.AccountService.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeFail(w, http.StatusUnauthorized, models.CodeInvalidCredentials, "invalid email or password")
			return
		}
		writeFail(w, http.StatusInternalServerError, "", "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	writeOK(w, a.LoginPayload(), "login successful")
}

// Logout handles GET /logout.php. It drops the server-side session if a
// token is present and always acknowledges.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		token = c.Value
	}
	if err := h.AccountService.Logout(r.Context(), token); err != nil {
		writeFail(w, http.StatusInternalServerError, "", "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeOK(w, nil, "logged out")
}

// UserList handles GET /user_list.php.
func (h *AccountHandler) UserList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.AccountService.ListAccounts(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "", "internal error")
		return
	}

	items := make([]models.UserListItem, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, a.ListItem())
	}
	writeOK(w, items, "ok")
}

// UpdateUser handles POST /update_user.php. The email field arrives with
// the form but is ignored: it is immutable.
func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeFail(w, http.StatusOK, "", "invalid form data")
		return
	}

	id, err := strconv.Atoi(r.FormValue("user_id"))
	if err != nil {
		writeFail(w, http.StatusOK, "", "invalid user_id")
		return
	}

	a, err := h.AccountService.UpdateAccount(r.Context(), id,
		r.FormValue("name"), r.FormValue("number"), r.FormValue("gender"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeFail(w, http.StatusOK, "", "user not found")
			return
		}
		writeFail(w, http.StatusInternalServerError, "", "internal error")
		return
	}

	writeOK(w, a.ListItem(), "user updated")
}

// DeleteUser handles GET /delete_user.php?user_id=<id>.
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		writeFail(w, http.StatusOK, "", "invalid user_id")
		return
	}

	if err := h.AccountService.DeleteAccount(r.Context(), id); err != nil {
		writeFail(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeOK(w, nil, "user deleted")
}

// parseForm accepts multipart or urlencoded form bodies. The browser
// client sends multipart.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(1 << 20)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func writeOK(w http.ResponseWriter, data any, message string) {
	env := models.Envelope{Success: true, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			writeFail(w, http.StatusInternalServerError, "", "internal error")
			return
		}
		env.Data = raw
	}
	writeEnvelope(w, http.StatusOK, env)
}

func writeFail(w http.ResponseWriter, status int, code, message string) {
	env := models.Envelope{Success: false, Message: message}
	if code != "" {
		env.Err = &models.ErrorBody{Code: code, Message: message}
	}
	writeEnvelope(w, status, env)
}

func writeEnvelope(w http.ResponseWriter, status int, env models.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
