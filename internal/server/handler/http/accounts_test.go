package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/rainflow/accounts/internal/models"
	"github.com/rainflow/accounts/internal/service"
)

type mockAccountService struct {
	RegisterFunc     func(ctx context.Context, p service.RegisterParams) (int, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (models.Account, string, error)
	LogoutFunc       func(ctx context.Context, token string) error
	ListFunc         func(ctx context.Context) ([]models.Account, error)
	UpdateFunc       func(ctx context.Context, id int, name, number, gender string) (models.Account, error)
	DeleteFunc       func(ctx context.Context, id int) error
}

func (m *mockAccountService) Register(ctx context.Context, p service.RegisterParams) (int, error) {
	return m.RegisterFunc(ctx, p)
}
func (m *mockAccountService) Authenticate(ctx context.Context, email, password string) (models.Account, string, error) {
	return m.AuthenticateFunc(ctx, email, password)
}
func (m *mockAccountService) Logout(ctx context.Context, token string) error {
	return m.LogoutFunc(ctx, token)
}
func (m *mockAccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return m.ListFunc(ctx)
}
func (m *mockAccountService) UpdateAccount(ctx context.Context, id int, name, number, gender string) (models.Account, error) {
	return m.UpdateFunc(ctx, id, name, number, gender)
}
func (m *mockAccountService) DeleteAccount(ctx context.Context, id int) error {
	return m.DeleteFunc(ctx, id)
}

// multipartBody builds a multipart form request body from fields.
func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.Envelope {
	t.Helper()
	var env models.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("response is not an envelope: %v", err)
	}
	return env
}

func registerFields() map[string]string {
	return map[string]string{
		"name": "A", "email": "a@b.com", "number": "1234567890", "gender": "male",
		"password": "secret1", "confirm_password": "secret1", "is_admin": "false",
	}
}

func TestRegister_Success(t *testing.T) {
	var got service.RegisterParams
	h := &AccountHandler{AccountService: &mockAccountService{
		RegisterFunc: func(ctx context.Context, p service.RegisterParams) (int, error) {
			got = p
			return 12, nil
		},
	}}

	body, ctype := multipartBody(t, registerFields())
	req := httptest.NewRequest(http.MethodPost, "/new_user.php", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success, got %+v", env)
	}
	var payload models.RegisterPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.UserID != 12 {
		t.Errorf("unexpected payload: %s", env.Data)
	}
	if got.Email != "a@b.com" || got.IsAdmin != 0 {
		t.Errorf("params not forwarded: %+v", got)
	}
}

func TestRegister_EmailExists(t *testing.T) {
	h := &AccountHandler{AccountService: &mockAccountService{
		RegisterFunc: func(ctx context.Context, p service.RegisterParams) (int, error) {
			return 0, service.ErrEmailExists
		},
	}}

	body, ctype := multipartBody(t, registerFields())
	req := httptest.NewRequest(http.MethodPost, "/new_user.php", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("domain failures ride HTTP 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Err == nil || env.Err.Code != models.CodeEmailExists {
		t.Errorf("expected EMAIL_EXISTS envelope, got %+v", env)
	}
}

func TestRegister_MismatchedPasswords(t *testing.T) {
	called := false
	h := &AccountHandler{AccountService: &mockAccountService{
		RegisterFunc: func(ctx context.Context, p service.RegisterParams) (int, error) {
			called = true
			return 0, nil
		},
	}}

	fields := registerFields()
	fields["confirm_password"] = "other99"
	body, ctype := multipartBody(t, fields)
	req := httptest.NewRequest(http.MethodPost, "/new_user.php", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected rejection")
	}
	if called {
		t.Error("service must not be reached on validation failure")
	}
}

func TestLogin_Success_SetsSessionCookie(t *testing.T) {
	h := &AccountHandler{AccountService: &mockAccountService{
		AuthenticateFunc: func(ctx context.Context, email, password string) (models.Account, string, error) {
			return models.Account{ID: 7, Name: "A", Email: email, IsAdmin: 0}, "tok-123", nil
		},
	}}

	body, ctype := multipartBody(t, map[string]string{"email": "a@b.com", "password": "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/login.php", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success, got %+v", env)
	}
	var payload models.LoginPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.UserID != 7 || payload.IsAdmin != 0 {
		t.Errorf("unexpected payload: %+v", payload)
	}

	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == sessionCookie && c.Value == "tok-123" {
			found = true
		}
	}
	if !found {
		t.Errorf("session cookie not set: %+v", cookies)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := &AccountHandler{AccountService: &mockAccountService{
		AuthenticateFunc: func(ctx context.Context, email, password string) (models.Account, string, error) {
			return models.Account{}, "", service.ErrInvalidCredentials
		},
	}}

	body, ctype := multipartBody(t, map[string]string{"email": "a@b.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/login.php", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Err == nil || env.Err.Code != models.CodeInvalidCredentials {
		t.Errorf("expected INVALID_CREDENTIALS envelope, got %+v", env)
	}
}

func TestLogout_DropsSessionToken(t *testing.T) {
	dropped := ""
	h := &AccountHandler{AccountService: &mockAccountService{
		LogoutFunc: func(ctx context.Context, token string) error {
			dropped = token
			return nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/logout.php", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok-123"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if env := decodeEnvelope(t, rec); !env.Success {
		t.Errorf("expected success, got %+v", env)
	}
	if dropped != "tok-123" {
		t.Errorf("token not dropped: %q", dropped)
	}
}

func TestUserList_StringFields(t *testing.T) {
	h := &AccountHandler{AccountService: &mockAccountService{
		ListFunc: func(ctx context.Context) ([]models.Account, error) {
			return []models.Account{
				{ID: 1, Name: "A", Email: "a@b.com", Number: "1234567890", Gender: "male", IsAdmin: 1},
			}, nil
		},
	}}

	rec := httptest.NewRecorder()
	h.UserList(rec, httptest.NewRequest(http.MethodGet, "/user_list.php", nil))

	env := decodeEnvelope(t, rec)
	var items []models.UserListItem
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "1" || items[0].IsAdmin != "1" {
		t.Errorf("list fields must be strings: %+v", items)
	}
}

func TestUpdateUser_IgnoresEmailField(t *testing.T) {
	h := &AccountHandler{AccountService: &mockAccountService{
		UpdateFunc: func(ctx context.Context, id int, name, number, gender string) (models.Account, error) {
			// Email never reaches the service; it is immutable.
			return models.Account{ID: id, Name: name, Email: "original@b.com", Number: number, Gender: gender}, nil
		},
	}}

	body, ctype := multipartBody(t, map[string]string{
		"user_id": "3", "name": "New", "email": "hacker@evil.com",
		"number": "1112223334", "gender": "other",
	})
	req := httptest.NewRequest(http.MethodPost, "/update_user.php", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.UpdateUser(rec, req)

	env := decodeEnvelope(t, rec)
	var item models.UserListItem
	if err := json.Unmarshal(env.Data, &item); err != nil {
		t.Fatal(err)
	}
	if item.Email != "original@b.com" {
		t.Errorf("email must remain immutable: %+v", item)
	}
}

func TestDeleteUser_ParsesQueryParam(t *testing.T) {
	gotID := 0
	h := &AccountHandler{AccountService: &mockAccountService{
		DeleteFunc: func(ctx context.Context, id int) error {
			gotID = id
			return nil
		},
	}}

	rec := httptest.NewRecorder()
	h.DeleteUser(rec, httptest.NewRequest(http.MethodGet, "/delete_user.php?user_id=5", nil))

	if env := decodeEnvelope(t, rec); !env.Success {
		t.Errorf("expected success, got %+v", env)
	}
	if gotID != 5 {
		t.Errorf("expected id 5, got %d", gotID)
	}
}

func TestRouter_WiresEndpoints(t *testing.T) {
	h := &AccountHandler{AccountService: &mockAccountService{
		ListFunc: func(ctx context.Context) ([]models.Account, error) { return nil, nil },
	}}
	router := NewRouter(h, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user_list.php", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("user_list.php not routed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.php", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rec.Code)
	}
}
