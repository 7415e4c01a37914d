// Package http provides HTTP routing and middleware configuration for
// the development server.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"

	"github.com/rainflow/accounts/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler serving the account
// API under the production backend's paths:
//
//	POST /new_user.php     → accountHandler.Register
//	POST /login.php        → accountHandler.Login
//	GET  /logout.php       → accountHandler.Logout
//	GET  /user_list.php    → accountHandler.UserList
//	POST /update_user.php  → accountHandler.UpdateUser
//	GET  /delete_user.php  → accountHandler.DeleteUser
//
// Every request is logged through the given zap logger.
func NewRouter(accountHandler *AccountHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Post("/new_user.php", accountHandler.Register)
	r.Post("/login.php", accountHandler.Login)
	r.Get("/logout.php", accountHandler.Logout)
	r.Get("/user_list.php", accountHandler.UserList)
	r.Post("/update_user.php", accountHandler.UpdateUser)
	r.Get("/delete_user.php", accountHandler.DeleteUser)

	return r
}
