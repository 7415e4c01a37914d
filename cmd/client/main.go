// Package main runs the interactive account client: it authenticates
// against the remote backend, keeps the session across restarts, and
// gates the administrator's user roster behind the access guard.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/rainflow/accounts/internal/client/forms"
	"github.com/rainflow/accounts/internal/client/gateway"
	"github.com/rainflow/accounts/internal/client/guard"
	"github.com/rainflow/accounts/internal/client/roster"
	"github.com/rainflow/accounts/internal/client/session"
	"github.com/rainflow/accounts/internal/config"
	"github.com/rainflow/accounts/internal/logger"
	"github.com/rainflow/accounts/internal/models"
)

var (
	version   string
	buildDate string
)

// app holds the client's collaborators for the shell loop.
type app struct {
	store   *session.Store
	gw      *gateway.Client
	roster  *roster.Controller
	log     *zap.Logger
	scanner *bufio.Scanner
}

func main() {
	var showVer bool
	flag.BoolVar(&showVer, "version", false, "show build version and date")

	options := config.Parse()

	if showVer {
		fmt.Printf("Account Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	store := session.NewStore(options.SessionFile)
	// Rehydration runs exactly once, before any login can occur.
	if err := store.Rehydrate(); err != nil {
		log.Log.Warn("session rehydration failed", zap.Error(err))
	}

	gw := gateway.New(options.BackendURL, &http.Client{Timeout: options.Timeout})

	a := &app{
		store:   store,
		gw:      gw,
		roster:  roster.NewController(gw),
		log:     log.Log,
		scanner: bufio.NewScanner(os.Stdin),
	}
	a.run()
}

// run drives the screen loop. Before every screen the guard re-evaluates
// the current session, so a logout on a protected screen redirects
// immediately instead of waiting for the next navigation.
func (a *app) run() {
	screen := guard.ScreenHome

	for {
		dec := guard.Evaluate(a.store.Current(), guard.Required(screen))
		if !dec.Allowed {
			screen = dec.RedirectTo
			continue
		}

		var (
			next guard.Screen
			exit bool
		)
		switch screen {
		case guard.ScreenSignIn:
			next, exit = a.signInScreen()
		case guard.ScreenHome:
			next, exit = a.homeScreen()
		case guard.ScreenRoster:
			next, exit = a.rosterScreen()
		}
		if exit {
			fmt.Println("Bye")
			return
		}
		screen = next
	}
}

// signInScreen is the unauthenticated entry screen.
func (a *app) signInScreen() (guard.Screen, bool) {
	fmt.Println("Sign in — commands: login, register, help, exit")
	for {
		line, ok := a.prompt("signin> ")
		if !ok {
			return 0, true
		}
		switch line {
		case "help":
			fmt.Println("Available commands: login, register, help, exit")
		case "login":
			if a.login() {
				return guard.ScreenHome, false
			}
		case "register":
			a.register()
		case "exit":
			return 0, true
		case "":
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// homeScreen is the default authenticated screen.
func (a *app) homeScreen() (guard.Screen, bool) {
	cur := a.store.Current()
	fmt.Printf("Welcome, %s! Commands: whoami, users, logout, help, exit\n", cur.Identity.Name)
	for {
		line, ok := a.prompt("home> ")
		if !ok {
			return 0, true
		}
		switch line {
		case "help":
			fmt.Println("Available commands: whoami, users, logout, help, exit")
		case "whoami":
			a.whoami()
		case "users":
			// The guard decides whether this session may actually see the
			// roster; non-admins bounce back here.
			if guard.Evaluate(a.store.Current(), guard.RequireAdministrator).Allowed {
				return guard.ScreenRoster, false
			}
			fmt.Println("Only administrators can manage users.")
		case "logout":
			a.logout()
			return guard.ScreenSignIn, false
		case "exit":
			return 0, true
		case "":
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// rosterScreen is the administrator-only user management screen.
func (a *app) rosterScreen() (guard.Screen, bool) {
	if err := a.roster.Load(context.Background()); err != nil {
		fmt.Printf("Failed to load users: %v\n", err)
	}
	a.renderRoster()
	fmt.Println("Commands: list, edit <id>, delete <id>, back, help, exit")

	for {
		line, ok := a.prompt("users> ")
		if !ok {
			return 0, true
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: list, edit <id>, delete <id>, back, help, exit")
		case "list":
			if err := a.roster.Load(context.Background()); err != nil {
				fmt.Printf("Failed to load users: %v\n", err)
			}
			a.renderRoster()
		case "edit":
			if len(args) < 2 {
				fmt.Println("Usage: edit <id>")
				continue
			}
			a.editEntry(args[1])
		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			a.deleteEntry(args[1])
		case "back":
			return guard.ScreenHome, false
		case "exit":
			return 0, true
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// login prompts for credentials and populates the session on success.
func (a *app) login() bool {
	email, ok := a.prompt("Email: ")
	if !ok {
		return false
	}
	password, ok := a.prompt("Password: ")
	if !ok {
		return false
	}

	id, err := a.gw.Login(context.Background(), email, password)
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.Code == models.CodeInvalidCredentials {
			fmt.Println("Invalid email or password. Please check your credentials.")
		} else {
			fmt.Printf("Login failed: %v\n", err)
		}
		return false
	}

	if err := a.store.SetIdentity(id); err != nil {
		// The in-memory session is live even if the durable write failed.
		a.log.Warn("failed to persist session", zap.Error(err))
	}
	return true
}

// register prompts for the registration form, validates it locally, and
// submits it. A form with violations never reaches the backend.
func (a *app) register() {
	form := forms.RegisterForm{}
	form.Name, _ = a.prompt("Name: ")
	form.Email, _ = a.prompt("Email: ")
	form.Number, _ = a.prompt("Phone (10 digits): ")
	form.Gender, _ = a.prompt("Gender (male/female/other): ")
	roleStr, _ := a.prompt("Role (user/admin): ")
	form.Password, _ = a.prompt("Password: ")
	form.ConfirmPassword, _ = a.prompt("Confirm password: ")

	if msgs := forms.Check(form); msgs != nil {
		for field, msg := range msgs {
			fmt.Printf("  %s: %s\n", field, msg)
		}
		return
	}

	role := models.RoleUser
	if roleStr == "admin" {
		role = models.RoleAdministrator
	}

	uid, err := a.gw.Register(context.Background(), gateway.RegisterInput{
		Name:            form.Name,
		Email:           form.Email,
		Number:          form.Number,
		Gender:          form.Gender,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Role:            role,
	})
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.Code == models.CodeEmailExists {
			fmt.Println("This email is already registered. Please use a different email or try logging in.")
		} else {
			fmt.Printf("Registration failed: %v\n", err)
		}
		return
	}
	fmt.Printf("Registration successful (user id %d). Please login with your credentials.\n", uid)
}

// logout clears the local session. The remote call is best effort: a
// transport failure must never block local session termination.
func (a *app) logout() {
	if err := a.gw.Logout(context.Background()); err != nil {
		a.log.Warn("remote logout failed", zap.Error(err))
	}
	if err := a.store.Clear(); err != nil {
		a.log.Warn("failed to erase session record", zap.Error(err))
	}
	fmt.Println("Logged out.")
}

// whoami prints the current identity.
func (a *app) whoami() {
	cur := a.store.Current()
	if cur.Identity == nil {
		fmt.Println("Not signed in.")
		return
	}
	roleLabel := "User Account"
	if cur.Identity.Role == models.RoleAdministrator {
		roleLabel = "Administrator Account"
	}
	fmt.Printf("Unique User ID: %s\nName: %s\nEmail: %s\nAccount: %s\n",
		cur.Identity.DisplayID(), cur.Identity.Name, cur.Identity.Email, roleLabel)
}

// renderRoster prints the current collection.
func (a *app) renderRoster() {
	entries := a.roster.Entries()
	if len(entries) == 0 {
		fmt.Println("No users.")
		return
	}
	fmt.Println("Users:")
	for _, e := range entries {
		fmt.Printf("  [%s] %s <%s> %s %s (%s)\n", e.ID, e.Name, e.Email, e.Number, e.Gender, e.Role)
	}
}

// editEntry prompts for the editable fields and submits the change.
// Email is shown but not editable.
func (a *app) editEntry(id string) {
	var target *models.RosterEntry
	for _, e := range a.roster.Entries() {
		if e.ID == id {
			target = &e
			break
		}
	}
	if target == nil {
		fmt.Println("User not found.")
		return
	}

	fmt.Printf("Editing %s <%s> (email is not editable)\n", target.Name, target.Email)
	form := forms.EditForm{}
	form.Name, _ = a.prompt("Name: ")
	form.Number, _ = a.prompt("Phone (10 digits): ")
	form.Gender, _ = a.prompt("Gender (male/female/other): ")

	if msgs := forms.Check(form); msgs != nil {
		for field, msg := range msgs {
			fmt.Printf("  %s: %s\n", field, msg)
		}
		return
	}

	err := a.roster.SubmitEdit(context.Background(), gateway.UpdateInput{
		ID:     id,
		Name:   form.Name,
		Email:  target.Email,
		Number: form.Number,
		Gender: form.Gender,
	})
	if err != nil {
		fmt.Printf("Update failed: %v\n", err)
		return
	}
	fmt.Println("User updated.")
	a.renderRoster()
}

// deleteEntry confirms and submits a delete.
func (a *app) deleteEntry(id string) {
	answer, ok := a.prompt(fmt.Sprintf("Delete user %s? (y/n): ", id))
	if !ok || answer != "y" {
		fmt.Println("Cancelled.")
		return
	}
	if err := a.roster.SubmitDelete(context.Background(), id); err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		return
	}
	fmt.Println("User deleted.")
	a.renderRoster()
}

// prompt reads one trimmed line. ok is false when stdin is closed.
func (a *app) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !a.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.scanner.Text()), true
}
