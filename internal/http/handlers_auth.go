package http

import (
	"errors"
	"log/slog"
	"net/http"

	"kharcha/internal/auth"
	applog "kharcha/internal/log"
	"kharcha/internal/storage"
)

type authPageData struct {
	Flash *Flash
	Error string
	// Username echoes the submitted value back into the form.
	Username string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", authPageData{Flash: popFlash(w, r)})
	case http.MethodPost:
		s.handleLoginPost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	user, err := s.store.GetUserByUsername(r.Context(), username)
	if err == nil {
		err = auth.CheckPassword(user.PasswordHash, password)
	}
	if err != nil {
		slog.WarnContext(r.Context(), "Login rejected",
			applog.FieldUsername, username,
			applog.FieldOperation, applog.OpLogin)
		s.render(w, r, "login.html", authPageData{
			Error:    "Invalid username or password.",
			Username: username,
		})
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issue failed",
			applog.FieldError, err,
			applog.FieldUserID, user.ID)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	s.setAuthCookie(w, token)
	slog.InfoContext(r.Context(), "User logged in",
		applog.FieldUserID, user.ID,
		applog.FieldUsername, user.Username,
		applog.FieldOperation, applog.OpLogin)
	setFlash(w, "success", "Welcome back, "+user.Username+"!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "register.html", authPageData{Flash: popFlash(w, r)})
	case http.MethodPost:
		s.handleRegisterPost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")
	confirm := r.Form.Get("password_confirm")

	if err := auth.ValidateRegistration(username, password, confirm); err != nil {
		s.render(w, r, "register.html", authPageData{
			Error:    err.Error(),
			Username: username,
		})
		return
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hash failed", applog.FieldError, err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	user, err := s.store.CreateUser(r.Context(), username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			s.render(w, r, "register.html", authPageData{
				Error:    "That username is already taken.",
				Username: username,
			})
			return
		}
		slog.ErrorContext(r.Context(), "User create failed",
			applog.FieldError, err,
			applog.FieldUsername, username)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issue failed",
			applog.FieldError, err,
			applog.FieldUserID, user.ID)
		setFlash(w, "success", "Account created. Please log in.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	s.setAuthCookie(w, token)
	slog.InfoContext(r.Context(), "User registered",
		applog.FieldUserID, user.ID,
		applog.FieldUsername, user.Username,
		applog.FieldOperation, applog.OpRegister)
	setFlash(w, "success", "Welcome, "+user.Username+"!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	setFlash(w, "info", "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
