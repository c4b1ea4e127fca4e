// Package web implements the browser-facing surface: form posts, redirects
// and an opaque session cookie. HTML rendering is out of scope, so GET
// responses carry JSON payloads; the route table and redirect behaviour are
// what matter here.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/tareas-go/apperror"
	"github.com/user/tareas-go/auth"
	"github.com/user/tareas-go/sessions"
	"github.com/user/tareas-go/tasks"
)

// Handlers wires the credential store, session store and task repository
// into the browser route table. All three are constructor-supplied
// collaborators, never package-level globals.
type Handlers struct {
	credentials auth.Service
	store       sessions.Store
	tasks       tasks.Service
	cookieName  string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(credentials auth.Service, store sessions.Store, taskService tasks.Service, cookieName string) *Handlers {
	return &Handlers{
		credentials: credentials,
		store:       store,
		tasks:       taskService,
		cookieName:  cookieName,
	}
}

// RegisterRoutes mounts the browser routes. Authenticated routes sit behind
// the session middleware, which redirects to /login instead of answering 401.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/register", h.handleRegisterForm)
	r.Post("/register", h.handleRegister)
	r.Get("/login", h.handleLoginForm)
	r.Post("/login", h.handleLogin)
	r.Get("/about", h.handleAbout)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(h.store, h.cookieName))
		r.Get("/", h.handleIndex)
		r.Get("/logout", h.handleLogout)
		r.Post("/add", h.handleAddTask)
		r.Get("/edit/{id}", h.handleEditForm)
		r.Post("/edit/{id}", h.handleEdit)
		r.Get("/delete/{id}", h.handleDelete)
	})
}

// formDescription stands in for a rendered HTML form: it names the action
// and the fields a client should post.
type formDescription struct {
	Action string   `json:"action"`
	Method string   `json:"method"`
	Fields []string `json:"fields"`
}

func (h *Handlers) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formDescription{
		Action: "/register",
		Method: http.MethodPost,
		Fields: []string{"username", "password"},
	})
}

func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid form data", err))
		return
	}

	_, err := h.credentials.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		// Duplicate username and validation failures are user-visible
		// errors on this page, not redirects.
		auth.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formDescription{
		Action: "/login",
		Method: http.MethodPost,
		Fields: []string{"username", "password"},
	})
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid form data", err))
		return
	}

	user, err := h.credentials.VerifyCredentials(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	token := h.store.Start(user.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		// Ending an already-ended session is a no-op, so this is safe even
		// if the user double-clicks logout.
		h.store.End(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	list, err := h.tasks.Search(r.Context(), userID, r.URL.Query().Get("search"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks.TaskListResponse{Tasks: list, Total: len(list)})
}

func (h *Handlers) handleAddTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid form data", err))
		return
	}

	_, err := h.tasks.Create(r.Context(), userID, tasks.TaskRequest{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    r.PostFormValue("priority"),
	})
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) handleEditForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	// The edit form is prefilled with the task's current values, so this is
	// the ownership-scoped read.
	task, err := h.tasks.Get(r.Context(), taskID, userID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *Handlers) handleEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid form data", err))
		return
	}

	_, err := h.tasks.Update(r.Context(), taskID, userID, tasks.TaskRequest{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    r.PostFormValue("priority"),
	})
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	// Delete is scoped by ownership exactly like edit; a nonexistent or
	// foreign id surfaces as an error instead of silently succeeding.
	if err := h.tasks.Delete(r.Context(), taskID, userID); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) handleAbout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":        "tareas",
		"description": "personal task manager: register, log in, and keep a prioritized task list",
	})
}

func (h *Handlers) taskIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid task id", err))
		return 0, false
	}
	return id, true
}

// writeJSON serializes data to JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
