// HTTP handlers for the task endpoints of the JSON API surface. The
// cookie-session surface has its own handlers in the web package; both call
// into the same Service.
package tasks

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/tareas-go/apperror"
	"github.com/user/tareas-go/auth"
)

// Handlers wraps the task Service to provide HTTP handlers.
type Handlers struct {
	service Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the task routes on the given router. The caller is
// responsible for wrapping the router in the JWT middleware.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTasks())
	r.Post("/", h.HandleCreateTask())
	r.Get("/{id}", h.HandleGetTask())
	r.Put("/{id}", h.HandleUpdateTask())
	r.Delete("/{id}", h.HandleDeleteTask())
}

// requestUserID pulls the authenticated user id out of the context, which
// the JWT middleware guarantees for mounted routes.
func requestUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return 0, false
	}
	return userID, true
}

// taskIDParam parses the {id} URL parameter.
func taskIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid task id", err))
		return 0, false
	}
	return id, true
}

// HandleListTasks godoc
// @Summary List Tasks
// @Description Lists the current user's tasks, optionally filtered by a substring search over title and description.
// @Tags Tasks
// @Produce json
// @Param search query string false "Case-insensitive substring to match against title or description"
// @Success 200 {object} tasks.TaskListResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Security BearerAuth
// @Router /api/v1/tasks [get]
func (h *Handlers) HandleListTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		// An absent or empty search parameter returns the unfiltered list.
		query := r.URL.Query().Get("search")
		list, err := h.service.Search(r.Context(), userID, query)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, TaskListResponse{Tasks: list, Total: len(list)})
	}
}

// HandleCreateTask godoc
// @Summary Create Task
// @Description Creates a task owned by the current user. Title is required.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param taskBody body tasks.TaskRequest true "Task fields"
// @Success 201 {object} tasks.Task
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - title missing"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Security BearerAuth
// @Router /api/v1/tasks [post]
func (h *Handlers) HandleCreateTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		task, err := h.service.Create(r.Context(), userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, task)
	}
}

// HandleGetTask godoc
// @Summary Get Task
// @Description Returns one task. 404 when the id does not exist, 403 when it belongs to another user.
// @Tags Tasks
// @Produce json
// @Param id path int true "Task id"
// @Success 200 {object} tasks.Task
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - task owned by another user"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Security BearerAuth
// @Router /api/v1/tasks/{id} [get]
func (h *Handlers) HandleGetTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}
		taskID, ok := taskIDParam(w, r)
		if !ok {
			return
		}

		task, err := h.service.Get(r.Context(), taskID, userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, task)
	}
}

// HandleUpdateTask godoc
// @Summary Update Task
// @Description Overwrites title, description and priority of an owned task.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task id"
// @Param taskBody body tasks.TaskRequest true "New task fields"
// @Success 200 {object} tasks.Task
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - title missing"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - task owned by another user"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Security BearerAuth
// @Router /api/v1/tasks/{id} [put]
func (h *Handlers) HandleUpdateTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}
		taskID, ok := taskIDParam(w, r)
		if !ok {
			return
		}

		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		task, err := h.service.Update(r.Context(), taskID, userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, task)
	}
}

// HandleDeleteTask godoc
// @Summary Delete Task
// @Description Deletes an owned task. Deleting a nonexistent or foreign task fails.
// @Tags Tasks
// @Param id path int true "Task id"
// @Success 204 "Deleted"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - task owned by another user"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Security BearerAuth
// @Router /api/v1/tasks/{id} [delete]
func (h *Handlers) HandleDeleteTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}
		taskID, ok := taskIDParam(w, r)
		if !ok {
			return
		}

		if err := h.service.Delete(r.Context(), taskID, userID); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
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
