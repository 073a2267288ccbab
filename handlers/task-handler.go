package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"taskboard-service/middleware"
	"taskboard-service/models"
	"taskboard-service/services"
)

const taskNotFound = "Task not found"

type TaskHandler struct {
	Service  *services.TaskService
	Comments *services.CommentService
}

func NewTaskHandler(service *services.TaskService, comments *services.CommentService) *TaskHandler {
	return &TaskHandler{Service: service, Comments: comments}
}

type deletedTask struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	DeletedAt *time.Time `json:"deletedAt"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := services.ParseTaskFilter(q.Get("status"), q.Get("priority"), q.Get("search"), q.Get("sort"))
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}

	tasks, err := h.Service.List(r.Context(), middleware.UserIDFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "total": len(tasks)})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateTaskInput
	if !decodeJSON(w, r, &in) {
		return
	}

	task, err := h.Service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.Service.Get(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	task, err := h.Service.Update(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, err := h.Service.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Task %q marked as deleted", task.Title),
		"task":    deletedTask{ID: task.ID, Title: task.Title, DeletedAt: task.DeletedAt},
	})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListComments serves GET /api/tasks/{id}/comments.
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Comments.ListForTask(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments, "total": len(comments)})
}
