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

const projectNotFound = "Project not found"

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

type deletedProject struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	DeletedAt *time.Time `json:"deletedAt"`
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := services.ParseProjectFilter(q.Get("status"), q.Get("priority"), q.Get("search"), q.Get("sort"))
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}

	projects, err := h.Service.List(r.Context(), middleware.UserIDFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projets": projects, "total": len(projects)})
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}

	project, err := h.Service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.Get(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ProjectPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	project, err := h.Service.Update(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Project %q marked as deleted", project.Name),
		"projet":  deletedProject{ID: project.ID, Name: project.Name, DeletedAt: project.DeletedAt},
	})
}

func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
