package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"taskboard-service/middleware"
	"taskboard-service/services"
)

type CommentHandler struct {
	Service *services.CommentService
}

func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{Service: service}
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateCommentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	comment, err := h.Service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	comment, err := h.Service.Update(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"], body.Content)
	if err != nil {
		writeError(w, r, err, "Comment not found")
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err, "Comment not found")
		return
	}
	writeMessage(w, http.StatusOK, "Comment deleted")
}
