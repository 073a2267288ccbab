package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"taskboard-service/middleware"
)

type Router struct {
	Auth       *AuthHandler
	Projects   *ProjectHandler
	Tasks      *TaskHandler
	Comments   *CommentHandler
	Health     *HealthHandler
	Validator  middleware.TokenValidator
	CORSOrigin string
}

// NewRouter registers every route. Stats routes precede /{id} so that
// "stats" is never taken for an id.
func NewRouter(rt Router) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", rt.Health.Health).Methods(http.MethodGet)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", rt.Auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", rt.Auth.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware(rt.Validator))

	for _, prefix := range []string{"/projets", "/projects"} {
		api.HandleFunc(prefix, rt.Projects.List).Methods(http.MethodGet)
		api.HandleFunc(prefix, rt.Projects.Create).Methods(http.MethodPost)
		api.HandleFunc(prefix+"/stats", rt.Projects.Stats).Methods(http.MethodGet)
		api.HandleFunc(prefix+"/{id}", rt.Projects.Get).Methods(http.MethodGet)
		api.HandleFunc(prefix+"/{id}", rt.Projects.Update).Methods(http.MethodPut)
		api.HandleFunc(prefix+"/{id}", rt.Projects.Delete).Methods(http.MethodDelete)
	}

	api.HandleFunc("/tasks", rt.Tasks.List).Methods(http.MethodGet)
	api.HandleFunc("/tasks", rt.Tasks.Create).Methods(http.MethodPost)
	api.HandleFunc("/tasks/stats", rt.Tasks.Stats).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", rt.Tasks.Get).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", rt.Tasks.Update).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", rt.Tasks.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/comments", rt.Tasks.ListComments).Methods(http.MethodGet)

	api.HandleFunc("/comments", rt.Comments.Create).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id}", rt.Comments.Update).Methods(http.MethodPut)
	api.HandleFunc("/comments/{id}", rt.Comments.Delete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	origin := rt.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return middleware.CORS(origin)(middleware.RequestLogger(middleware.Recoverer(r)))
}
