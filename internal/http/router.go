package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notedeck/internal/auth"
	"notedeck/internal/handlers"
	"notedeck/internal/service"
	"notedeck/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB            *sql.DB
	AuthService   *auth.Service
	UserService   *service.UserService
	FolderService *service.FolderService
	NoteService   *service.NoteService
	ChatService   service.ChatService
	VectorStore   vectorstore.VectorStore
	Collection    string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)

	// Add CORS middleware
	r.Use(CORS)

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	userHandler := handlers.NewUserHandler(deps.UserService)
	folderHandler := handlers.NewFolderHandler(deps.FolderService)
	noteHandler := handlers.NewNoteHandler(deps.NoteService)
	previewHandler := handlers.NewPreviewHandler(deps.NoteService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(deps.AuthService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/me", userHandler.Me)

			r.Route("/folders", func(r chi.Router) {
				r.Post("/", folderHandler.Create)
				r.Get("/", folderHandler.List)
				r.Patch("/{folderID}", folderHandler.Update)
				r.Delete("/{folderID}", folderHandler.Delete)
				r.Post("/{folderID}/move", folderHandler.Move)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Post("/", noteHandler.Create)
				r.Get("/", noteHandler.List)
				r.Get("/{noteID}", noteHandler.Get)
				r.Patch("/{noteID}", noteHandler.Update)
				r.Delete("/{noteID}", noteHandler.SoftDelete)
				r.Delete("/{noteID}/permanent", noteHandler.DeletePermanently)
				r.Post("/{noteID}/restore", noteHandler.Restore)
				r.Post("/{noteID}/archive", noteHandler.Archive)
				r.Post("/{noteID}/unarchive", noteHandler.Unarchive)
				r.Post("/{noteID}/move", noteHandler.Move)
				r.Method(http.MethodGet, "/{noteID}/preview", previewHandler)
			})

			r.Method(http.MethodPost, "/chat", chatHandler)
		})
	})

	return r
}
