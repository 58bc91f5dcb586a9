package handlers

import (
	"net/http"

	"swatch-backend/internal/middleware"
	"swatch-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterOptions carries everything the HTTP surface is built from
type RouterOptions struct {
	Accounts       *AccountHandler
	Swatches       *SwatchHandler
	Feed           *FeedHandler
	Root           *RootHandler
	Tokens         *services.TokenService
	RefreshHeader  string
	RequireToken   bool
	RequestLogging bool
}

// NewRouter wires middleware and routes
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if opts.RequestLogging {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(opts.RefreshHeader))
	r.Use(middleware.SlidingSession(opts.Tokens, opts.RefreshHeader, middleware.DefaultExemptPaths))

	// Public routes
	r.Get("/", opts.Root.Root)
	r.Get("/healthz", opts.Root.Health)
	r.Post("/register", opts.Accounts.Register)
	r.Post("/login", opts.Accounts.Login)

	// Swatch routes only check the bearer token when configured to
	r.Group(func(r chi.Router) {
		if opts.RequireToken {
			r.Use(middleware.RequireSubject)
		}
		r.Get("/total-swach-count", opts.Swatches.Count)
		r.Get("/list-all", opts.Swatches.ListAll)
		r.Post("/upload-swatch", opts.Swatches.Upload)
	})

	r.Get("/ws", opts.Feed.HandleWebSocket)

	return r
}
