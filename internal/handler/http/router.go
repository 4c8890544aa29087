package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umasankari220/BookReview/internal/auth"
	"github.com/umasankari220/BookReview/internal/service"
	"github.com/umasankari220/BookReview/pkg/health"
	"github.com/umasankari220/BookReview/pkg/middleware"
)

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	authService *service.AuthService,
	bookService *service.BookService,
	reviewService *service.ReviewService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("bookreview"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:  claims.UserID,
			Email:   claims.Email,
			IsAdmin: claims.IsAdmin,
		}, nil
	}

	authHandler := NewAuthHandler(authService, logger)
	bookHandler := NewBookHandler(bookService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)

	// Auth endpoints
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Get("/profile", authHandler.GetProfile)
		})
	})

	// Catalog endpoints: reads are public, mutations are admin-only.
	r.Route("/api/books", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", bookHandler.List)
		r.Get("/{id}", bookHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireAdmin())

			r.Post("/", bookHandler.Create)
			r.Put("/{id}", bookHandler.Update)
			r.Delete("/{id}", bookHandler.Delete)
		})
	})

	// Review endpoints: listing a book's reviews is public, everything
	// else requires auth.
	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/book/{bookID}", reviewHandler.ListByBook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/book/{bookID}", reviewHandler.Create)
			r.Get("/user", reviewHandler.ListMine)
			r.Put("/{id}", reviewHandler.Update)
			r.Delete("/{id}", reviewHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Get("/admin/all", reviewHandler.ListAll)
			})
		})
	})

	return r
}
