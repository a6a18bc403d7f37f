package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"thesis-manager/internal/config"
	"thesis-manager/internal/handler"
	"thesis-manager/internal/middleware"
	"thesis-manager/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	passwordHandler *handler.PasswordHandler,
	accountHandler *handler.AccountHandler,
	healthHandler *handler.HealthHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler.Health)

	// guard authenticates the caller and then checks the route's allowed roles.
	// An empty role list admits any authenticated principal.
	guard := func(rt chi.Router, roles ...model.Role) chi.Router {
		return rt.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(roles...))
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/admin/login", authHandler.AdminLogin)
			auth.Post("/admin/refresh", authHandler.AdminRefresh)
			guard(auth, model.RoleAdmin).Post("/admin/logout", authHandler.AdminLogout)

			auth.Post("/user/login", authHandler.UserLogin)
			auth.Post("/user/refresh", authHandler.UserRefresh)
			guard(auth, model.UserRoles...).Post("/user/logout", authHandler.UserLogout)

			auth.Post("/password-reset/request", passwordHandler.RequestReset)
			auth.Post("/password-reset/verify", passwordHandler.VerifyReset)
			guard(auth).Put("/change-password", passwordHandler.ChangePassword)
			guard(auth).Get("/me", authHandler.Me)
		})

		api.Route("/admin/users", func(users chi.Router) {
			admin := guard(users, model.RoleAdmin)
			admin.Post("/", accountHandler.CreateUser)
			admin.Get("/", accountHandler.ListUsers)
			admin.Patch("/{id}/active", accountHandler.SetActive)
		})
	})

	return r
}
