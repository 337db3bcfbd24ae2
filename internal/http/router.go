package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shopkeeperpro/shopkeeper/internal/auth"
	"github.com/shopkeeperpro/shopkeeper/internal/http/expense"
	"github.com/shopkeeperpro/shopkeeper/internal/http/item"
	"github.com/shopkeeperpro/shopkeeper/internal/http/report"
	"github.com/shopkeeperpro/shopkeeper/internal/http/sale"
	"github.com/shopkeeperpro/shopkeeper/internal/http/session"
	"github.com/shopkeeperpro/shopkeeper/internal/http/syncapi"
	"github.com/shopkeeperpro/shopkeeper/internal/user"
)

func New(
	tokens *auth.TokenManager,
	sessionV1 *session.Handler,
	itemsV1 *item.Handler,
	salesV1 *sale.Handler,
	expensesV1 *expense.Handler,
	reportsV1 *report.Handler,
	syncV1 *syncapi.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			sessionV1.LoginRoute(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens))

			r.Route("/items", func(r chi.Router) {
				itemsV1.Routes(r)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				salesV1.Routes(r)
			})

			r.Route("/expenses", func(r chi.Router) {
				expensesV1.Routes(r)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(user.RoleAdmin))
					expensesV1.DeleteAllRoute(r)
				})
			})

			r.Route("/reports", reportsV1.Routes)

			r.Route("/sync", func(r chi.Router) {
				syncV1.Routes(r)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(auth.RequireRole(user.RoleAdmin))
				sessionV1.Routes(r)
			})
		})
	})

	return router
}
