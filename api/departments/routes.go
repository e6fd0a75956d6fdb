package departments

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/middlewares"
	"github.com/tamilore/orgvoice/api/tokens"
)

func SetupRoutes(r *chi.Mux, db *pgxpool.Pool) {

	departmentsRouter := chi.NewRouter()

	store := NewDepartmentStore(db)
	tokenService := tokens.NewTokenService()

	handler := Handler{
		Store: store,
	}

	departmentsRouter.Use(middlewares.AuthMiddleware(tokenService))

	departmentsRouter.Get("/", handler.ListDepartmentsHandler)
	departmentsRouter.Get("/{departmentID}", handler.GetDepartmentHandler)

	departmentsRouter.Group(func(r chi.Router) {
		r.Use(middlewares.RequireElevated)
		r.Post("/", handler.CreateDepartmentHandler)
		r.Delete("/{departmentID}", handler.DeleteDepartmentHandler)
	})

	r.Mount("/departments", departmentsRouter)
}
