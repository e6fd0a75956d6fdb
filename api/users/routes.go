package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/departments"
	"github.com/tamilore/orgvoice/api/middlewares"
	"github.com/tamilore/orgvoice/api/tokens"
)

func SetupRoutes(r *chi.Mux, db *pgxpool.Pool) {

	usersRouter := chi.NewRouter()

	store := NewUserStore(db)
	departmentStore := departments.NewDepartmentStore(db)
	tokenService := tokens.NewTokenService()

	handler := Handler{
		Store:           store,
		DepartmentStore: departmentStore,
		Token:           tokenService,
	}

	usersRouter.Post("/login", handler.LoginHandler)

	usersRouter.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(tokenService))

		r.Get("/me", handler.GetMeHandler)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireElevated)
			r.Post("/", handler.CreateUserHandler)
			r.Get("/", handler.ListUsersHandler)
		})
	})

	r.Mount("/users", usersRouter)
}
