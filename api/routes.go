package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/departments"
	"github.com/tamilore/orgvoice/api/jsonutil"
	"github.com/tamilore/orgvoice/api/responses"
	"github.com/tamilore/orgvoice/api/surveys"
	"github.com/tamilore/orgvoice/api/users"
	"github.com/tamilore/orgvoice/queue"
)

func Routes(q queue.Queue, pool *pgxpool.Pool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/check", func(w http.ResponseWriter, r *http.Request) {

		jsonutil.WriteJSONResponse(w, "hello from orgvoice", http.StatusOK)
	})

	users.SetupRoutes(r, pool)
	departments.SetupRoutes(r, pool)
	surveys.SetupRoutes(r, pool)
	responses.SetupRoutes(r, q, pool)

	return r
}
