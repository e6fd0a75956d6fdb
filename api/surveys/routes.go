package surveys

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/middlewares"
	"github.com/tamilore/orgvoice/api/tokens"
)

func SetupRoutes(r *chi.Mux, db *pgxpool.Pool) {

	surveysRouter := chi.NewRouter()

	store := NewSurveyStore(db)
	tokenService := tokens.NewTokenService()

	handler := Handler{
		Store: store,
	}

	// Survey administration is restricted to hr/admin. Regular users reach
	// surveys through the /me routes, which apply eligibility.
	surveysRouter.Use(middlewares.AuthMiddleware(tokenService))
	surveysRouter.Use(middlewares.RequireElevated)

	surveysRouter.Post("/", handler.CreateSurveyHandler)
	surveysRouter.Get("/", handler.ListSurveysHandler)
	surveysRouter.Get("/{surveyID}", handler.GetSurveyHandler)
	surveysRouter.Patch("/{surveyID}", handler.UpdateSurveyHandler)
	surveysRouter.Delete("/{surveyID}", handler.DeleteSurveyHandler)
	surveysRouter.Get("/{surveyID}/stats", handler.GetSurveyStatsHandler)

	r.Mount("/surveys", surveysRouter)
}
