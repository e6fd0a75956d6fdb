package responses

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/middlewares"
	"github.com/tamilore/orgvoice/api/surveys"
	"github.com/tamilore/orgvoice/api/tokens"
	"github.com/tamilore/orgvoice/api/users"
	"github.com/tamilore/orgvoice/queue"
)

func SetupRoutes(r *chi.Mux, q queue.Queue, db *pgxpool.Pool) {

	store := NewResponseStore(db)
	surveyStore := surveys.NewSurveyStore(db)
	userStore := users.NewUserStore(db)
	tokenService := tokens.NewTokenService()

	handler := Handler{
		Service: NewService(surveyStore, userStore, store, q),
		Store:   store,
	}

	// Per-user survey feed and submission
	meRouter := chi.NewRouter()
	meRouter.Use(middlewares.AuthMiddleware(tokenService))
	meRouter.Get("/surveys", handler.ListEligibleSurveysHandler)
	meRouter.Get("/surveys/{surveyID}", handler.GetSurveyForUserHandler)
	meRouter.Post("/surveys/{surveyID}/responses", handler.SubmitResponseHandler)

	// Response review for hr/admin
	reviewRouter := chi.NewRouter()
	reviewRouter.Use(middlewares.AuthMiddleware(tokenService))
	reviewRouter.Use(middlewares.RequireElevated)
	reviewRouter.Get("/surveys/{surveyID}", handler.ListSurveyResponsesHandler)
	reviewRouter.Get("/{responseID}/answers", handler.GetResponseAnswersHandler)

	r.Mount("/me", meRouter)
	r.Mount("/responses", reviewRouter)
}
