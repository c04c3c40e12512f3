package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/7893/PaddlePal/handlers"
	"github.com/7893/PaddlePal/middleware"
)

// SetupRoutes wires the public polled reads and the JWT-guarded admin
// subtree onto the router.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	eventHandler *handlers.EventHandler,
	rosterHandler *handlers.RosterHandler,
	drawHandler *handlers.DrawHandler,
	matchHandler *handlers.MatchHandler,
	tableHandler *handlers.TableHandler,
	ratingHandler *handlers.RatingHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public reads, polled by the display pages.
	router.Get("/tournament", tournamentHandler.InfoHandler)
	router.Get("/overview", tournamentHandler.OverviewHandler)
	router.Get("/notices", tournamentHandler.ListNoticesHandler)

	router.Get("/events", eventHandler.ListHandler)
	router.Route("/events/{eventKey}", func(r chi.Router) {
		r.Get("/", eventHandler.GetByKeyHandler)
		r.Get("/groups", eventHandler.GroupsHandler)
		r.Get("/matches", matchHandler.ListByEventHandler)
		r.Get("/crosstable", tableHandler.CrossTableHandler)
		r.Get("/standings", tableHandler.StandingsHandler)
		r.Get("/bracket", tableHandler.BracketHandler)
		r.Get("/draw", drawHandler.StatusHandler)
	})

	router.Get("/matches/playing", matchHandler.PlayingHandler)
	router.Get("/matches/queue", matchHandler.QueueHandler)
	router.Get("/matches/{ticket}", matchHandler.GetByTicketHandler)

	router.Get("/players", rosterHandler.ListPlayersHandler)
	router.Get("/players/{playerID}", rosterHandler.GetPlayerHandler)
	router.Get("/players/{playerID}/ratings", ratingHandler.HistoryHandler)
	router.Get("/teams", rosterHandler.ListTeamsHandler)
	router.Get("/teams/{teamID}", rosterHandler.TeamMembersHandler)
	router.Get("/leaderboard", ratingHandler.LeaderboardHandler)

	// Admin subtree: login is open, everything else requires a token.
	router.Route("/admin", func(r chi.Router) {
		r.Post("/login", authHandler.LoginHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(jwtSecret))
			registerAdminRoutes(r, tournamentHandler, eventHandler, rosterHandler,
				drawHandler, matchHandler, ratingHandler)
		})
	})
}

func registerAdminRoutes(
	r chi.Router,
	tournamentHandler *handlers.TournamentHandler,
	eventHandler *handlers.EventHandler,
	rosterHandler *handlers.RosterHandler,
	drawHandler *handlers.DrawHandler,
	matchHandler *handlers.MatchHandler,
	ratingHandler *handlers.RatingHandler,
) {
	r.Put("/tournament", tournamentHandler.UpdateHandler)
	r.Get("/backup", tournamentHandler.BackupHandler)

	r.Post("/notices", tournamentHandler.CreateNoticeHandler)
	r.Put("/notices/{noticeID}", tournamentHandler.UpdateNoticeHandler)
	r.Delete("/notices/{noticeID}", tournamentHandler.DeleteNoticeHandler)

	r.Post("/events", eventHandler.CreateHandler)
	r.Put("/events/{eventID}", eventHandler.UpdateHandler)
	r.Delete("/events/{eventID}", eventHandler.DeleteHandler)
	r.Post("/events/{eventID}/entries", eventHandler.AssignEntryHandler)
	r.Delete("/events/{eventID}/entries", eventHandler.RemoveEntryHandler)
	r.Delete("/events/{eventID}/entries/all", eventHandler.ClearEntriesHandler)
	r.Post("/events/{eventID}/entries/auto", eventHandler.AutoAssignEntriesHandler)
	r.Put("/events/{eventID}/entries/rank", eventHandler.SetEntryRankHandler)

	r.Post("/events/{eventKey}/draw/start", drawHandler.StartHandler)
	r.Post("/events/{eventKey}/draw/next", drawHandler.NextHandler)
	r.Post("/events/{eventKey}/draw/auto", drawHandler.AutoHandler)
	r.Post("/events/{eventKey}/draw/reset", drawHandler.ResetHandler)
	r.Post("/events/{eventKey}/matches/generate", drawHandler.GenerateMatchesHandler)
	r.Post("/events/{eventKey}/ratings", ratingHandler.BatchComputeHandler)

	r.Post("/matches/{matchID}/score", matchHandler.SubmitScoreHandler)
	r.Post("/matches/{matchID}/walkover", matchHandler.WalkoverHandler)
	r.Put("/matches/{matchID}/status", matchHandler.SetStatusHandler)
	r.Put("/matches/{matchID}/schedule", matchHandler.ScheduleHandler)
	r.Post("/matches/{matchID}/rubbers", matchHandler.EnsureRubbersHandler)
	r.Put("/matches/{matchID}/rubbers/{rubberID}", matchHandler.SetRubberPlayersHandler)
	r.Post("/matches/{matchID}/finish", matchHandler.FinishTeamMatchHandler)
	r.Post("/matches/{matchID}/rating", ratingHandler.ComputeHandler)

	r.Post("/players", rosterHandler.CreatePlayerHandler)
	r.Put("/players/{playerID}", rosterHandler.UpdatePlayerHandler)
	r.Delete("/players/{playerID}", rosterHandler.DeletePlayerHandler)
	r.Post("/teams", rosterHandler.CreateTeamHandler)
	r.Put("/teams/{teamID}", rosterHandler.UpdateTeamHandler)
	r.Delete("/teams/{teamID}", rosterHandler.DeleteTeamHandler)
	r.Post("/teams/{teamID}/flag", rosterHandler.UploadFlagHandler)
}
