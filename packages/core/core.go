package core

import (
	"log/slog"

	authMiddleware "pelada-api/packages/auth/middleware"
	"pelada-api/packages/core/cron"
	"pelada-api/packages/core/handlers"
	"pelada-api/packages/core/services"
	"pelada-api/packages/core/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Options struct {
	// Uploader stores player avatars. Nil disables uploads.
	Uploader          storage.FileUploader
	MatchClockEnabled bool
}

type Module struct {
	PlayerHandler        *handlers.PlayerHandler
	PlayerService        *services.PlayerService
	MatchHandler         *handlers.MatchHandler
	MatchService         *services.MatchService
	RatingHistoryHandler *handlers.RatingHistoryHandler
	RatingHistoryService *services.RatingHistoryService
	StatsHandler         *handlers.StatsHandler
	StatsService         *services.StatsService
	MatchClockService    *services.MatchClockService
	Scheduler            *cron.Scheduler
}

func NewModule(db *gorm.DB, opts Options) *Module {
	playerService := services.NewPlayerService(db)
	matchService := services.NewMatchService(db)
	ratingHistoryService := services.NewRatingHistoryService(db)
	statsService := services.NewStatsService(db)
	clockService := services.NewMatchClockService(db, matchService)

	return &Module{
		PlayerHandler:        handlers.NewPlayerHandler(playerService, ratingHistoryService, opts.Uploader),
		PlayerService:        playerService,
		MatchHandler:         handlers.NewMatchHandler(matchService, playerService),
		MatchService:         matchService,
		RatingHistoryHandler: handlers.NewRatingHistoryHandler(ratingHistoryService),
		RatingHistoryService: ratingHistoryService,
		StatsHandler:         handlers.NewStatsHandler(statsService),
		StatsService:         statsService,
		MatchClockService:    clockService,
		Scheduler:            cron.NewScheduler(clockService, db, opts.MatchClockEnabled),
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	players := r.Group("/players")
	{
		players.GET("", m.PlayerHandler.GetAllPlayers)
		players.GET("/top", authMiddleware.OptionalJWTMiddleware(), m.PlayerHandler.GetTopPlayers)
		players.GET("/me", authMiddleware.JWTMiddleware(), m.PlayerHandler.GetMe)
		players.POST("/me/avatar", authMiddleware.JWTMiddleware(), m.PlayerHandler.UploadAvatar)
		players.GET("/:id", m.PlayerHandler.GetPlayer)
		players.PUT("/:id", authMiddleware.JWTMiddleware(), m.PlayerHandler.UpdatePlayer)
		players.GET("/:id/matches", m.PlayerHandler.GetPlayerMatches)
		players.GET("/:id/rating-history", m.PlayerHandler.GetRatingHistory)
	}

	matches := r.Group("/matches")
	matches.Use(authMiddleware.JWTMiddleware())
	{
		matches.GET("", m.MatchHandler.GetMatches)
		matches.POST("", m.MatchHandler.CreateMatch)
		matches.POST("/join", m.MatchHandler.JoinMatch)
		matches.GET("/code/:code", m.MatchHandler.GetMatchByCode)
		matches.GET("/:id", m.MatchHandler.GetMatch)
		matches.PUT("/:id", m.MatchHandler.UpdateMatch)
		matches.DELETE("/:id", m.MatchHandler.DeleteMatch)
		matches.PATCH("/:id/cancel", m.MatchHandler.CancelMatch)
		matches.GET("/:id/can-join", m.MatchHandler.CanJoin)
		matches.POST("/:id/leave", m.MatchHandler.LeaveMatch)
		matches.POST("/:id/shuffle-teams", m.MatchHandler.ShuffleTeams)
		matches.POST("/:id/start", m.MatchHandler.StartMatch)
		matches.POST("/:id/toggle-pause", m.MatchHandler.TogglePause)
		matches.POST("/:id/finish", m.MatchHandler.FinishMatch)
		matches.GET("/:id/events", m.MatchHandler.GetMatchEvents)
		matches.POST("/:id/events", m.MatchHandler.AddEvent)
	}

	r.GET("/rating-history/recent", m.RatingHistoryHandler.GetRecentRatingChanges)
	r.GET("/stats", m.StatsHandler.GetStats)
}

func (m *Module) StartScheduler() error {
	slog.Info("starting core module scheduler")
	return m.Scheduler.Start()
}

func (m *Module) StopScheduler() {
	slog.Info("stopping core module scheduler")
	m.Scheduler.Stop()
}
