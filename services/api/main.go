package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/config"
	"github.com/dugouthq/dugout/shared/middleware"
	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	cfg := config.LoadAppConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize Redis for session and permission caching
	if err := utils.InitRedis(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	auth := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTExpiration)
	csrf := middleware.NewCSRFGuard(cfg.CSRFSecret, cfg.CSRFTokenTTL, cfg.CookieSecure)
	gate := middleware.NewPermissionGate(db)

	audit := NewAuditProducer(cfg.KafkaBroker, cfg.AuditTopic)
	defer func() {
		if err := audit.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close audit producer")
		}
	}()

	// Logo storage is optional: without a bucket the upload endpoint answers 503.
	logos, err := utils.NewLogoUploader(cfg.S3Region, cfg.S3LogoBucket, cfg.LogoURLPrefix)
	if err != nil {
		logrus.WithError(err).Warn("logo storage unavailable, uploads disabled")
		logos = nil
	}

	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "API service is healthy", nil)
	})

	// Authentication routes. Login and register are necessarily open; logout
	// and me need a live session. None of them sit behind the CSRF guard since
	// no cookie session exists before login.
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handleRegister(db, auth, cfg.BcryptCost, cfg.CookieSecure))
		authGroup.POST("/login", handleLogin(db, auth, cfg.CookieSecure))
		authGroup.POST("/logout", auth.RequireAuth(), handleLogout())
		authGroup.GET("/me", auth.RequireAuth(), handleMe(db, gate))
	}

	router.GET("/csrf-token", auth.RequireAuth(), handleCSRFToken(csrf))

	// Everything below requires a live session and, on mutating methods, a
	// matching CSRF token pair.
	api := router.Group("/")
	api.Use(auth.RequireAuth(), csrf.Guard())

	registerTeamRoutes(api, db, gate, logos, audit)
	registerPlayerRoutes(api, db, gate, audit)
	registerProspectRoutes(api, db, gate, audit)
	registerDepthChartRoutes(api, db, gate, audit)
	registerScheduleRoutes(api, db, gate, audit)
	registerGameRoutes(api, db, gate, audit)
	registerScoutRoutes(api, db, gate, audit)

	logrus.Infof("API service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start API service:", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Team{},
		&models.User{},
		&models.PermissionGrant{},
		&models.Player{},
		&models.Prospect{},
		&models.DepthChart{},
		&models.DepthChartPosition{},
		&models.PlayerAssignment{},
		&models.ScheduleTemplate{},
		&models.ScheduleEvent{},
		&models.Game{},
		&models.Scout{},
		&models.ScoutingReport{},
	)
}

func registerTeamRoutes(api *gin.RouterGroup, db *gorm.DB, gate *middleware.PermissionGate, logos *utils.LogoUploader, audit *AuditProducer) {
	teams := api.Group("/teams")
	{
		teams.GET("/directory", handleTeamDirectory(db))
		teams.GET("/me", handleGetMyTeam(db))
		teams.PUT("/me", gate.Require(models.PermTeamEdit), handleUpdateMyTeam(db, audit))
		teams.PUT("/logo", gate.Require(models.PermTeamEdit), handleUploadLogo(db, logos, audit))
		teams.GET("/me/users", handleListTeamUsers(db))
	}

	users := api.Group("/users")
	{
		users.GET("/:id/permissions", gate.Require(models.PermManagePermissions), handleGetUserPermissions(db))
		users.PUT("/:id/permissions", gate.Require(models.PermManagePermissions), handleUpdateUserPermissions(db, audit))
	}
}

func registerPlayerRoutes(api *gin.RouterGroup, db *gorm.DB, gate *middleware.PermissionGate, audit *AuditProducer) {
	players := api.Group("/players")
	{
		players.POST("", gate.Require(models.PermPlayerCreate), handleCreatePlayer(db, audit))
		players.GET("", gate.Require(models.PermPlayerView), handleListPlayers(db))
		players.GET("/:id", gate.Require(models.PermPlayerView), handleGetPlayer(db))
		players.GET("/:id/history", gate.Require(models.PermPlayerView), handleGetPlayerHistory(db))
		players.PUT("/:id", gate.Require(models.PermPlayerEdit), handleUpdatePlayer(db, audit))
		players.DELETE("/:id", gate.Require(models.PermPlayerDelete), handleDeletePlayer(db, audit))
	}
}

func registerProspectRoutes(api *gin.RouterGroup, db *gorm.DB, gate *middleware.PermissionGate, audit *AuditProducer) {
	prospects := api.Group("/prospects")
	{
		prospects.POST("", gate.Require(models.PermProspectCreate), handleCreateProspect(db, audit))
		prospects.GET("", gate.Require(models.PermProspectView), handleListProspects(db))
		prospects.GET("/:id", gate.Require(models.PermProspectView), handleGetProspect(db))
		prospects.GET("/:id/history", gate.Require(models.PermProspectView), handleGetProspectHistory(db))
		prospects.PUT("/:id", gate.Require(models.PermProspectEdit), handleUpdateProspect(db, audit))
		prospects.DELETE("/:id", gate.Require(models.PermProspectDelete), handleDeleteProspect(db, audit))
	}
}

func registerDepthChartRoutes(api *gin.RouterGroup, db *gorm.DB, gate *middleware.PermissionGate, audit *AuditProducer) {
	charts := api.Group("/depth-charts")
	{
		charts.POST("", gate.Require(models.PermDepthChartCreate), handleCreateDepthChart(db, audit))
		charts.GET("", gate.Require(models.PermDepthChartView), handleListDepthCharts(db))
		charts.GET("/:id", gate.Require(models.PermDepthChartView), handleGetDepthChart(db))
		charts.GET("/:id/history", gate.Require(models.PermDepthChartView), handleGetDepthChartHistory(db))
		charts.PUT("/:id", gate.Require(models.PermDepthChartEdit), handleUpdateDepthChart(db, audit))
		charts.DELETE("/:id", gate.Require(models.PermDepthChartDelete), handleDeleteDepthChart(db, audit))
		charts.POST("/:id/duplicate", gate.Require(models.PermDepthChartCreate), handleDuplicateDepthChart(db, audit))

		charts.POST("/:id/positions", gate.Require(models.PermDepthChartManagePositions), handleCreatePosition(db, audit))
	}

	positions := api.Group("/positions")
	positions.Use(gate.Require(models.PermDepthChartManagePositions))
	{
		positions.PUT("/:positionId", handleUpdatePosition(db, audit))
		positions.DELETE("/:positionId", handleDeletePosition(db, audit))
		positions.POST("/:positionId/players", handleAssignPlayer(db, audit))
		positions.DELETE("/:positionId/players/:playerId", handleUnassignPlayer(db, audit))
	}
}

func registerScheduleRoutes(api *gin.RouterGroup, db *gorm.DB, gate *middleware.PermissionGate, audit *AuditProducer) {
	templates := api.Group("/schedule-templates")
	{
		templates.POST("", gate.Require(models.PermScheduleCreate), handleCreateScheduleTemplate(db, audit))
		templates.GET("", gate.Require(models.PermScheduleView), handleListScheduleTemplates(db))
		templates.GET("/:id", gate.Require(models.PermScheduleView), handleGetScheduleTemplate(db))
		templates.GET("/:id/history", gate.Require(models.PermScheduleView), handleGetScheduleTemplateHistory(db))
		templates.PUT("/:id", gate.Require(models.PermScheduleEdit), handleUpdateScheduleTemplate(db, audit))
		templates.DELETE("/:id", gate.Require(models.PermScheduleDelete), handleDeleteScheduleTemplate(db, audit))
		templates.POST("/:id/duplicate", gate.Require(models.PermScheduleCreate), handleDuplicateScheduleTemplate(db, audit))
		templates.POST("/:id/generate-event", gate.Require(models.PermScheduleCreate), handleGenerateEvent(db, audit))
	}

	events := api.Group("/schedule-events")
	{
		events.POST("", gate.Require(models.PermScheduleCreate), handleCreateScheduleEvent(db, audit))
		events.GET("", gate.Require(models.PermScheduleView), handleListScheduleEvents(db))
		events.GET("/:id", gate.Require(models.PermScheduleView), handleGetScheduleEvent(db))
		events.GET("/:id/history", gate.Require(models.PermScheduleView), handleGetScheduleEventHistory(db))
		events.PUT("/:id", gate.Require(models.PermScheduleEdit), handleUpdateScheduleEvent(db, audit))
		events.DELETE("/:id", gate.Require(models.PermScheduleDelete), handleDeleteScheduleEvent(db, audit))
	}
}

func registerGameRoutes(api *gin.RouterGroup, db *gorm.DB, gate *middleware.PermissionGate, audit *AuditProducer) {
	games := api.Group("/games")
	{
		games.POST("", gate.Require(models.PermGameCreate), handleCreateGame(db, audit))
		games.GET("", gate.Require(models.PermGameView), handleListGames(db))
		games.GET("/:id", gate.Require(models.PermGameView), handleGetGame(db))
		games.PUT("/:id", gate.Require(models.PermGameEdit), handleUpdateGame(db, audit))
		games.DELETE("/:id", gate.Require(models.PermGameDelete), handleDeleteGame(db, audit))
	}
}

func registerScoutRoutes(api *gin.RouterGroup, db *gorm.DB, gate *middleware.PermissionGate, audit *AuditProducer) {
	scouts := api.Group("/scouts")
	{
		scouts.POST("", gate.Require(models.PermScoutCreate), handleCreateScout(db, audit))
		scouts.GET("", gate.Require(models.PermScoutView), handleListScouts(db))
		scouts.GET("/:id", gate.Require(models.PermScoutView), handleGetScout(db))
		scouts.PUT("/:id", gate.Require(models.PermScoutEdit), handleUpdateScout(db, audit))
		scouts.DELETE("/:id", gate.Require(models.PermScoutDelete), handleDeleteScout(db, audit))
	}

	reports := api.Group("/scouting-reports")
	{
		reports.POST("", gate.Require(models.PermReportCreate), handleCreateReport(db, audit))
		reports.GET("", gate.Require(models.PermReportView), handleListReports(db))
		reports.GET("/:id", gate.Require(models.PermReportView), handleGetReport(db))
		reports.GET("/:id/history", gate.Require(models.PermReportView), handleGetReportHistory(db))
		reports.PUT("/:id", gate.Require(models.PermReportEdit), handleUpdateReport(db, audit))
		reports.DELETE("/:id", gate.Require(models.PermReportDelete), handleDeleteReport(db, audit))
	}
}
