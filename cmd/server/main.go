package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/itjee/jwp-pms-v1/internal/auth"
	"github.com/itjee/jwp-pms-v1/internal/config"
	"github.com/itjee/jwp-pms-v1/internal/database"
	"github.com/itjee/jwp-pms-v1/internal/handlers"
	"github.com/itjee/jwp-pms-v1/internal/middleware"
	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/permissions"
	"github.com/itjee/jwp-pms-v1/internal/repository"
	"github.com/itjee/jwp-pms-v1/internal/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	router := setupRouter(cfg, logger)

	logger.Info("starting server", zap.String("addr", cfg.ServerAddr))
	if err := router.Run(cfg.ServerAddr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func setupRouter(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	db := database.GetDB()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	projectEval := permissions.NewProjectEvaluator(db)
	taskEval := permissions.NewTaskEvaluator(db, projectEval)
	calendarEval := permissions.NewCalendarEvaluator(db)

	authService := services.NewAuthService(userRepo, tokens, hasher, logger)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo, userRepo, projectEval)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, taskEval, projectEval)
	calendarService := services.NewCalendarService(calendarRepo, userRepo, calendarEval)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)

	authn := middleware.NewAuthenticator(authService)
	projectGate := middleware.NewProjectGate(db, projectEval)
	taskGate := middleware.NewTaskGate(db, taskEval)
	eventGate := middleware.NewEventGate(db, calendarEval)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authn.RequireAuth(), authHandler.GetCurrentUser)
		authGroup.PUT("/me", authn.RequireAuth(), authHandler.UpdateCurrentUser)
	}

	adminGroup := api.Group("/admin", authn.RequireAuth(), authn.RequireRole(models.UserRoleAdmin))
	{
		adminGroup.GET("/users", userHandler.ListUsers)
		adminGroup.GET("/users/:id", userHandler.GetUser)
		adminGroup.PUT("/users/:id/role", userHandler.ChangeRole)
		adminGroup.DELETE("/users/:id", userHandler.DeactivateUser)
	}

	projectGroup := api.Group("/projects")
	{
		projectGroup.POST("", authn.RequireAuth(), projectHandler.CreateProject)
		projectGroup.GET("", authn.OptionalAuth(), projectHandler.ListProjects)

		// Read allows anonymous access to public projects.
		projectGroup.GET("/:id", authn.OptionalAuth(), projectGate.RequireRead(), projectHandler.GetProject)
		projectGroup.GET("/:id/members", authn.OptionalAuth(), projectGate.RequireRead(), projectHandler.ListMembers)

		projectGroup.PUT("/:id", authn.RequireAuth(), projectGate.RequireManage(), projectHandler.UpdateProject)
		projectGroup.DELETE("/:id", authn.RequireAuth(), projectGate.RequireManage(), projectHandler.DeleteProject)
		projectGroup.POST("/:id/members", authn.RequireAuth(), projectGate.RequireManage(), projectHandler.AddMember)
		projectGroup.DELETE("/:id/members/:user_id", authn.RequireAuth(), projectGate.RequireManage(), projectHandler.RemoveMember)
	}

	taskGroup := api.Group("/tasks", authn.RequireAuth())
	{
		taskGroup.POST("", taskHandler.CreateTask)
		taskGroup.GET("", taskHandler.ListTasks)
		taskGroup.GET("/:id", taskGate.RequireAccess(), taskHandler.GetTask)
		taskGroup.PUT("/:id", taskGate.RequireAccess(), taskHandler.UpdateTask)
		taskGroup.DELETE("/:id", taskGate.RequireAccess(), taskHandler.DeleteTask)
		taskGroup.POST("/:id/assign", taskGate.RequireAccess(), taskHandler.AssignTask)
		taskGroup.DELETE("/:id/assign/:user_id", taskGate.RequireAccess(), taskHandler.UnassignTask)
	}

	calendarGroup := api.Group("/calendars")
	{
		calendarGroup.POST("", authn.RequireAuth(), calendarHandler.CreateCalendar)
		calendarGroup.GET("", authn.OptionalAuth(), calendarHandler.ListCalendars)
		calendarGroup.PUT("/:id", authn.RequireAuth(), calendarHandler.UpdateCalendar)
		calendarGroup.DELETE("/:id", authn.RequireAuth(), calendarHandler.DeleteCalendar)
	}

	eventGroup := api.Group("/events")
	{
		eventGroup.POST("", authn.RequireAuth(), calendarHandler.CreateEvent)
		eventGroup.GET("", authn.OptionalAuth(), calendarHandler.ListEvents)

		// Events on public calendars are readable without a token.
		eventGroup.GET("/:id", authn.OptionalAuth(), eventGate.RequireRead(), calendarHandler.GetEvent)

		eventGroup.PUT("/:id", authn.RequireAuth(), eventGate.RequireModify(), calendarHandler.UpdateEvent)
		eventGroup.DELETE("/:id", authn.RequireAuth(), eventGate.RequireModify(), calendarHandler.DeleteEvent)
		eventGroup.POST("/:id/attendees", authn.RequireAuth(), eventGate.RequireModify(), calendarHandler.AddAttendee)
		eventGroup.DELETE("/:id/attendees/:user_id", authn.RequireAuth(), eventGate.RequireModify(), calendarHandler.RemoveAttendee)
		eventGroup.POST("/:id/respond", authn.RequireAuth(), eventGate.RequireRead(), calendarHandler.RespondToEvent)
	}

	return router
}
