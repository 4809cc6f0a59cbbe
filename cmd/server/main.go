package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/talentogt/hr-api/internal/config"
	"github.com/talentogt/hr-api/internal/database"
	"github.com/talentogt/hr-api/internal/handlers"
	"github.com/talentogt/hr-api/internal/services"
	"github.com/talentogt/hr-api/internal/utils"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TalentoGT HR API")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	employeeRepository := database.NewEmployeeRepository(db)
	projectRepository := database.NewProjectRepository(db)
	sequenceRepository := database.NewSequenceRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	codeService := services.NewCodeService(sequenceRepository, logger)
	assignmentService := services.NewAssignmentService(employeeRepository, projectRepository)
	reconcilerService := services.NewReconcilerService(
		employeeRepository,
		projectRepository,
		logger,
		cfg.Reconciler.Schedule,
	)

	if cfg.Reconciler.Enabled {
		if err := reconcilerService.Start(); err != nil {
			logger.Fatalf("Failed to start reconciler service: %v", err)
		}
		logger.Info("Consistency reconciler started")
	} else {
		logger.Info("Consistency reconciler disabled")
	}

	logger.Info("Services initialized")

	// Initialize handlers
	employeeHandler := handlers.NewEmployeeHandler(
		employeeRepository,
		projectRepository,
		assignmentService,
		codeService,
		logger,
	)
	projectHandler := handlers.NewProjectHandler(
		projectRepository,
		assignmentService,
		codeService,
		logger,
	)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		employees := v1.Group("/employees")
		{
			employees.GET("", employeeHandler.GetEmployees)
			employees.GET("/available", employeeHandler.GetAvailableEmployees)
			employees.GET("/stats", employeeHandler.GetEmployeeStats)
			employees.POST("", employeeHandler.CreateEmployee)
			employees.GET("/:id", employeeHandler.GetEmployee)
			employees.PUT("/:id", employeeHandler.UpdateEmployee)
			employees.DELETE("/:id", employeeHandler.DeleteEmployee)
			employees.POST("/:id/assign-project", employeeHandler.AssignProject)
			employees.POST("/:id/release-project", employeeHandler.ReleaseProject)
		}

		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/active", projectHandler.GetActiveProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.PATCH("/:id/progress", projectHandler.UpdateProgress)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.GET("/:id/employees", projectHandler.GetProjectEmployees)
			projects.POST("/:id/employees", projectHandler.AddEmployee)
			projects.DELETE("/:id/employees/:employee_id", projectHandler.RemoveEmployee)
		}

		// Admin routes for operational tooling
		admin := v1.Group("/admin")
		{
			admin.POST("/reconcile", func(c *gin.Context) {
				report, err := reconcilerService.Sweep()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "internal_error",
						"message": err.Error(),
					})
					return
				}
				c.JSON(http.StatusOK, gin.H{
					"message":    "Consistency sweep completed",
					"consistent": report.Consistent(),
					"report":     report,
				})
			})
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cfg.Reconciler.Enabled {
		logger.Info("Stopping reconciler service...")
		reconcilerService.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		device := utils.ParseUserAgent(c.Request.UserAgent())

		fields := logrus.Fields{
			"status":      c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        path,
			"query":       query,
			"ip":          c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
			"device_type": device.DeviceType,
			"os":          device.OS,
			"browser":     device.Browser,
		}
		if device.IsBot {
			fields["is_bot"] = true
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
