package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/calebreyes/staffing-api-go/pkg/auth"
	"github.com/calebreyes/staffing-api-go/pkg/config"
	"github.com/calebreyes/staffing-api-go/pkg/database"
	"github.com/calebreyes/staffing-api-go/pkg/engine"
	"github.com/calebreyes/staffing-api-go/pkg/handlers"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := config.Load()
	auth.Init(cfg.JWTSecret, cfg.DeviceMasterSecret)

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Warn("admin bootstrap failed", zap.Error(err))
	}

	eng := engine.New(db, engine.Options{LateThreshold: cfg.LateThreshold})
	h := &handlers.Handler{DB: db, Engine: eng, Log: logger}

	r := h.Routes()

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("could not run server", zap.Error(err))
	}
}
