package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"luxebites/internal/database"
	"luxebites/internal/handlers"
	"luxebites/internal/services"
)

var (
	once     sync.Once
	router   http.Handler
	setupErr error
)

func setup() {
	gin.SetMode(gin.ReleaseMode)

	logger, err := zap.NewProduction()
	if err != nil {
		setupErr = err
		return
	}
	log := logger.Sugar()

	// Serverless instances keep carts in memory only for as long as they live.
	h := handlers.NewHandler(database.NewMemoryStore(), services.NewCatalog(services.DefaultMenu()),
		services.NewClearScheduler(log), log, handlers.Options{})
	router, setupErr = handlers.NewRouter(h)
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if setupErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}
