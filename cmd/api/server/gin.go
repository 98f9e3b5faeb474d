package server

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var corsMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPatch,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
}

// SetupGinServer wraps the Gin router with CORS and returns the REST API server.
func SetupGinServer(router *gin.Engine, host, port string, origins []string, l *zap.Logger) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := net.JoinHostPort(host, port)
	l.Info("Gin REST API configured", zap.String("address", addr), zap.Strings("cors_origins", origins))

	return &http.Server{
		Addr:              addr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
