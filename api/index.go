package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"news-reader/internal/config"
	"news-reader/internal/server"
)

var router *gin.Engine

func init() {
	// serverless functions get their configuration from the environment only
	if err := config.LoadEnv(); err != nil {
		log.Printf("env: %v", err)
	}
	router = server.NewRouter(config.Defaults())
}

// Handler is the entry point for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	router.ServeHTTP(w, r)
}
