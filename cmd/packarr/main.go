package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/packarr/internal/middleware"
)

func main() {
	InitializeLogger()
	InitializeConfig()
	InitializeDatabase()
	InitializeServices()
	defer DB.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Gzip())

	handler.RegisterRoutes(r)

	Logger.Infof("[app] starting HTTP server on port %s", Config.Port)
	log.Fatal(http.ListenAndServe(":"+Config.Port, r))
}
