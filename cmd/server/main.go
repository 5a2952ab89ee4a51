package main

import (
	"log"

	_ "thingapi/docs"
	"thingapi/internal/config"
	"thingapi/internal/server"
)

// @title           Thing API
// @version         1.0
// @description     CRUD API for Users and the Things they own.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.basic BasicAuth

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
