// Package main Secdocs API Server
//
//	@title			Secdocs API
//	@version		1.0
//	@description	A document-grounded chat assistant for cybersecurity knowledge bases
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io
//
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/
package main

import (
	"log"

	_ "secdocs/docs" // This imports the docs package to initialize swagger

	"secdocs/internal/config"
	"secdocs/internal/server"
)

func main() {
	log.Println("Starting Secdocs Server...")
	cfg := config.Load()
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	log.Printf("Listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
