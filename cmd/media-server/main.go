package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"whispr/internal/config"
	"whispr/internal/dbmongo"
	"whispr/internal/media"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	cfg := config.LoadConfig()

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Close(context.Background())

	mediaServer := media.NewHTTPServer(mongoClient)

	log.Printf("🚀 Media HTTP Server starting on port %s", cfg.Server.MediaPort)
	log.Printf("📂 Serving files at: http://localhost:%s/media/{fileId}", cfg.Server.MediaPort)

	if err := http.ListenAndServe(":"+cfg.Server.MediaPort, mediaServer); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
