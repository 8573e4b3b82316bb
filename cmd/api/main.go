package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"whispr/internal/common"
	"whispr/internal/dbmysql"
	"whispr/internal/di"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	log.Println("Starting API Server...")

	app, err := di.InitializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Mongo.Close(context.Background())
	defer app.Redis.Close()

	if err := app.DB.AutoMigrate(
		&dbmysql.User{},
		&dbmysql.Conversation{},
		&dbmysql.ConversationMember{},
		&dbmysql.Message{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migration completed")

	router := mux.NewRouter()
	router.Use(common.LoggingMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		common.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	public := router.PathPrefix("/api").Subrouter()
	app.UserHandler.RegisterPublicRoutes(public)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(common.AuthMiddleware)
	app.UserHandler.RegisterRoutes(api)
	app.ChatHandler.RegisterRoutes(api)
	api.HandleFunc("/upload", app.UploadHandler.Upload).Methods("POST")

	srv := &http.Server{
		Addr:         app.Config.Server.Host + ":" + app.Config.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("API Server running on port %s", app.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down API Server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("API Server stopped")
}
