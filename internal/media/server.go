package media

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"whispr/internal/dbmongo"
)

// HTTPServer streams stored attachments back out of GridFS
type HTTPServer struct {
	storage *dbmongo.MediaStorage
}

func NewHTTPServer(mongoClient *dbmongo.MongoClient) *HTTPServer {
	return &HTTPServer{
		storage: dbmongo.NewMediaStorage(mongoClient),
	}
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := mux.NewRouter()

	// Main endpoint: GET /media/{fileId}
	router.HandleFunc("/media/{fileId}", s.serveFile).Methods("GET")

	// Health check
	router.HandleFunc("/health", s.health).Methods("GET")

	router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fileId := vars["fileId"]

	fileReader, mediaFile, err := s.storage.DownloadFile(r.Context(), fileId)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	contentType := mediaFile.MimeType
	if contentType == "" {
		contentType = contentTypeFromName(mediaFile.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", mediaFile.Size))

	// Stream file directly to response
	if _, err := io.Copy(w, fileReader); err != nil {
		log.Printf("Error streaming file: %v", err)
	}
}

func contentTypeFromName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".webm":
		return "audio/webm"
	case ".ogg":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("✅ Media server is healthy"))
}
