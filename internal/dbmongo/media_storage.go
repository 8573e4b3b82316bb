package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxFileSize is the hard payload cap enforced before any blob write (25 MB)
const MaxFileSize = 25 * 1024 * 1024

// AllowedAudioTypes is the content-type allowlist for voice-message uploads
var AllowedAudioTypes = []string{"audio/webm", "audio/ogg", "audio/mp4", "audio/mpeg"}

var (
	ErrEmptyFile    = errors.New("no file")
	ErrFileTooLarge = errors.New("file too large")
	ErrNotImage     = errors.New("image required for avatar")
	ErrNotAudio     = errors.New("audio type required")
)

type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

type MediaFile struct {
	ID         string    `json:"id"`          // GridFS ObjectID
	Filename   string    `json:"filename"`    // Original filename
	Size       int64     `json:"size"`        // File size in bytes
	MimeType   string    `json:"mime_type"`   // Full MIME type
	UploadedBy string    `json:"uploaded_by"` // User ID who uploaded
	UploadedAt time.Time `json:"uploaded_at"` // Upload timestamp
}

// ValidateUpload enforces the size cap and per-purpose type rules before
// anything reaches the bucket. purpose is one of file, avatar, audio.
func ValidateUpload(purpose, filename, mimeType string, size int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}

	switch purpose {
	case "avatar":
		if !isImageUpload(filename, mimeType) {
			return ErrNotImage
		}
	case "audio":
		if !isAllowedAudio(mimeType) {
			return ErrNotAudio
		}
	}
	return nil
}

func isImageUpload(filename, mimeType string) bool {
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return true
	}
	lower := strings.ToLower(filename)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func isAllowedAudio(mimeType string) bool {
	lower := strings.ToLower(mimeType)
	for _, allowed := range AllowedAudioTypes {
		if lower == allowed {
			return true
		}
	}
	return strings.HasPrefix(lower, "audio/")
}

func (ms *MediaStorage) UploadFile(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*MediaFile, error) {
	metadata := bson.M{
		"mime_type":   mimeType,
		"uploaded_by": uploaderID,
		"uploaded_at": time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ms.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &MediaFile{
		ID:         stream.FileID.(primitive.ObjectID).Hex(),
		Filename:   filename,
		Size:       size,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
		UploadedAt: time.Now(),
	}, nil
}

func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.Reader, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file ID: %w", err)
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	mediaFile := &MediaFile{
		ID:         fileID,
		Filename:   fileInfo.Name,
		Size:       fileInfo.Length,
		MimeType:   getStringFromMap(metadata, "mime_type"),
		UploadedBy: getStringFromMap(metadata, "uploaded_by"),
		UploadedAt: fileInfo.UploadDate,
	}

	return stream, mediaFile, nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	return ms.gridFS.Delete(objectID)
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
