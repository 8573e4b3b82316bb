package di

import (
	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	chathandler "whispr/internal/chat/handler"
	"whispr/internal/config"
	"whispr/internal/dbmongo"
	"whispr/internal/media"
	"whispr/internal/user"
)

// App bundles the API server's long-lived resources and handlers. The storage
// handles are explicit fields so main controls their lifecycle.
type App struct {
	Config        *config.Config
	DB            *gorm.DB
	Mongo         *dbmongo.MongoClient
	Redis         *redis.Client
	ChatHandler   *chathandler.ChatHandler
	UserHandler   *user.Handler
	UploadHandler *media.UploadHandler
}
