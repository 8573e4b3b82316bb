//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	chathandler "whispr/internal/chat/handler"
	"whispr/internal/chat/repository"
	"whispr/internal/chat/service"
	"whispr/internal/config"
	"whispr/internal/dbmongo"
	"whispr/internal/dbmysql"
	"whispr/internal/media"
	"whispr/internal/presence"
	"whispr/internal/user"
)

// InitializeApp builds the full API server dependency graph.
// wire generates the real body.
func InitializeApp() (*App, error) {
	wire.Build(
		config.LoadConfig,
		dbmysql.NewMySQL,
		dbmongo.NewMongoConnection,
		dbmongo.NewMediaStorage,
		presence.NewRedisClient,
		presence.NewRedisStore,
		repository.NewChatRepository,
		user.NewUserRepository,
		user.NewUserService,
		user.NewHandler,
		service.NewChatService,
		chathandler.NewChatHandler,
		media.NewUploadHandler,
		wire.Struct(new(App), "*"),
	)
	return &App{}, nil
}
