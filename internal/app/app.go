package app

import (
	"context"
	"net/http"

	"github.com/rpypty/galleria/internal/config"
	"github.com/rpypty/galleria/internal/db"
	eventdomain "github.com/rpypty/galleria/internal/domain/event"
	mediadomain "github.com/rpypty/galleria/internal/domain/media"
	storagedomain "github.com/rpypty/galleria/internal/domain/storage"
	eventrepo "github.com/rpypty/galleria/internal/repository/postgres/event"
	"github.com/rpypty/galleria/internal/storage/drive"
	"github.com/rpypty/galleria/internal/transport/httpserver"
	"github.com/rpypty/galleria/internal/transport/httpserver/handler"
	"github.com/rpypty/galleria/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg := config.Load(log)

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	// The storage backend is optional: without credentials the service
	// still serves galleries, but sync and the media proxy report 503.
	var store storagedomain.Client
	if cfg.Drive.Configured() {
		log.Info("app: initializing drive client")
		driveClient, err := drive.NewClient(ctx, cfg.Drive)
		if err != nil {
			return nil, err
		}
		store = driveClient
	} else {
		log.Warn("app: no drive credentials configured, storage backend disabled")
	}

	repo := eventrepo.NewPostgres(dbConn)
	events := eventdomain.NewService(repo, store, log)
	media := mediadomain.NewService(store, log)

	log.Info("app: initializing http server")
	handlers := handler.New(events, media, log)
	router := httpserver.NewRouter(cfg, handlers)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
