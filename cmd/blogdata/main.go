package main

import (
	"bytes"
	"context"
	"github.com/disintegration/imaging"
	"github.com/golang-cz/devslog"
	_ "github.com/lib/pq"
	"github.com/mdobak/go-xerrors"
	"github.com/rowhe/blogdata/internal/avatar"
	"github.com/rowhe/blogdata/internal/config"
	"github.com/rowhe/blogdata/internal/core"
	"github.com/rowhe/blogdata/internal/database"
	"github.com/rowhe/blogdata/internal/storage"
	"github.com/rowhe/blogdata/internal/utils/databaseutils"
	"image/color"
	"log/slog"
	"os"
	"time"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Errors loading configuration", slog.String("stack", xerrors.Sprint(err)))
		os.Exit(1)
	}
	if cfg == nil {
		// Help was requested.
		return
	}

	logger := configLogger(cfg.Debug)
	logger.Info("Starting application...")

	db, err := database.OpenDB(cfg.DSN)
	if err != nil {
		logger.Error("Errors opening database connection", slog.String("stack", xerrors.Sprint(err)))
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Errors closing database connection", slog.String("stack", xerrors.Sprint(err)))
			os.Exit(1)
		}
	}()

	logger.Info("Database connection established successfully")

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db); err != nil {
		logger.Error("Errors applying the schema", slog.String("stack", xerrors.Sprint(err)))
		os.Exit(1)
	}
	logger.Info("Schema is up to date")

	store, err := buildFileStore(ctx, cfg)
	if err != nil {
		logger.Error("Errors configuring the file store", slog.String("stack", xerrors.Sprint(err)))
		os.Exit(1)
	}

	if cfg.WritePlaceholder {
		if err := ensurePlaceholder(ctx, store, cfg.PlaceholderKey); err != nil {
			logger.Error("Errors writing the placeholder avatar", slog.String("stack", xerrors.Sprint(err)))
			os.Exit(1)
		}
	}

	avatars, err := avatar.NewPipeline(ctx, store, cfg.PlaceholderKey, logger)
	if err != nil {
		logger.Error("Errors configuring the avatar pipeline", slog.String("stack", xerrors.Sprint(err)))
		os.Exit(1)
	}

	sqlTemplate := databaseutils.NewSQLTemplate(db, 3*time.Second)
	session := databaseutils.NewSession(db, logger)
	blogCore := core.NewCore(db, logger, sqlTemplate, session, avatars)

	if cfg.Seed {
		if err := seed(ctx, blogCore, logger); err != nil {
			logger.Error("Errors seeding demonstration data", slog.String("stack", xerrors.Sprint(err)))
			os.Exit(1)
		}
	}

	logger.Info("Bootstrap finished", "storage", cfg.Storage, "placeholder", avatars.Placeholder())
}

func configLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := devslog.NewHandler(
		os.Stdout, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     level,
			},
			NewLineAfterLog: false,
		})

	logger := slog.New(handler)
	return logger
}

func buildFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	switch cfg.Storage {
	case "minio":
		return storage.NewMinIO(ctx, storage.MinIOOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return storage.NewDisk(cfg.MediaDir)
	}
}

// ensurePlaceholder writes a plain gray image under the placeholder key
// unless something is already stored there.
func ensurePlaceholder(ctx context.Context, store storage.FileStore, key string) error {
	exists, err := store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	img := imaging.New(avatar.MaxWidth, avatar.MaxHeight, color.NRGBA{R: 230, G: 230, B: 230, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return xerrors.New(err)
	}

	return store.Upload(ctx, key, buf.Bytes())
}
