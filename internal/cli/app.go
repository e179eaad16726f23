// Package cli is the interactive client of the file catalog. It wires the
// storage stack selected by the configuration (embedded SQLite or remote
// PostgreSQL with object storage) and drives a small REPL over the catalog
// service.
package cli

import (
	"bufio"
	"context"
	"os"

	"filedeck/internal/auth"
	"filedeck/internal/blob"
	"filedeck/internal/catalog"
	"filedeck/internal/config"
	"filedeck/internal/logging"
	"filedeck/internal/models"
	"filedeck/internal/session"
	"filedeck/internal/storage/postgres"
	"filedeck/internal/storage/sqlite"
)

type App struct {
	config  *config.Config
	catalog *catalog.Service
	reader  *bufio.Reader
	user    *models.User
	log     logging.Logger
	closeFn func() error
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	a := &App{config: cfg, reader: bufio.NewReader(os.Stdin), log: logger}

	switch cfg.Backend {
	case config.BackendRemote:
		eng := postgres.New(cfg.DatabaseDSN)
		db, err := eng.DB(ctx)
		if err != nil {
			return nil, err
		}

		blobs, err := blob.NewS3Store(ctx, blob.S3Config{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}

		tokens := auth.NewFileTokenStorage(cfg.TokenFilePath)
		provider := auth.NewTokenProvider([]byte(cfg.SecretKey), cfg.TokenValidityDuration, tokens)

		a.catalog = catalog.NewService(eng, blobs, provider, logger).
			WithCredentials(auth.NewPostgresCredentialStore(db))
		a.closeFn = eng.Close

	default:
		eng := sqlite.New(cfg.DatabasePath)
		db, err := eng.DB(ctx)
		if err != nil {
			return nil, err
		}

		a.catalog = catalog.NewService(eng, blob.NewInlineStore(), session.NewSQLiteStore(db), logger)
		a.closeFn = eng.Close
	}

	// Restore a persisted session, if any.
	if user, err := a.catalog.CurrentUser(ctx); err == nil {
		a.user = user
	}

	return a, nil
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) showLogin() string {
	if a.user == nil {
		return "(not logged in)"
	}
	return a.user.Email
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn != nil {
			_ = a.closeFn()
		}
	}()

	printlnFn("FileDeck CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.showLogin, scanner)
}
