package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/infinitescroll/image-store/internal/api"
	"github.com/infinitescroll/image-store/internal/cmd"
	"github.com/infinitescroll/image-store/internal/image"
	"github.com/infinitescroll/image-store/internal/metrics"
	"github.com/infinitescroll/image-store/internal/repository"
	"github.com/infinitescroll/image-store/internal/tracing"
	"github.com/infinitescroll/image-store/internal/unsplash"

	"github.com/infinitescroll/image-store/internal/database"
	fileDatabase "github.com/infinitescroll/image-store/internal/database/file"
	"github.com/infinitescroll/image-store/internal/database/mongodb"
	"github.com/infinitescroll/image-store/internal/health"
	"github.com/infinitescroll/image-store/internal/logger"
	"github.com/infinitescroll/image-store/internal/storage"
	fileStorage "github.com/infinitescroll/image-store/internal/storage/file"
	"github.com/infinitescroll/image-store/internal/storage/gridfs"
	"github.com/infinitescroll/image-store/internal/storage/spaces"

	"github.com/jamiealquiza/envy"
	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// Comandline flags
var (
	// Global
	listen        = flag.String("listen", ":8080", "listen address")
	metricsListen = flag.String("metrics-listen", "127.0.0.1:8082", "metrics listen address")
	loglevel      = zap.LevelFlag("log-level", zap.InfoLevel, "log level (default \"info\") (debug, info, warn, error, dpanic, panic, fatal)")
	corsOrigin    = flag.String("cors-origin", "http://localhost:3000", "origin allowed to make cross-origin requests")

	// Database
	databaseBackend     = flag.String("database", "mongodb", "which database backend to use (mongodb, file)")
	databaseWaitTimeout = flag.Duration("database-wait-timeout", time.Second*30, "time to wait for a database connection to be established before giving up")

	// Database - MongoDB
	databaseMongoDBURI  = flag.String("database-mongodb-uri", "", "mongodb connection uri")
	databaseMongoDBName = flag.String("database-mongodb-name", "", "mongodb database name")

	// Database - File
	databaseFilePath = flag.String("database-file-path", "./data/metadata.json", "path to the database file")

	// Storage
	storageBackend = flag.String("storage", "gridfs", "which storage backend to use (gridfs, spaces, file)")

	// Storage - File
	storageFilePath = flag.String("storage-file-path", "./data/images", "path to the file storage")

	// Storage - Spaces
	storageSpacesSpace          = flag.String("storage-spaces-space", "", "digitalocean space to use")
	storageSpacesEndpoint       = flag.String("storage-spaces-endpoint", "", "spaces endpoint")
	storageSpacesAccessKey      = flag.String("storage-spaces-access-key", "", "spaces access key")
	storageSpacesSecretKey      = flag.String("storage-spaces-secret-key", "", "spaces secret key")
	storageSpacesForcePathStyle = flag.Bool("storage-spaces-force-path-style", false, "use path style addressing, for s3 compatible servers")

	// Unsplash
	unsplashAPIURL = flag.String("unsplash-api-url", "", "unsplash api url")
	unsplashAPIKey = flag.String("unsplash-api-key", "", "unsplash access key")
)

func main() {
	// Load a .env file from the working directory, if there is one
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("error loading .env file: %s", err))
	}

	// Parse environment variables
	envy.Parse("IMAGESTORE")

	// Parse commandline flags
	flag.Parse()

	// Initialize the logger
	log := logger.New(*loglevel)
	defer log.Sync()

	// Set GOMAXPROCS
	maxprocs.Set(maxprocs.Logger(log.Infof))

	if *unsplashAPIURL == "" || *unsplashAPIKey == "" {
		log.Fatalf("the unsplash api url and key are required")
	}

	// Set up context for shutting down
	shutdownCtx, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	// Initialize tracing
	tracer, err := tracing.New(shutdownCtx, log, "image-store")
	if err != nil {
		log.Fatalf("error initializing tracing: %s", err)
	}
	defer tracer.Shutdown(context.Background())

	// Initialize the database and storage
	db, store, err := setupBackends()
	if err != nil {
		log.Fatalf("error initializing backends: %s", err)
	}
	defer db.Shutdown()

	log.Infof("waiting for the database")
	waitCtx, cancel := context.WithTimeout(context.Background(), *databaseWaitTimeout)
	err = db.Wait(waitCtx)
	cancel()
	if errors.Is(err, mongodb.ErrDuplicateRecords) {
		log.Warnf("continuing without the unique image id index: %s", err)
	} else if err != nil {
		log.Fatalf("error waiting for the database: %s", err)
	}

	// Initialize and start the health checker
	checkerCtx, checkerCancel := context.WithCancel(context.Background())
	defer checkerCancel()

	checker := &health.Checker{
		Ctx:      checkerCtx,
		Storage:  store,
		Database: db,
		Log:      log.Named("health"),
	}
	go checker.Run()

	// Start the metrics http server
	go metrics.Serve(shutdownCtx, log, checker, *metricsListen)

	service := &image.Service{
		Repository: &repository.Repository{
			Storage:  store,
			Database: db,
			Tracer:   tracer,
		},
		Source: &unsplash.Client{
			BaseURL:    *unsplashAPIURL,
			AccessKey:  *unsplashAPIKey,
			Tracer:     tracer,
			HTTPClient: unsplash.NewHTTPClient(),
		},
		Log: log.Named("image"),
	}

	// Start and listen on http
	api := &api.API{
		Service:        service,
		HealthChecker:  checker,
		Log:            log,
		Tracer:         tracer,
		CORSOrigin:     *corsOrigin,
		HandlerTimeout: cmd.HandlerTimeout,
	}
	server := &http.Server{
		Addr:        *listen,
		Handler:     api.Router(),
		ReadTimeout: cmd.ReadTimeout,
		ErrorLog:    logger.NewHTTPErrorLog(log),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Infof("shutting down the http server: %s", err)
			shutdown()
		}
	}()

	log.Infof("http server listening on %s", *listen)

	// Wait for shutdown or error
	err = cmd.WaitForInterrupt(shutdownCtx)
	log.Infof("shutting down: %s", err)

	// Shut down http server
	serverCtx, serverCancel := context.WithTimeout(context.Background(), cmd.ShutdownTimeout)
	defer serverCancel()
	if err := server.Shutdown(serverCtx); err != nil {
		log.Warnf("error shutting down: %s", err)
	}
}

func setupBackends() (db database.Provider, store storage.Provider, err error) {
	// Database
	var mongo *mongodb.Provider
	switch *databaseBackend {
	case "mongodb":
		if *databaseMongoDBURI == "" || *databaseMongoDBName == "" {
			return nil, nil, fmt.Errorf("the mongodb uri and database name are required")
		}

		mongo, err = mongodb.New(*databaseMongoDBURI, *databaseMongoDBName)
		db = mongo
	case "file":
		db, err = fileDatabase.New(*databaseFilePath)
	default:
		err = fmt.Errorf("invalid database backend")
	}

	if err != nil {
		return nil, nil, err
	}

	// Storage
	switch *storageBackend {
	case "gridfs":
		if mongo == nil {
			err = fmt.Errorf("the gridfs storage backend requires the mongodb database backend")
			break
		}

		store = gridfs.New(mongo.Database())
	case "spaces":
		store, err = spaces.New(*storageSpacesSpace, *storageSpacesEndpoint, *storageSpacesAccessKey, *storageSpacesSecretKey, *storageSpacesForcePathStyle)
	case "file":
		store, err = fileStorage.New(*storageFilePath)
	default:
		err = fmt.Errorf("invalid storage backend")
	}

	if err != nil {
		db.Shutdown()
		return nil, nil, err
	}

	return db, store, nil
}
