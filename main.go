package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"chershare/internal/images"
	"chershare/internal/store"
)

type App struct {
	Config *Config
	Store  *store.Store
	Images *images.Pipeline
}

const (
	slowDownWindow     = 15 * time.Minute
	slowDownDelayAfter = 100
	slowDownDelayStep  = 500 * time.Millisecond

	shutdownTimeout = 10 * time.Second
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	InitializeLogger(config)

	log.WithField("path", config.DatabasePath).Info("trying to connect to the db")
	st, err := store.Open(config.DatabasePath)
	if err != nil {
		log.Fatal("could not connect to the db: ", err)
	}

	pipeline, err := images.NewPipeline(config.StoragePath)
	if err != nil {
		log.Fatal("Failed to initialize image storage: ", err)
	}

	app := &App{
		Config: config,
		Store:  st,
		Images: pipeline,
	}

	limiter := NewSlowDownLimiter(slowDownWindow, slowDownDelayAfter, slowDownDelayStep)
	limiter.StartCleanupRoutine()

	srv := &http.Server{
		Addr:    ":" + config.Port,
		Handler: app.routes(limiter),
	}

	go func() {
		log.WithField("port", config.Port).Info("Server is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	// Finalize prepared statements and close the connection last, once no
	// handler can touch them anymore.
	if err := app.Store.Close(); err != nil {
		log.WithError(err).Error("Failed to close store")
	}
}

// routes wires the handlers. CORS wraps the router from the outside: the
// routes only match GET/POST, so an OPTIONS preflight would hit the router's
// 405 before any mux middleware could answer it.
func (app *App) routes(limiter *SlowDownLimiter) http.Handler {
	r := mux.NewRouter()

	r.Use(app.RecoveryMiddleware)
	r.Use(app.LoggingMiddleware)
	r.Use(app.SlowDownMiddleware(limiter))

	r.HandleFunc("/", app.handleWelcome).Methods("GET")
	r.HandleFunc("/resources", app.handleListResources).Methods("GET")
	r.HandleFunc("/resources/{resourceName}", app.handleGetResource).Methods("GET")
	r.HandleFunc("/resources/{resourceName}/images", app.handleResourceImages).Methods("GET")
	r.HandleFunc("/resources/{resourceName}/bookings", app.handleResourceBookings).Methods("GET")
	r.HandleFunc("/bookings", app.handleAccountBookings).Methods("GET")
	r.HandleFunc("/resource-images", app.handleUploadImage).Methods("POST")
	r.HandleFunc("/resource-images/{key}", app.handleServeImage).Methods("GET")

	return app.CORSMiddleware(r)
}

func (app *App) handleWelcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("welcome to the chershare api"))
}
