package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/pereval/internal/schema"
	"github.com/garnizeh/pereval/pkg/repository"
)

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	repository.PerevalRepo
	repository.ImageRepo
	repository.ReferenceRepo
	repository.Pinger
}

func SetupRoutes(version, buildTime string, store Store) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := NewSystemHandler(store)
	perevalHandler := NewPerevalHandler(store, schema.MustNew())
	imageHandler := NewImageHandler(store)
	referenceHandler := NewReferenceHandler(store)
	pageHandler := NewPageHandler(store)

	// System endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", systemHandler.MetricsHandler()).Methods("GET")

	// Pages
	r.HandleFunc("/", pageHandler.Index).Methods("GET")
	r.HandleFunc("/submit", pageHandler.SubmitForm).Methods("GET")

	// Passes
	r.HandleFunc("/submitData", perevalHandler.Submit).Methods("POST", "OPTIONS")
	r.HandleFunc("/submitData/{id:[0-9]+}", perevalHandler.Get).Methods("GET")
	r.HandleFunc("/submitData/{id:[0-9]+}", perevalHandler.Patch).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/userPerevals", perevalHandler.ListByEmail).Methods("GET")
	r.HandleFunc("/perevals", perevalHandler.ListAll).Methods("GET")

	// Images
	r.HandleFunc("/uploadImage", imageHandler.Upload).Methods("POST", "OPTIONS")
	r.HandleFunc("/images/{id:[0-9]+}", imageHandler.Get).Methods("GET")

	// Reference data
	r.HandleFunc("/areas", referenceHandler.Areas).Methods("GET")
	r.HandleFunc("/activities", referenceHandler.Activities).Methods("GET")

	return r
}
