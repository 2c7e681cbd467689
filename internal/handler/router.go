package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(convertHandler *ConvertHandler, requestLogger func(http.Handler) http.Handler) http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogger)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-webp-converter"}`))
	}).Methods("GET")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/documents", convertHandler.UploadDocument).Methods("POST")
	api.HandleFunc("/sessions/{id}/convert", convertHandler.Convert).Methods("POST")
	api.HandleFunc("/sessions/{id}/pages", convertHandler.ListPages).Methods("GET")
	api.HandleFunc("/sessions/{id}/pages/{num}", convertHandler.DownloadPage).Methods("GET")
	api.HandleFunc("/sessions/{id}/archive", convertHandler.DownloadArchive).Methods("GET")
	api.HandleFunc("/sessions/{id}", convertHandler.ClearSession).Methods("DELETE")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:4173",
			"http://localhost:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
