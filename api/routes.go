package api

import (
	"github.com/ahmed-hamed0/sani3y.com/internal/config"
	"github.com/ahmed-hamed0/sani3y.com/internal/db"
	"github.com/ahmed-hamed0/sani3y.com/internal/lifecycle"
	"github.com/ahmed-hamed0/sani3y.com/internal/ratings"
	"github.com/ahmed-hamed0/sani3y.com/internal/repository/sqlite"
	"github.com/ahmed-hamed0/sani3y.com/internal/signup"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, conn *db.DB) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and services
	store := sqlite.New(conn, logger)
	ratingSvc := ratings.NewService(store, store, logger)
	lifecycleSvc := lifecycle.NewService(store, store, store, store, store, logger)

	validator, err := signup.NewValidator()
	if err != nil {
		return nil, err
	}

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(store, store, store, store, validator, cfg.JWTSecret, cfg.TokenDuration, cfg.RememberDuration)
	jobsHandler := NewJobsHandler(store, lifecycleSvc)
	applicationsHandler := NewApplicationsHandler(lifecycleSvc)
	craftsmenHandler := NewCraftsmenHandler(store, store, ratingSvc)
	profileHandler := NewProfileHandler(store, store)
	reviewsHandler := NewReviewsHandler(store, store, store, ratingSvc)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/jobs", jobsHandler.ListJobs).Methods("GET")
	r.HandleFunc("/v1/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	r.HandleFunc("/v1/craftsmen", craftsmenHandler.ListCraftsmen).Methods("GET")
	r.HandleFunc("/v1/craftsmen/{id}", craftsmenHandler.GetCraftsman).Methods("GET")
	r.HandleFunc("/v1/craftsmen/{id}/reviews", reviewsHandler.ListReviews).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	// Job lifecycle endpoints
	apiV1.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/complete", jobsHandler.CompleteJob).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/cancel", jobsHandler.CancelJob).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/applications", applicationsHandler.SubmitApplication).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/applications", applicationsHandler.ListApplications).Methods("GET")
	apiV1.HandleFunc("/applications/{id}/accept", applicationsHandler.AcceptApplication).Methods("POST")
	apiV1.HandleFunc("/applications/{id}/reject", applicationsHandler.RejectApplication).Methods("POST")

	// Profile endpoints
	apiV1.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")
	apiV1.HandleFunc("/profile/craftsman", profileHandler.UpdateCraftsmanDetails).Methods("PUT")

	// Review endpoints
	apiV1.HandleFunc("/craftsmen/{id}/reviews", reviewsHandler.CreateReview).Methods("POST")

	return r, nil
}
