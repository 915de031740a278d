package main

import (
	"log"
	"net/http"

	"pricewatch/config"
	"pricewatch/database"
	"pricewatch/handlers"
	"pricewatch/middleware"
	"pricewatch/notify"
	"pricewatch/repository"
	"pricewatch/scheduler"
	"pricewatch/scraper"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize repositories
	urlRepo := repository.NewURLRepository()
	alertRepo := repository.NewAlertRepository()
	choiceRepo := repository.NewChoiceRepository()

	// Initialize extraction core
	extractor := scraper.NewExtractor(scraper.Options{
		FetchTimeout:               cfg.FetchTimeout,
		PreferSecondForElectronics: cfg.PreferSecondForElectronics,
		ClassificationThreshold:    cfg.ClassificationThreshold,
		NegativeKeywordPenalty:     cfg.NegativeKeywordPenalty,
	})

	// Initialize and start the scheduled price checker
	priceChecker := scheduler.NewPriceChecker(extractor, notify.NewLogNotifier(), cfg.CheckSchedule)
	priceChecker.Start()
	defer priceChecker.Stop()

	// Initialize handlers
	h := handlers.NewHandlers(urlRepo, alertRepo, choiceRepo, extractor, priceChecker)
	defer h.Close()

	// Setup router
	r := mux.NewRouter()

	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerSecond))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()

	// URL management
	apiV1.HandleFunc("/urls", h.AddURLToTrack).Methods("POST")
	apiV1.HandleFunc("/urls", h.GetTrackedURLs).Methods("GET")
	apiV1.HandleFunc("/urls/{id}", h.GetURLDetails).Methods("GET")
	apiV1.HandleFunc("/urls/{id}", h.DeleteTrackedURL).Methods("DELETE")
	apiV1.HandleFunc("/urls/{id}/check", h.CheckPriceNow).Methods("POST")
	apiV1.HandleFunc("/urls/{id}/check-async", h.CheckPriceNowAsync).Methods("POST")
	apiV1.HandleFunc("/urls/{id}/choice", h.HandleUserChoice).Methods("POST")
	apiV1.HandleFunc("/urls/{id}/choice", h.ClearUserChoice).Methods("DELETE")

	// Price alerts
	apiV1.HandleFunc("/urls/{id}/alerts", h.SetPriceAlert).Methods("POST")
	apiV1.HandleFunc("/urls/{id}/alerts", h.GetPriceAlerts).Methods("GET")
	apiV1.HandleFunc("/urls/{id}/alerts/{alertId}", h.DeletePriceAlert).Methods("DELETE")

	// Ad-hoc extraction and task management
	apiV1.HandleFunc("/extract", h.ExtractAdhoc).Methods("GET")
	apiV1.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTaskStatus).Methods("GET")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("🌐 Server starting on %s:%s", cfg.Host, cfg.Port)
	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}
