package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"gadgetplan-api/config"
	"gadgetplan-api/database"
	"gadgetplan-api/handlers"
	"gadgetplan-api/middleware"
	"gadgetplan-api/queue"
	"gadgetplan-api/services/auth"
	"gadgetplan-api/services/booking"
	"gadgetplan-api/services/catalog"
	"gadgetplan-api/services/email"
	"gadgetplan-api/utils"
	"gadgetplan-api/worker"
)

const queueName = "gadgetplan_jobs"

func main() {
	cfg := config.Load()
	utils.SetupLogger(cfg.Log.Level, cfg.Log.Pretty)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("successfully connected to database")

	jobQueue, err := queue.NewQueue(cfg.Redis.URL, queueName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer jobQueue.Close()
	log.Info().Msg("successfully connected to Redis")

	// Services
	emailService := email.NewSMTPService(cfg.SMTP)
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, db)
	provider := auth.NewProviderClient(cfg.Auth.ProviderURL, cfg.Auth.AnonKey, 10*time.Second)
	resolver := auth.NewResolver(jwtService, provider)
	products := catalog.New()
	bookings := booking.NewService(cfg.Booking.AvailabilityDelay, jobQueue)

	emailWorker := worker.NewWorker(jobQueue, emailService, db)
	emailWorker.Start(cfg.Redis.WorkerConcurrency)
	log.Info().Int("workers", cfg.Redis.WorkerConcurrency).Msg("started email worker")

	// Handlers
	sessionStore := handlers.NewSessionStore(cfg.Session, jobQueue.Client())
	healthHandler := handlers.NewHealthHandler(db, handlers.PingerFunc(func(ctx context.Context) error {
		return jobQueue.Client().Ping(ctx).Err()
	})).WithQueue(jobQueue)
	catalogHandler := handlers.NewCatalogHandler(products)
	cartHandler := handlers.NewCartHandler(sessionStore, products)
	checkoutHandler := handlers.NewCheckoutHandler(sessionStore, jobQueue)
	bookingHandler := handlers.NewBookingHandler(bookings)
	authHandler := handlers.NewAuthHandler(db, jwtService, provider, handlers.NewHCaptchaVerifier(cfg.Captcha.Secret), cfg.Server.SiteURL)
	profileHandler := handlers.NewProfileHandler()

	rateLimiter := middleware.NewRateLimiter(jobQueue.Client())
	if err := rateLimiter.TrustProxies(cfg.Server.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	optionalAuth := middleware.OptionalAuth(resolver)
	requireAuth := middleware.RequireAuth(resolver)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.SecurityHeadersMiddleware)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// Catalog
	api.HandleFunc("/products", catalogHandler.ListProducts).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", catalogHandler.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/price", catalogHandler.GetPrice).Methods("GET")
	api.HandleFunc("/categories", catalogHandler.GetCategories).Methods("GET")

	// Cart
	api.HandleFunc("/cart", cartHandler.GetCart).Methods("GET")
	api.HandleFunc("/cart", cartHandler.AddToCart).Methods("POST")
	api.HandleFunc("/cart", cartHandler.UpdateCart).Methods("PUT")
	api.HandleFunc("/cart", cartHandler.ClearCart).Methods("DELETE")
	api.HandleFunc("/cart/remove", cartHandler.RemoveFromCart).Methods("POST")

	// Checkout
	api.HandleFunc("/checkout", checkoutHandler.GetCheckout).Methods("GET")
	api.HandleFunc("/checkout/shipping", checkoutHandler.SetShipping).Methods("POST")
	api.HandleFunc("/checkout/payment", checkoutHandler.SetPayment).Methods("POST")
	api.HandleFunc("/checkout/back", checkoutHandler.Back).Methods("POST")
	api.HandleFunc("/checkout/review", checkoutHandler.Review).Methods("GET")
	api.HandleFunc("/checkout/place", checkoutHandler.PlaceOrder).Methods("POST")

	// ServiceGo
	api.HandleFunc("/services/options", bookingHandler.GetOptions).Methods("GET")
	api.HandleFunc("/services/estimate", bookingHandler.GetEstimate).Methods("GET")
	api.HandleFunc("/services/availability", bookingHandler.CheckAvailability).Methods("POST")
	api.Handle("/services/bookings", optionalAuth(http.HandlerFunc(bookingHandler.Submit))).Methods("POST")

	// Auth
	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.Use(rateLimiter.RateLimitMiddleware())
	authRouter.HandleFunc("/send-otp", authHandler.SendOTP).Methods("POST")
	authRouter.HandleFunc("/verify-otp", authHandler.VerifyOTP).Methods("POST")
	authRouter.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRouter.HandleFunc("/callback", authHandler.Callback).Methods("GET")
	authRouter.HandleFunc("/google", authHandler.Google).Methods("GET")
	authRouter.Handle("/session", optionalAuth(http.HandlerFunc(authHandler.Session))).Methods("GET")
	authRouter.HandleFunc("/sign-out", authHandler.SignOut).Methods("POST")
	authRouter.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")

	// Profile
	api.Handle("/profile", requireAuth(http.HandlerFunc(profileHandler.GetProfile))).Methods("GET")

	// CORS sits outside the router so preflight requests never reach mux.
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        middleware.CORS(cfg.Server.AllowedOrigins)(router),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info().Msg("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("stopping email worker")
	emailWorker.Stop()

	log.Info().Msg("server exited properly")
}
