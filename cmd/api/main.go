package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nextgencrm/nextgencrm-go/internal/infra/database"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/http/handlers"
	crmmiddleware "github.com/nextgencrm/nextgencrm-go/internal/infra/http/middleware"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/mail"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/queue"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/webhook"
	"github.com/nextgencrm/nextgencrm-go/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	orgRepo := database.NewOrganizationRepository(db)
	contactRepo := database.NewContactRepository(db)
	oppRepo := database.NewOpportunityRepository(db)
	taskRepo := database.NewTaskRepository(db)
	callRepo := database.NewCallRepository(db)
	statsRepo := database.NewStatsRepository(db)

	// 2. Producer and notifier
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	mailPort, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if mailPort == 0 {
		mailPort = 587
	}
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort,
		os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("MAIL_FROM"),
	)

	// 3. Worker consuming conversion audit events
	webhookClient := webhook.NewClient()
	worker := queue.NewWorker(rabbitMQ.Ch, mailSender, webhookClient)
	go worker.Start(queue.QueueName)

	// 4. UseCases
	convertUC := usecase.NewConvertLeadUseCase(leadRepo, orgRepo, contactRepo, oppRepo, producer)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(leadRepo, convertUC)
	orgHandler := handlers.NewOrganizationHandler(orgRepo)
	contactHandler := handlers.NewContactHandler(contactRepo)
	oppHandler := handlers.NewOpportunityHandler(oppRepo)
	taskHandler := handlers.NewTaskHandler(taskRepo)
	callHandler := handlers.NewCallHandler(callRepo)
	dashboardHandler := handlers.NewDashboardHandler(statsRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(crmmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", leadHandler.HandleList)
			r.Post("/", leadHandler.HandleCreate)
			r.Get("/{id}", leadHandler.HandleGet)
			r.Put("/{id}", leadHandler.HandleUpdate)
			r.Delete("/{id}", leadHandler.HandleDelete)
			r.Post("/{id}/convert", leadHandler.HandleConvert)
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", orgHandler.HandleList)
			r.Post("/", orgHandler.HandleCreate)
			r.Get("/{id}", orgHandler.HandleGet)
			r.Put("/{id}", orgHandler.HandleUpdate)
			r.Delete("/{id}", orgHandler.HandleDelete)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.HandleList)
			r.Post("/", contactHandler.HandleCreate)
			r.Get("/{id}", contactHandler.HandleGet)
			r.Put("/{id}", contactHandler.HandleUpdate)
			r.Delete("/{id}", contactHandler.HandleDelete)
		})

		r.Route("/opportunities", func(r chi.Router) {
			r.Get("/", oppHandler.HandleList)
			r.Post("/", oppHandler.HandleCreate)
			r.Get("/{id}", oppHandler.HandleGet)
			r.Put("/{id}", oppHandler.HandleUpdate)
			r.Delete("/{id}", oppHandler.HandleDelete)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.HandleList)
			r.Post("/", taskHandler.HandleCreate)
			r.Get("/{id}", taskHandler.HandleGet)
			r.Put("/{id}", taskHandler.HandleUpdate)
			r.Delete("/{id}", taskHandler.HandleDelete)
		})

		r.Route("/calls", func(r chi.Router) {
			r.Get("/", callHandler.HandleList)
			r.Post("/", callHandler.HandleCreate)
			r.Get("/{id}", callHandler.HandleGet)
			r.Put("/{id}", callHandler.HandleUpdate)
			r.Delete("/{id}", callHandler.HandleDelete)
		})

		r.Get("/dashboard/stats", dashboardHandler.HandleStats)
		r.Get("/dashboard/activities", dashboardHandler.HandleActivities)
	})

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🔥 NextGen CRM API running on port %s", port)
	http.ListenAndServe(":"+port, r)
}
