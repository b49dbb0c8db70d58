// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/thecontabilist/planejador-backend/internal/controller"
	"github.com/thecontabilist/planejador-backend/internal/db"
	"github.com/thecontabilist/planejador-backend/internal/handler"
	"github.com/thecontabilist/planejador-backend/internal/mailer"
	"github.com/thecontabilist/planejador-backend/internal/model"
	"github.com/thecontabilist/planejador-backend/internal/queue"
	"github.com/thecontabilist/planejador-backend/internal/repository"
	"github.com/thecontabilist/planejador-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	subscriberRepo := buildRepository()
	events := buildPublisher()

	subscriptionService := &service.SubscriptionService{
		Repo:   subscriberRepo,
		Mailer: mailer.FromEnv(),
		Events: events,
	}

	subscriptionController := &controller.SubscriptionController{
		Service: subscriptionService,
	}

	debugHandler := handler.NewDebugHandler(subscriberRepo)

	r := chi.NewRouter()
	r.Use(handler.ForceHTTPS)

	// Subscription routes
	r.Post("/subscribe", subscriptionController.Subscribe)
	r.Get("/confirm/{token}", subscriptionController.Confirm)
	r.Get("/is_confirmed", subscriptionController.IsConfirmed)
	r.Get("/export", subscriptionController.Export)
	r.Get("/resend", subscriptionController.Resend)
	r.Get("/debug/subscribers", debugHandler.ListSubscribers)

	// Front-end assets, index.html at /
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

// buildRepository picks the store: Postgres when a database is configured,
// otherwise the flat JSON file the small deployments use.
func buildRepository() repository.SubscriberRepositoryInterface {
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		conn, err := db.Connect()
		if err != nil {
			log.Fatalf("failed to init database: %v", err)
		}
		return &repository.SubscriberRepository{DB: conn}
	}

	path := os.Getenv("SUBSCRIBERS_FILE")
	if path == "" {
		path = "subscribers.json"
	}
	log.Println("⚠️ No database configured, using flat file store:", path)
	return repository.NewFileSubscriberRepository(path)
}

// buildPublisher wires RabbitMQ when AMQP_URL is set; otherwise events are
// only logged in process.
func buildPublisher() queue.EventPublisher {
	if url := os.Getenv("AMQP_URL"); url != "" {
		return &queue.AMQPPublisher{URL: url}
	}

	mem := queue.NewInMemoryPublisher()
	mem.Subscribe(func(evt model.SubscriptionEvent) {
		log.Printf("📩 %s: %s", evt.Type, evt.Email)
	})
	return mem
}
