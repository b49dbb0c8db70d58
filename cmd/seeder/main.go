//cmd/seeder/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/thecontabilist/planejador-backend/internal/db"
	appErrors "github.com/thecontabilist/planejador-backend/internal/errors"
	"github.com/thecontabilist/planejador-backend/internal/model"
	"github.com/thecontabilist/planejador-backend/internal/repository"
)

func strPtr(s string) *string { return &s }

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	var repo repository.SubscriberRepositoryInterface
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		conn, err := db.Connect()
		if err != nil {
			log.Fatalf("failed to init database: %v", err)
		}
		defer conn.Close()
		repo = &repository.SubscriberRepository{DB: conn}
	} else {
		path := os.Getenv("SUBSCRIBERS_FILE")
		if path == "" {
			path = "subscribers.json"
		}
		repo = repository.NewFileSubscriberRepository(path)
	}

	samples := []model.Subscriber{
		{
			Company:      "Padaria do João",
			Email:        "joao@example.com",
			Whatsapp:     strPtr("5511988887777"),
			Consent:      true,
			Confirmed:    true,
			ConfirmToken: "seed-token-joao",
		},
		{
			Company:      "Estúdio Maria Fotografia",
			Email:        "maria@example.com",
			Consent:      true,
			Confirmed:    false,
			ConfirmToken: "seed-token-maria",
		},
		{
			Company:      "Oficina Dois Irmãos",
			Email:        "oficina@example.com",
			Whatsapp:     strPtr("5511912345678"),
			Consent:      true,
			Confirmed:    false,
			ConfirmToken: "seed-token-oficina",
		},
	}

	for i := range samples {
		sub := samples[i]
		if err := repo.Insert(&sub); err != nil {
			if appErrors.IsDuplicateEmail(err) {
				fmt.Printf("Skipped (exists): %s\n", sub.Email)
				continue
			}
			log.Fatalf("failed to seed %s: %v", sub.Email, err)
		}
		fmt.Printf("Seeded: %s\n", sub.Email)
	}

	fmt.Println("Seeding completed successfully!")
}
