package main

import (
	"log"
	"time"

	"mealbox-be/internal/config"
	"mealbox-be/pkg/database"

	"github.com/alecthomas/kong"
)

type seedCLI struct {
	Customers int `help:"Number of demo customers." default:"20"`
	Weeks     int `help:"Weeks of deliveries to schedule." default:"2"`
}

var CLI seedCLI

func main() {
	kong.Parse(&CLI,
		kong.Name("seed"),
		kong.Description("Seed staff accounts and demo deliveries"),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	schedule, err := cfg.Operations.DeliverySchedule()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	log.Println("Seeding staff accounts...")
	SeedStaff(db)

	log.Println("Seeding customers and deliveries...")
	SeedDeliveries(db, schedule, CLI.Customers, CLI.Weeks, time.Now())

	log.Println("Seeding completed!")
}
