package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/gowes/bike-rental-api/internal/config"
	"github.com/gowes/bike-rental-api/internal/database"
	"github.com/gowes/bike-rental-api/internal/engine"
	"github.com/gowes/bike-rental-api/internal/handler"
	"github.com/gowes/bike-rental-api/internal/queue"
	"github.com/gowes/bike-rental-api/internal/repository"
	"github.com/gowes/bike-rental-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	stations := repository.NewStationRepo(db)
	services := repository.NewServiceRepo(db)
	rentals := repository.NewRentalRepo(db)
	reports := repository.NewReportRepo(db)

	eng := engine.New(db, vehicles, stations, services, rentals, engine.Pricing{
		RatePerHour: cfg.RatePerHour,
		MinimumFee:  cfg.MinimumFee,
	})

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Vehicles: handler.NewVehicleHandler(vehicles),
		Stations: handler.NewStationHandler(stations, vehicles),
		Services: handler.NewServiceHandler(services),
		Rentals:  handler.NewRentalHandler(eng, rentals),
		Reports:  handler.NewReportHandler(reports, vehicles),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, db, rdb, cfg, h)

	// Receipt consumer runs for the life of the process and reconnects
	// on broker failures.
	go func() {
		if err := queue.StartRentalConsumer(); err != nil {
			log.Printf("rental consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
