package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/susu3304/splitbot/internal/api"
	"github.com/susu3304/splitbot/internal/billsplit"
	"github.com/susu3304/splitbot/internal/bot"
	"github.com/susu3304/splitbot/internal/config"
	"github.com/susu3304/splitbot/internal/db"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Settlement history is optional
	var svc *billsplit.Service
	if cfg.DatabaseURL != "" {
		database, err := db.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(context.Background()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		svc = billsplit.NewService(database)
	} else {
		log.Println("DATABASE_URL not set, settlement history disabled")
		svc = billsplit.NewService(nil)
	}

	// Discord bot is optional too
	if cfg.DiscordToken != "" {
		discordBot, err := bot.New(cfg.DiscordToken, svc, cfg.HistoryLimit)
		if err != nil {
			log.Fatalf("Failed to create discord bot: %v", err)
		}
		if err := discordBot.Start(); err != nil {
			log.Fatalf("Failed to start discord bot: %v", err)
		}
		defer discordBot.Stop()
	} else {
		log.Println("DISCORD_TOKEN not set, discord bot disabled")
	}

	apiServer := api.New(cfg, svc)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}
}
