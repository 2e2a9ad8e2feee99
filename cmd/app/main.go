package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/di"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// .env is optional, environment variables win over YAML either way
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s remote=%s", cfg.Environment, cfg.Fi.BaseURL)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
