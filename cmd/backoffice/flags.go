package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type Config struct {
	Address            string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseConnection string        `env:"DATABASE_URI"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL             time.Duration `env:"JWT_TTL" envDefault:"8h"`
	AdminEmail         string        `env:"ADMIN_EMAIL"`
	FrontendURL        string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	SMTPHost           string        `env:"SMTP_HOST"`
	SMTPPort           int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser           string        `env:"SMTP_USER"`
	SMTPPassword       string        `env:"SMTP_PASSWORD"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	SweepBatch         int           `env:"SWEEP_BATCH" envDefault:"25"`
	UploadDir          string        `env:"UPLOAD_DIR" envDefault:"uploads"`
}

func NewConfig() (*Config, error) {
	// .env необязателен, в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	databaseConnection := flag.String("d", cfg.DatabaseConnection, "Database connection string")
	jwtTTL := flag.Duration("t", cfg.JWTTTL, "TTL for JWT token(e.g. 8h; 30m )")
	sweepInterval := flag.Duration("i", cfg.SweepInterval, "Notification sweep interval")
	sweepBatch := flag.Int("b", cfg.SweepBatch, "Notification sweep batch size")
	uploadDir := flag.String("u", cfg.UploadDir, "Directory for uploaded photos")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.DatabaseConnection = *databaseConnection
	cfg.JWTTTL = *jwtTTL
	cfg.SweepInterval = *sweepInterval
	cfg.SweepBatch = *sweepBatch
	cfg.UploadDir = *uploadDir

	return cfg, nil
}
