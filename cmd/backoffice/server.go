package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iidmage/backoffice/internal/attachment"
	"github.com/iidmage/backoffice/internal/client"
	"github.com/iidmage/backoffice/internal/commande"
	"github.com/iidmage/backoffice/internal/logger"
	"github.com/iidmage/backoffice/internal/notification"
	"github.com/iidmage/backoffice/internal/poseur"
	"github.com/iidmage/backoffice/internal/router"
	storage "github.com/iidmage/backoffice/internal/storage/postgres"
	"github.com/iidmage/backoffice/internal/user"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()

	store, err := storage.NewPostgresStorage(cfg.DatabaseConnection)
	if err != nil {
		log.Fatalf("Failed to initialize Postgres storage: %v", err)
	}
	if err := store.Ping(pingCtx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	mailer := notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	adminNotifier := notification.NewAdminNotifier(mailer, cfg.AdminEmail, cfg.FrontendURL, logger.Log)
	scheduler := notification.NewScheduler(store)

	userSvc := user.NewService(store, mailer, cfg.AdminEmail, []byte(cfg.JWTSecret), cfg.JWTTTL, logger.Log)
	userHandler := user.NewHandler(userSvc)

	clientSvc := client.NewService(store)
	clientHandler := client.NewHandler(clientSvc)

	poseurSvc := poseur.NewService(store)
	poseurHandler := poseur.NewHandler(poseurSvc)

	commandeSvc := commande.NewService(store, scheduler, adminNotifier, logger.Log)
	commandeHandler := commande.NewHandler(commandeSvc, store)

	attachmentSvc := attachment.NewService(store, cfg.UploadDir)
	attachmentHandler := attachment.NewHandler(attachmentSvc)

	r := router.NewRouter(userHandler, clientHandler, poseurHandler, commandeHandler, attachmentHandler, []byte(cfg.JWTSecret), cfg.UploadDir)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()

	sweeper := notification.NewSweeper(store, store, mailer, cfg.AdminEmail, cfg.FrontendURL, cfg.SweepBatch, logger.Log)
	go sweeper.Run(sweepCtx, cfg.SweepInterval)

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	cancelSweep()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
