package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/toggle-corp/chrono-server/internal/bot"
	"github.com/toggle-corp/chrono-server/internal/config"
	"github.com/toggle-corp/chrono-server/internal/repository"
	"github.com/toggle-corp/chrono-server/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	entrySvc := service.NewEntryService(entryRepo, taskRepo)
	summarySvc := service.NewSummaryService(entryRepo, taskRepo, projectRepo)
	reportSvc := service.NewReportService(summarySvc)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, taskRepo, entrySvc, summarySvc, reportSvc, cfg.Location)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(cfg.Location)
	if _, err := scheduler.ScheduleWeekly(time.Monday, cfg.DigestTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendWeeklyDigests(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("weekly digest: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("chrono server started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
