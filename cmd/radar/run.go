package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TrendRadar/internal/metrics"
	"TrendRadar/internal/notifier"
	"TrendRadar/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduled scanner with Telegram reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("[INFO] TrendRadar starting...")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateNotifier(); err != nil {
			return err
		}

		cache := newCache(cfg)
		defer cache.Close()

		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		m := metrics.NewMetrics()

		// Context for graceful shutdown
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.Metrics.Addr != "" {
			go func() {
				if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
					log.Printf("[ERROR] metrics server: %v", err)
				}
			}()
		}

		sched := scheduler.NewScheduler(ctx, newCollector(cfg, cache), tn, m, cfg.Analysis, cfg.Workers, cfg.Report.Top)
		if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")

		if os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, executing scan now")
			go sched.RunScanNow()
		}

		log.Println("[INFO] TrendRadar is running. Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
		return nil
	},
}
