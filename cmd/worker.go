package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/notification"
	"github.com/frahmantamala/asset-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for background services like notification delivery.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start notification worker pool",
	Long:  `Start the notification worker pool for delivering queued emails`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers     int
	jobQueueSize   int
	workerPoolSize int
	apiURL         string
	apiKey         string
	fromAddress    string
)

func startNotificationWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	// Command line flags override config values
	notifConfig := notification.Config{
		EmailAPIURL:    getStringFlag(apiURL, config.Notification.EmailAPIURL),
		APIKey:         getStringFlag(apiKey, config.Notification.APIKey),
		FromAddress:    getStringFlag(fromAddress, config.Notification.FromAddress),
		SendTimeout:    config.Notification.SendTimeout,
		MaxWorkers:     getIntFlag(maxWorkers, config.Notification.MaxWorkers),
		JobQueueSize:   getIntFlag(jobQueueSize, config.Notification.JobQueueSize),
		WorkerPoolSize: workerPoolSize,
	}

	logger.Info("starting notification worker",
		"max_workers", notifConfig.MaxWorkers,
		"job_queue_size", notifConfig.JobQueueSize,
		"email_api_url", notifConfig.EmailAPIURL)

	client := notification.NewClient(notifConfig, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("notification worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	logger.Info("received signal, shutting down notification worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info("notification worker pool shutdown complete")
	case <-ctx.Done():
		logger.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)

	eventBus.Subscribe("test.event", func(ctx context.Context, event events.Event) error {
		logger.Info("received test event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	logger.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	logger.Info("received signal, shutting down event bus", "signal", sig)
	logger.Info("event bus shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	notificationWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&workerPoolSize, "worker-pool-size", 0, "Worker pool channel size (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&apiURL, "api-url", "", "Email provider API URL (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&apiKey, "api-key", "", "Email provider API key (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&fromAddress, "from-address", "", "Sender address (overrides config)")

	workerCmd.AddCommand(notificationWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
