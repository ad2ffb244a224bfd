package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// EmailJob is one outbound message. Jobs are fire and forget: a failed send
// is logged and dropped, never surfaced to the caller.
type EmailJob struct {
	To        string
	Subject   string
	Body      string
	EventType string
	EventID   string
}

type Worker struct {
	ID         int
	WorkerPool chan chan EmailJob
	JobChannel chan EmailJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan EmailJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan EmailJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(EmailJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing email", "worker_id", w.ID, "to", job.To, "event_type", job.EventType)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client delivers notification emails through an HTTP email provider using a
// bounded worker pool, so a slow provider never backs up into request
// handling.
type Client struct {
	emailAPIURL string
	apiKey      string
	fromAddress string
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan EmailJob
	workerPool chan chan EmailJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	EmailAPIURL    string
	APIKey         string
	FromAddress    string
	SendTimeout    time.Duration
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	client := &Client{
		emailAPIURL: config.EmailAPIURL,
		apiKey:      config.APIKey,
		fromAddress: config.FromAddress,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan EmailJob, jobQueueSize),
		workerPool: make(chan chan EmailJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {

		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.processEmailJob)
		}

		c.wg.Add(1)
		go c.dispatch()

		c.logger.Info("notification worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:

			select {
			case jobChannel := <-c.workerPool:

				select {
				case jobChannel <- job:

				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down notification client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("notification client shutdown complete")
}

// Enqueue queues an email for background delivery. A full queue drops the
// message with a warning rather than blocking the caller.
func (c *Client) Enqueue(job EmailJob) {
	select {
	case c.jobQueue <- job:
		c.logger.Debug("email queued",
			"to", job.To,
			"event_type", job.EventType,
			"queue_length", len(c.jobQueue))
	default:
		c.logger.Warn("notification queue full, dropping message",
			"to", job.To,
			"event_type", job.EventType,
			"queue_capacity", cap(c.jobQueue))
	}
}

func (c *Client) processEmailJob(job EmailJob) {
	if err := c.sendEmail(job); err != nil {
		c.logger.Error("email delivery failed",
			"to", job.To,
			"event_type", job.EventType,
			"event_id", job.EventID,
			"error", err)
		return
	}
	c.logger.Info("email delivered", "to", job.To, "event_type", job.EventType)
}

func (c *Client) sendEmail(job EmailJob) error {
	payload := map[string]interface{}{
		"from":    c.fromAddress,
		"to":      job.To,
		"subject": job.Subject,
		"body":    job.Body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.sendTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.emailAPIURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	client := &http.Client{Timeout: c.sendTimeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}
