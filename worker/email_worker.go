package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
	"gadgetplan-api/queue"
	"gadgetplan-api/services/email"
)

const (
	defaultPollTimeout   = 5 * time.Second
	delayedCheckInterval = 5 * time.Second
	otpPurgeInterval     = 10 * time.Minute
)

type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	CompleteJob(ctx context.Context, job *queue.Job) error
	FailJob(ctx context.Context, job *queue.Job, err error) error
	ProcessDelayedJobs(ctx context.Context) (int, error)
}

type OTPPurger interface {
	PurgeExpiredOTPs(ctx context.Context, before time.Time) (int64, error)
}

// Worker sends the confirmation emails queued by checkout and booking.
type Worker struct {
	queue       JobQueue
	mailer      email.EmailSender
	otps        OTPPurger
	pollTimeout time.Duration

	mu        sync.Mutex
	shutdown  chan struct{}
	wg        sync.WaitGroup
	isRunning bool
}

// NewWorker builds a worker. otps may be nil to skip OTP housekeeping.
func NewWorker(q JobQueue, mailer email.EmailSender, otps OTPPurger) *Worker {
	return &Worker{
		queue:       q,
		mailer:      mailer,
		otps:        otps,
		pollTimeout: defaultPollTimeout,
	}
}

// Start launches concurrency job goroutines plus one scheduler goroutine.
func (w *Worker) Start(concurrency int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}
	if concurrency < 1 {
		concurrency = 1
	}

	w.shutdown = make(chan struct{})
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i)
	}
	w.wg.Add(1)
	go w.schedule()

	log.Info().Int("workers", concurrency).Msg("started worker goroutines")
}

// Stop signals every goroutine and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	log.Info().Msg("stopping worker")
	close(w.shutdown)
	w.isRunning = false
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Worker) processJobs(workerID int) {
	defer w.wg.Done()
	logger := log.With().Int("worker", workerID).Logger()
	logger.Debug().Msg("worker starting")

	for {
		select {
		case <-w.shutdown:
			logger.Debug().Msg("worker shutting down")
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.pollTimeout+5*time.Second)
		job, err := w.queue.Dequeue(ctx, w.pollTimeout)
		cancel()

		if err != nil {
			logger.Error().Err(err).Msg("error dequeuing job")
			w.sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		jobLog := logger.With().Str("job_id", job.ID).Str("type", string(job.Type)).Logger()
		jobLog.Debug().Msg("processing job")

		if jobErr := w.processJob(job); jobErr != nil {
			if job.IsLastAttempt() {
				jobLog.Error().Err(jobErr).Int("retry", job.RetryCount).Msg("job failed on its last attempt")
			} else {
				jobLog.Warn().Err(jobErr).Int("retry", job.RetryCount).Msg("job failed")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := w.queue.FailJob(ctx, job, jobErr); err != nil {
				jobLog.Error().Err(err).Msg("error marking job as failed")
			}
			cancel()
			continue
		}

		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.queue.CompleteJob(ctx, job); err != nil {
			jobLog.Error().Err(err).Msg("error marking job as complete")
		}
		cancel()
	}
}

func (w *Worker) processJob(job *queue.Job) error {
	var err error
	switch job.Type {
	case queue.JobTypeOrderConfirmation:
		var order models.PlacedOrder
		if err = job.Decode(&order); err != nil {
			return err
		}
		err = w.mailer.SendOrderConfirmation(order)
	case queue.JobTypeBookingConfirmation:
		var booking models.BookingConfirmation
		if err = job.Decode(&booking); err != nil {
			return err
		}
		err = w.mailer.SendBookingConfirmation(booking)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	// retrying cannot help until SMTP is configured
	if errors.Is(err, email.ErrNotConfigured) {
		log.Warn().Str("job_id", job.ID).Msg("smtp not configured, dropping confirmation email")
		return nil
	}
	return err
}

func (w *Worker) schedule() {
	defer w.wg.Done()

	delayed := time.NewTicker(delayedCheckInterval)
	defer delayed.Stop()
	purge := time.NewTicker(otpPurgeInterval)
	defer purge.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-delayed.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				log.Error().Err(err).Msg("error moving delayed jobs")
			}
			cancel()
		case <-purge.C:
			w.purgeOTPs()
		}
	}
}

func (w *Worker) purgeOTPs() {
	if w.otps == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := w.otps.PurgeExpiredOTPs(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("error purging expired otp codes")
		return
	}
	if n > 0 {
		log.Debug().Int64("rows", n).Msg("purged expired otp codes")
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.shutdown:
	case <-time.After(d):
	}
}
