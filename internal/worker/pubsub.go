package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/calibration"
	"github.com/buurtcheck/buurtcheck/internal/offline"
)

// Job type names accepted on the subscription.
const (
	JobPipelineWarm     = "pipeline_warm"
	JobCalibrationCheck = "calibration_check"
	JobOfflineIngest    = "offline_ingest"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string

	warmJob    *WarmJob
	calibrator *calibration.Runner
	offline    *offline.Store
	downloads  []offline.Download

	logger zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler. Jobs whose
// dependencies are nil are rejected with an error at message time.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string

	WarmJob    *WarmJob
	Calibrator *calibration.Runner
	Offline    *offline.Store
	Downloads  []offline.Download

	Logger zerolog.Logger
}

// JobMessage represents one background job request.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings. Ingest downloads can take minutes.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 2
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		warmJob:          cfg.WarmJob,
		calibrator:       cfg.Calibrator,
		offline:          cfg.Offline,
		downloads:        cfg.Downloads,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch job.JobType {
	case JobPipelineWarm:
		err = h.handleWarm(ctx)
	case JobCalibrationCheck:
		err = h.handleCalibration(ctx)
	case JobOfflineIngest:
		err = h.handleIngest(ctx)
	default:
		logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", job.JobType).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleWarm(ctx context.Context) error {
	if h.warmJob == nil {
		return fmt.Errorf("warm job not configured")
	}

	result := h.warmJob.Run(ctx)

	// Consider the run successful if more than half the points sampled
	// cleanly; a single degraded upstream should not cause redelivery.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many warm failures: %d/%d", result.Failed, result.TotalPoints)
	}
	return nil
}

// handleCalibration runs the reference-point calibration check. A report
// that records FAIL checks is still a completed run: the report is
// persisted and redelivering the message will not change the outcome.
func (h *PubSubHandler) handleCalibration(ctx context.Context) error {
	if h.calibrator == nil {
		return fmt.Errorf("calibration runner not configured")
	}

	report, err := h.calibrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("calibration run: %w", err)
	}
	if report.Failed() {
		h.logger.Warn().Msg("calibration report recorded failures")
	}
	return nil
}

func (h *PubSubHandler) handleIngest(ctx context.Context) error {
	if h.offline == nil {
		return fmt.Errorf("offline store not configured")
	}
	if len(h.downloads) == 0 {
		h.logger.Warn().Msg("no offline downloads configured, nothing to ingest")
		return nil
	}
	return h.offline.Ingest(ctx, nil, h.downloads)
}
