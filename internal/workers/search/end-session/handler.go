// internal/workers/search/end-session/handler.go
package endsession

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/observability"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/validation"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/session"
)

const TaskType = "end-session"

var inputSchema = validation.MustCompile(TaskType, `{
	"type": "object",
	"properties": {"sessionId": {"type": "string", "minLength": 1}},
	"required": ["sessionId"]
}`)

type Handler struct {
	config    *Config
	sessions  *session.Store
	locations *session.LocationStore
	obs       *observability.Observability
	errors    *commonerrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, sessions *session.Store, locations *session.LocationStore, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		sessions:  sessions,
		locations: locations,
		obs:       obs,
		errors:    commonerrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if result := inputSchema.Validate(json.RawMessage(job.Variables)); !result.Valid {
		h.failJob(ctx, client, job, commonerrors.NewInvalidInputError(result), start)
		return
	}
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, commonerrors.NewInvalidInputError(err), start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

// execute drops the session and its location history. Ending an unknown
// or expired session is not an error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	_, span := h.obs.StartSpan(ctx, TaskType)
	defer span.End()

	deleted := h.sessions.Delete(input.SessionID)
	if h.locations != nil {
		h.locations.Forget(input.SessionID)
	}

	h.logger.Info("session ended", map[string]interface{}{
		"sessionId": input.SessionID,
		"deleted":   deleted,
	})
	return &Output{Deleted: deleted}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.failJob(ctx, client, job, commonerrors.NewInternalError(err), start)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(start))
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := commonerrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))

	h.errors.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
