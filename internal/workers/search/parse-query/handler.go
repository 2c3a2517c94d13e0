// internal/workers/search/parse-query/handler.go
package parsequery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/observability"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/validation"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/ambiguity"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/query"
)

const TaskType = "parse-query"

// Missing fields are left to the query validator so that an absent query
// reports EMPTY_QUERY rather than a schema failure.
var inputSchema = validation.MustCompile(TaskType, `{
	"type": "object",
	"properties": {
		"query":     {"type": "string"},
		"sessionId": {"type": "string"}
	}
}`)

type Handler struct {
	config   *Config
	parser   *query.Parser
	detector *ambiguity.Detector
	obs      *observability.Observability
	errors   *commonerrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, parser *query.Parser, detector *ambiguity.Detector, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		parser:   parser,
		detector: detector,
		obs:      obs,
		errors:   commonerrors.NewErrorHandler(log),
		logger:   log,
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
	if err := decodeInput(job.Variables, &input); err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

func decodeInput(variables string, input *Input) error {
	if result := inputSchema.Validate(json.RawMessage(variables)); !result.Valid {
		return commonerrors.NewInvalidInputError(result)
	}
	if err := json.Unmarshal([]byte(variables), input); err != nil {
		return commonerrors.NewInvalidInputError(err)
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Bool("session", input.SessionID != ""))
	defer span.End()

	result, err := h.parser.ParseWithRetry(ctx, input.Query, input.SessionID)
	if err != nil {
		stdErr := query.ToStandardError(err, h.parser.MaxQueryLength())
		span.SetStatus(codes.Error, string(stdErr.Code))
		return nil, stdErr
	}

	output := &Output{ParseResult: result}
	if found := h.detector.Detect(result); found != nil {
		output.Ambiguity = found
		output.NeedsClarification = true
		span.SetAttributes(attribute.String("ambiguous_field", string(found.Field)))
	}

	h.logger.Info("query parsed", map[string]interface{}{
		"sessionId":          input.SessionID,
		"categories":         result.Category.Categories,
		"locationType":       result.Location.Kind,
		"confidence":         result.Confidence,
		"needsClarification": output.NeedsClarification,
	})

	return output, nil
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

// Execute runs the job logic without a Zeebe client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
