// internal/workers/search/refine-results/handler.go
package refineresults

import (
	"context"
	"encoding/json"
	"errors"
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
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/filter"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/refinement"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/session"
)

const TaskType = "refine-results"

// resetConfidence is reported for reset phrases, which match literally.
const resetConfidence = 1.0

var inputSchema = validation.MustCompile(TaskType, `{
	"type": "object",
	"properties": {
		"sessionId": {"type": "string", "minLength": 1},
		"query":     {"type": "string"}
	},
	"required": ["sessionId", "query"]
}`)

type Handler struct {
	config   *Config
	sessions *session.Store
	parser   *refinement.Parser
	obs      *observability.Observability
	errors   *commonerrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, sessions *session.Store, parser *refinement.Parser, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		parser:   parser,
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
	_, span := h.obs.StartSpan(ctx, TaskType)
	defer span.End()

	sess, ok := h.sessions.Get(input.SessionID)
	if !ok {
		return h.noSession(input.SessionID), nil
	}

	if h.parser.IsReset(input.Query) {
		if sess, ok = h.sessions.Reset(input.SessionID); !ok {
			return h.noSession(input.SessionID), nil
		}
		metrics.Refinements.WithLabelValues("reset").Inc()
		span.SetAttributes(attribute.Bool("reset", true))
		return &Output{
			SessionFound: true,
			IsRefinement: true,
			Reset:        true,
			Operators:    []models.OperatorRecord{},
			Filters:      sess.CurrentFilters,
			Results:      sess.BaseSearch.BaseResults,
			ResultCount:  len(sess.BaseSearch.BaseResults),
			StateVersion: sess.StateVersion,
			Confidence:   resetConfidence,
		}, nil
	}

	parsed := h.parser.Parse(input.Query)
	if !parsed.IsRefinement {
		metrics.Refinements.WithLabelValues("new_search").Inc()
		h.logger.Info("utterance starts a new search", map[string]interface{}{"sessionId": input.SessionID})
		return &Output{
			SessionFound: true,
			Operators:    []models.OperatorRecord{},
			Filters:      sess.CurrentFilters,
			Results:      []models.Business{},
			StateVersion: sess.StateVersion,
		}, nil
	}

	for _, op := range parsed.Operators {
		metrics.RefinementOperators.WithLabelValues(string(op.Kind())).Inc()
	}

	incoming := filter.OperatorsToFilterState(parsed.Operators)
	sess, err := h.sessions.UpdateFiltersFunc(input.SessionID, func(current models.FilterState) (models.FilterState, error) {
		merged := filter.Merge(current, incoming)
		if err := validation.ValidateFilterState(merged); err != nil {
			return current, err
		}
		return merged, nil
	})
	if errors.Is(err, session.ErrSessionNotFound) {
		return h.noSession(input.SessionID), nil
	}
	if err != nil {
		span.SetStatus(codes.Error, "filters rejected")
		if _, ok := commonerrors.AsStandardError(err); !ok {
			err = commonerrors.NewRefinementFailedError(err)
		}
		return nil, err
	}

	results := filter.Apply(sess.BaseSearch.BaseResults, sess.CurrentFilters, sess.BaseSearch.SearchCenter)
	if n, ok := filter.ResultLimit(parsed.Operators); ok && n < len(results) {
		results = results[:n]
	}

	applied := sess.CurrentFilters
	if sess, ok = h.sessions.AppendTurn(input.SessionID, models.SearchTurn{
		QueryText:      input.Query,
		AppliedFilters: applied,
		ResultCount:    len(results),
		IsRefinement:   true,
	}); !ok {
		return h.noSession(input.SessionID), nil
	}

	metrics.Refinements.WithLabelValues("applied").Inc()
	span.SetAttributes(
		attribute.Int("operators", len(parsed.Operators)),
		attribute.Int("results", len(results)),
	)
	h.logger.Info("refinement applied", map[string]interface{}{
		"sessionId":    input.SessionID,
		"operators":    len(parsed.Operators),
		"resultCount":  len(results),
		"stateVersion": sess.StateVersion,
	})

	return &Output{
		SessionFound: true,
		IsRefinement: true,
		Operators:    models.ToRecords(parsed.Operators),
		Filters:      applied,
		Results:      results,
		ResultCount:  len(results),
		StateVersion: sess.StateVersion,
		Confidence:   parsed.Confidence,
	}, nil
}

// noSession tells the caller to start over. An expired session is not a
// job failure.
func (h *Handler) noSession(sessionID string) *Output {
	metrics.Refinements.WithLabelValues("no_session").Inc()
	h.logger.Info("session not found", map[string]interface{}{"sessionId": sessionID})
	return &Output{
		Operators: []models.OperatorRecord{},
		Results:   []models.Business{},
	}
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
