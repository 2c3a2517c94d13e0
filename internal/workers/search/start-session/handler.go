// internal/workers/search/start-session/handler.go
package startsession

import (
	"context"
	"encoding/json"
	"strings"
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
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/resultcache"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/session"
)

const TaskType = "start-session"

var inputSchema = validation.MustCompile(TaskType, `{
	"type": "object",
	"properties": {
		"query":        {"type": "string"},
		"businessType": {"type": "array", "items": {"type": "string"}},
		"location":     {"type": "string"},
		"searchCenter": {
			"type": "object",
			"properties": {
				"lat": {"type": "number", "minimum": -90, "maximum": 90},
				"lng": {"type": "number", "minimum": -180, "maximum": 180}
			},
			"required": ["lat", "lng"]
		},
		"baseResults": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {"placeId": {"type": "string"}},
				"required": ["placeId"]
			}
		},
		"filters": {"type": "object"},
		"userId":  {"type": "string"}
	},
	"required": ["businessType", "location", "searchCenter"]
}`)

type Handler struct {
	config   *Config
	sessions *session.Store
	cache    *resultcache.Cache
	obs      *observability.Observability
	errors   *commonerrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, sessions *session.Store, cache *resultcache.Cache, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		cache:    cache,
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
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int("base_results", len(input.BaseResults)))
	defer span.End()

	filters := models.FilterState{}
	if input.Filters != nil {
		if err := validation.ValidateFilterState(*input.Filters); err != nil {
			span.SetStatus(codes.Error, "invalid filters")
			return nil, err
		}
		filters = input.Filters.Clone()
	}

	req := resultcache.Request{
		Categories: input.BusinessType,
		Location:   input.Location,
		Filters:    filters,
	}
	results, status := h.resolveResults(ctx, req, input.BaseResults)
	span.SetAttributes(attribute.String("cache_status", string(status)))

	sess := h.sessions.Create(models.BaseSearch{
		Categories:   input.BusinessType,
		Location:     strings.TrimSpace(input.Location),
		SearchCenter: input.SearchCenter,
		BaseResults:  results,
	}, input.UserID)

	sessionID := sess.SessionID
	if !filters.IsEmpty() {
		var ok bool
		if sess, ok = h.sessions.UpdateFilters(sessionID, filters); !ok {
			return nil, commonerrors.NewSessionNotFoundError(sessionID)
		}
	}

	applied := filter.Apply(sess.BaseSearch.BaseResults, sess.CurrentFilters, sess.BaseSearch.SearchCenter)
	sess, ok := h.sessions.AppendTurn(sessionID, models.SearchTurn{
		QueryText:      input.Query,
		AppliedFilters: sess.CurrentFilters,
		ResultCount:    len(applied),
		IsRefinement:   false,
	})
	if !ok {
		return nil, commonerrors.NewSessionNotFoundError(sessionID)
	}

	h.logger.Info("session started", map[string]interface{}{
		"sessionId":   sess.SessionID,
		"categories":  input.BusinessType,
		"resultCount": len(applied),
		"cacheStatus": status,
	})

	return &Output{
		SessionID:    sess.SessionID,
		StateVersion: sess.StateVersion,
		ResultCount:  len(applied),
		CacheStatus:  status,
	}, nil
}

// resolveResults fills an empty result list from the cache and stores a
// provided one. Cache failures are logged and never fail the job.
func (h *Handler) resolveResults(ctx context.Context, req resultcache.Request, provided []models.Business) ([]models.Business, resultcache.Status) {
	if len(provided) == 0 {
		cached, status, err := h.cache.Get(ctx, req)
		if err != nil {
			h.logger.Warn("starting session without cached results", map[string]interface{}{"error": err.Error()})
		}
		return cached, status
	}

	if resultcache.ShouldBypass(req) {
		return provided, resultcache.StatusBypass
	}
	if err := h.cache.Set(ctx, req, provided); err != nil {
		h.logger.Warn("provider results not cached", map[string]interface{}{"error": err.Error()})
		return provided, resultcache.StatusError
	}
	return provided, resultcache.StatusStored
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
