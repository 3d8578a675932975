package api

import (
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/engine"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/index"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/pipeline"
	"github.com/rs/zerolog"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type EvaluateRequest struct {
	Samples []models.QuestionSample `json:"samples"`
}

type Handler struct {
	pipeline    *pipeline.Pipeline
	store       *index.Store
	engine      *engine.Engine
	defaultTopK int
	logger      *zerolog.Logger
}

func NewHandler(pipe *pipeline.Pipeline, store *index.Store, eng *engine.Engine, defaultTopK int, logger *zerolog.Logger) *Handler {
	return &Handler{
		pipeline:    pipe,
		store:       store,
		engine:      eng,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:    "ok",
		Documents: h.store.Len(),
	})
}

// POST /api/v1/ask
// Body: AskRequest
// Returns: models.GeneratedAnswer
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	var askRequest AskRequest
	if err := req.ReadEntity(&askRequest); err != nil {
		h.logger.Error().Err(err).Msg("failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if askRequest.Question == "" {
		middleware.HandleError(resp, errors.New("question is required"), http.StatusBadRequest)
		return
	}

	topK := askRequest.TopK
	if topK == 0 {
		topK = h.defaultTopK
	}

	h.logger.Info().
		Str("question", askRequest.Question).
		Int("top_k", topK).
		Msg("answering question")

	ctx := req.Request.Context()
	answer, err := h.pipeline.Answer(ctx, askRequest.Question, topK)
	if err != nil {
		if errors.Is(err, index.ErrInvalidTopK) {
			middleware.HandleError(resp, err, http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Msg("pipeline failed")
		middleware.HandleError(resp, err, http.StatusBadGateway)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, answer)
}

// POST /api/v1/evaluate
// Body: EvaluateRequest
// Returns: models.EvaluationReport
func (h *Handler) Evaluate(req *restful.Request, resp *restful.Response) {
	var evalRequest EvaluateRequest
	if err := req.ReadEntity(&evalRequest); err != nil {
		h.logger.Error().Err(err).Msg("failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if len(evalRequest.Samples) == 0 {
		middleware.HandleError(resp, errors.New("at least one sample is required"), http.StatusBadRequest)
		return
	}

	h.logger.Info().Int("samples", len(evalRequest.Samples)).Msg("evaluation requested")

	report, err := h.engine.Run(req.Request.Context(), evalRequest.Samples)
	if err != nil {
		h.logger.Error().Err(err).Msg("evaluation run stopped early")
		middleware.HandleError(resp, err, http.StatusBadGateway)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, report)
}
