package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/ask").
			To(handler.Ask).
			Doc("Answer a medical question grounded in the indexed corpus").
			Metadata(restfulspec.KeyOpenAPITags, []string{"ask"}).
			Reads(AskRequest{}).
			Writes(models.GeneratedAnswer{}).
			Returns(200, "OK", models.GeneratedAnswer{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/evaluate").
			To(handler.Evaluate).
			Doc("Run the metric evaluation over the posted question samples").
			Metadata(restfulspec.KeyOpenAPITags, []string{"evaluate"}).
			Reads(EvaluateRequest{}).
			Writes(models.EvaluationReport{}).
			Returns(200, "OK", models.EvaluationReport{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}))

	container.Add(ws)
}
