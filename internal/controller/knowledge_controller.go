package controller

import (
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/pkg/serverutils"
	"ai-orchestrator-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler)
	Ingest(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler) {
	h := r.Group("/knowledge/v1", apiKeyMiddleware)
	h.Post("search", c.Search)
	h.Post("", c.Ingest)
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
}

func (c *knowledgeController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Document ingested", res))
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document list", res))
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *knowledgeController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid document ID"))
	}

	if err := c.knowledgeService.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Document deleted", nil))
}
