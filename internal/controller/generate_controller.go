package controller

import (
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/pkg/serverutils"
	"ai-orchestrator-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGenerateController interface {
	RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler)
	Generate(ctx *fiber.Ctx) error
}

type generateController struct {
	orchestrationService service.IOrchestrationService
}

func NewGenerateController(orchestrationService service.IOrchestrationService) IGenerateController {
	return &generateController{
		orchestrationService: orchestrationService,
	}
}

func (c *generateController) RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler) {
	h := r.Group("/generate/v1", apiKeyMiddleware)
	h.Post("", c.Generate)
}

func (c *generateController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orchestrationService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
