package controller

import (
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/pkg/serverutils"
	"ai-orchestrator-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler)
	Send(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetSessions(ctx *fiber.Ctx) error
	GetTranscript(ctx *fiber.Ctx) error
}

type chatController struct {
	orchestrationService service.IOrchestrationService
}

func NewChatController(orchestrationService service.IOrchestrationService) IChatController {
	return &chatController{
		orchestrationService: orchestrationService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler) {
	h := r.Group("/chat/v1", apiKeyMiddleware)
	h.Post("", c.Send)
	h.Post("session", c.CreateSession)
	h.Get("sessions", c.GetSessions)
	h.Get("session/:id/transcript", c.GetTranscript)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orchestrationService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	res, err := c.orchestrationService.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *chatController) GetSessions(ctx *fiber.Ctx) error {
	res, err := c.orchestrationService.GetSessions(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session list", res))
}

func (c *chatController) GetTranscript(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.orchestrationService.GetTranscript(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session transcript", res))
}
