package controller

import (
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/pkg/serverutils"
	"ai-orchestrator-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IFeedbackController interface {
	RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler, jwtMiddleware fiber.Handler)
	Submit(ctx *fiber.Ctx) error
	GetMetrics(ctx *fiber.Ctx) error
	GetSuggestions(ctx *fiber.Ctx) error
	MarkSuggestionImplemented(ctx *fiber.Ctx) error
	GetByRequestId(ctx *fiber.Ctx) error
	GetById(ctx *fiber.Ctx) error
}

type feedbackController struct {
	feedbackService service.IFeedbackService
}

func NewFeedbackController(feedbackService service.IFeedbackService) IFeedbackController {
	return &feedbackController{
		feedbackService: feedbackService,
	}
}

func (c *feedbackController) RegisterRoutes(r fiber.Router, apiKeyMiddleware fiber.Handler, jwtMiddleware fiber.Handler) {
	h := r.Group("/feedback/v1")
	// Static segments before ":id"
	h.Get("metrics", apiKeyMiddleware, c.GetMetrics)
	h.Get("suggestions", jwtMiddleware, c.GetSuggestions)
	h.Put("suggestions/:id/implemented", jwtMiddleware, c.MarkSuggestionImplemented)
	h.Post("", apiKeyMiddleware, c.Submit)
	h.Get("request/:id", apiKeyMiddleware, c.GetByRequestId)
	h.Get(":id", apiKeyMiddleware, c.GetById)
}

func (c *feedbackController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.feedbackService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Feedback received", res))
}

func (c *feedbackController) GetMetrics(ctx *fiber.Ctx) error {
	res, err := c.feedbackService.GetMetrics(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Learning metrics", res))
}

func (c *feedbackController) GetSuggestions(ctx *fiber.Ctx) error {
	res, err := c.feedbackService.GetSuggestions(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Improvement suggestions", res))
}

func (c *feedbackController) MarkSuggestionImplemented(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid suggestion ID"))
	}

	if err := c.feedbackService.MarkSuggestionImplemented(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Suggestion marked implemented", nil))
}

func (c *feedbackController) GetByRequestId(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request ID"))
	}

	res, err := c.feedbackService.GetByRequestId(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feedback list", res))
}

func (c *feedbackController) GetById(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid feedback ID"))
	}

	res, err := c.feedbackService.GetById(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Feedback not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Feedback detail", res))
}
