package controller

import (
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/pkg/serverutils"
	"ai-orchestrator-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	CreateKey(ctx *fiber.Ctx) error
	ListKeys(ctx *fiber.Ctx) error
	RevokeKey(ctx *fiber.Ctx) error
}

type authController struct {
	apiKeyService service.IApiKeyService
}

func NewAuthController(apiKeyService service.IApiKeyService) IAuthController {
	return &authController{
		apiKeyService: apiKeyService,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/auth/v1/keys", jwtMiddleware)
	h.Post("", c.CreateKey)
	h.Get("", c.ListKeys)
	h.Delete(":id", c.RevokeKey)
}

func (c *authController) CreateKey(ctx *fiber.Ctx) error {
	var req dto.CreateApiKeyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.apiKeyService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("API key created", res))
}

func (c *authController) ListKeys(ctx *fiber.Ctx) error {
	res, err := c.apiKeyService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("API key list", res))
}

func (c *authController) RevokeKey(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid key ID"))
	}

	if err := c.apiKeyService.Revoke(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("API key revoked", nil))
}
