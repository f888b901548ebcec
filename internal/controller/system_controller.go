package controller

import (
	"noet-be/internal/dto"
	"noet-be/internal/pkg/serverutils"
	"noet-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Config(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
	LogDetail(ctx *fiber.Ctx) error
	StoragePath(ctx *fiber.Ctx) error
	SetStoragePath(ctx *fiber.Ctx) error
	ValidateStorage(ctx *fiber.Ctx) error
}

type systemController struct {
	systemService  service.ISystemService
	storageService service.IStorageService
}

func NewSystemController(systemService service.ISystemService, storageService service.IStorageService) ISystemController {
	return &systemController{
		systemService:  systemService,
		storageService: storageService,
	}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/config", c.Config)
	r.Get("/logs", c.Logs)
	r.Get("/logs/:id", c.LogDetail)

	storage := r.Group("/storage")
	storage.Get("/path", c.StoragePath)
	storage.Post("/path", c.SetStoragePath)
	storage.Post("/validate", c.ValidateStorage)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", c.systemService.Health(ctx.UserContext())))
}

func (c *systemController) Config(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get config", c.systemService.Config(ctx.UserContext())))
}

func (c *systemController) Logs(ctx *fiber.Ctx) error {
	logs, err := c.systemService.Logs(ctx.UserContext(), ctx.Query("level"), ctx.QueryInt("limit", 100), ctx.QueryInt("offset", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get logs", logs))
}

func (c *systemController) LogDetail(ctx *fiber.Ctx) error {
	entry, err := c.systemService.LogById(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get log", entry))
}

func (c *systemController) StoragePath(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get storage path", c.storageService.CurrentPath(ctx.UserContext())))
}

func (c *systemController) SetStoragePath(ctx *fiber.Ctx) error {
	var req dto.StoragePathRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.storageService.SetPath(ctx.UserContext(), req.Path)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update storage path", res))
}

func (c *systemController) ValidateStorage(ctx *fiber.Ctx) error {
	var req dto.StoragePathRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success validate storage path", c.storageService.Validate(ctx.UserContext(), req.Path)))
}
