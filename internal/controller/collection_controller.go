package controller

import (
	"noet-be/internal/dto"
	"noet-be/internal/entity"
	"noet-be/internal/pkg/serverutils"
	"noet-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICollectionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Reorder(ctx *fiber.Ctx) error
	Move(ctx *fiber.Ctx) error
}

// collectionController serves one kind; mount one per kind.
type collectionController struct {
	service service.ICollectionService
	kind    entity.CollectionKind
}

func NewCollectionController(service service.ICollectionService, kind entity.CollectionKind) ICollectionController {
	return &collectionController{service: service, kind: kind}
}

func (c *collectionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/" + string(c.kind))
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Post("/reorder", c.Reorder)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	if c.kind.Nestable() {
		h.Post("/:id/move", c.Move)
	}
}

func (c *collectionController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), serverutils.UserId(ctx), c.kind)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all "+string(c.kind), res))
}

func (c *collectionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateCollectionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), serverutils.UserId(ctx), c.kind, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create "+c.kind.Singular(), res))
}

func (c *collectionController) Show(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.UserContext(), serverutils.UserId(ctx), c.kind, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show "+c.kind.Singular(), res))
}

func (c *collectionController) Update(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateCollectionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), serverutils.UserId(ctx), c.kind, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update "+c.kind.Singular(), res))
}

func (c *collectionController) Delete(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), serverutils.UserId(ctx), c.kind, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete "+c.kind.Singular(), nil))
}

func (c *collectionController) Reorder(ctx *fiber.Ctx) error {
	var req dto.ReorderRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Reorder(ctx.UserContext(), serverutils.UserId(ctx), c.kind, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reorder "+string(c.kind), res))
}

func (c *collectionController) Move(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.MoveCollectionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Move(ctx.UserContext(), serverutils.UserId(ctx), c.kind, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success move "+c.kind.Singular(), res))
}
