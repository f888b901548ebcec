package controller

import (
	"mime"

	"noet-be/internal/dto"
	"noet-be/internal/pkg/serverutils"
	"noet-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Purge(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
}

type noteController struct {
	service service.INoteService
}

func NewNoteController(service service.INoteService) INoteController {
	return &noteController{service: service}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notes")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/:noteId", c.Show)
	h.Put("/:noteId", c.Update)
	h.Delete("/:noteId", c.Delete)
	h.Get("/:noteId/export", c.Export)
	h.Post("/:noteId/restore", c.Restore)
	h.Delete("/:noteId/permanent", c.Purge)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	query := dto.ListNotesQuery{
		Search:   ctx.Query("search"),
		Tag:      ctx.Query("tag"),
		Notebook: ctx.Query("notebook"),
		Folder:   ctx.Query("folder"),
	}

	var err error
	if query.Starred, err = boolQuery(ctx, "starred"); err != nil {
		return err
	}
	if query.Archived, err = boolQuery(ctx, "archived"); err != nil {
		return err
	}
	if query.Deleted, err = boolQuery(ctx, "deleted"); err != nil {
		return err
	}
	if query.Since, err = timeQuery(ctx, "since"); err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), serverutils.UserId(ctx), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all notes", res))
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}

	res, err := c.service.Create(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create note", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.UserContext(), serverutils.UserId(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), serverutils.UserId(ctx), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	res, err := c.service.Delete(ctx.UserContext(), serverutils.UserId(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success move note to trash", res))
}

func (c *noteController) Restore(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	res, err := c.service.Restore(ctx.UserContext(), serverutils.UserId(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restore note", res))
}

func (c *noteController) Purge(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	if err := c.service.Purge(ctx.UserContext(), serverutils.UserId(ctx), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note permanently", nil))
}

func (c *noteController) Export(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	exported, err := c.service.Export(ctx.UserContext(), serverutils.UserId(ctx), id, ctx.Query("format"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, exported.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": exported.Filename}))
	return ctx.Send(exported.Body)
}
