package controller

import (
	"mime"

	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/serverutils"
	"noet-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const attachmentField = "file"

type IAttachmentController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type attachmentController struct {
	service service.IAttachmentService
}

func NewAttachmentController(service service.IAttachmentService) IAttachmentController {
	return &attachmentController{service: service}
}

func (c *attachmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notes/:noteId/attachments")
	h.Get("", c.List)
	h.Post("", c.Upload)
	h.Get("/:filename", c.Download)
	h.Delete("/:filename", c.Delete)
}

func (c *attachmentController) List(ctx *fiber.Ctx) error {
	noteId, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), serverutils.UserId(ctx), noteId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all attachments", res))
}

func (c *attachmentController) Upload(ctx *fiber.Ctx) error {
	noteId, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return apperror.Validation("expected a multipart form with field %q", attachmentField)
	}

	res, err := c.service.Upload(ctx.UserContext(), serverutils.UserId(ctx), noteId, form.File[attachmentField])
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success upload attachments", res))
}

func (c *attachmentController) Download(ctx *fiber.Ctx) error {
	noteId, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	file, err := c.service.Open(ctx.UserContext(), serverutils.UserId(ctx), noteId, ctx.Params("filename"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, file.MimeType)
	ctx.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": file.OriginalName}))
	// fasthttp closes the reader once the body is written
	return ctx.SendStream(file.Reader, int(file.Size))
}

func (c *attachmentController) Delete(ctx *fiber.Ctx) error {
	noteId, err := uuidParam(ctx, "noteId")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), serverutils.UserId(ctx), noteId, ctx.Params("filename")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete attachment", nil))
}
