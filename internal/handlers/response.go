package handlers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/Aryan192003/Chatify-backend/internal/apperr"
	"github.com/Aryan192003/Chatify-backend/internal/service"
)

// respondError is the uniform error responder: every request-path failure
// reports {success:false, message} with the status mapped from the error
// kind. Internal details never leak to clients.
func respondError(c *fiber.Ctx, err error) error {
	msg := "internal server error"
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	return c.Status(apperr.Status(err)).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func respond(c *fiber.Ctx, status int, body fiber.Map) error {
	body["success"] = true
	return c.Status(status).JSON(body)
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func readFile(fh *multipart.FileHeader) (*service.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
