package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	config "github.com/maheshrc27/postsync/configs"
	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/service"
	"github.com/maheshrc27/postsync/internal/transfer"
)

// IngestHandler serves the comments webhook called by the automation
// platform.
type IngestHandler struct {
	s       service.IngestionService
	maxBody int
}

func NewIngestHandler(s service.IngestionService, cfg config.Webhook) *IngestHandler {
	return &IngestHandler{s: s, maxBody: cfg.MaxBodyBytes}
}

func (h *IngestHandler) ReceiveComments(c *fiber.Ctx) error {
	body := c.Body()
	if h.maxBody > 0 && len(body) > h.maxBody {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(transfer.IngestionResponse{
			Success: false,
			Message: "Payload too large",
		})
	}

	result, err := h.s.Ingest(c.Context(), body)
	if err != nil {
		return ingestError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(transfer.IngestionResponse{
		Success:    true,
		Message:    fmt.Sprintf("Stored %d comments", result.Inserted),
		Inserted:   result.Inserted,
		Duplicates: result.Duplicates,
	})
}

// ingestError never echoes payload content back to the sender.
func ingestError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrDecode):
		return c.Status(fiber.StatusBadRequest).JSON(transfer.IngestionResponse{
			Message: "Payload could not be decoded",
		})
	case errors.Is(err, models.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(transfer.IngestionResponse{
			Message: "Invalid payload: " + err.Error(),
		})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(transfer.IngestionResponse{
			Message: "No post matches platform_post_id",
		})
	case errors.Is(err, models.ErrStorage):
		return c.Status(fiber.StatusInternalServerError).JSON(transfer.IngestionResponse{
			Message: "Unable to store comments",
			Error:   models.ErrStorage.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(transfer.IngestionResponse{
			Message: "Unable to store comments",
			Error:   "internal error",
		})
	}
}
