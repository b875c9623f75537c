package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postsync/internal/service"
	"github.com/maheshrc27/postsync/internal/transfer"
)

// SyncHandler serves the identifier feed the automation platform polls.
type SyncHandler struct {
	s service.SyncService
}

func NewSyncHandler(s service.SyncService) *SyncHandler {
	return &SyncHandler{s: s}
}

func (h *SyncHandler) ListPosts(c *fiber.Ctx) error {
	pairs, err := h.s.IdentifierPairs(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(transfer.SyncResponse{
			Success: false,
			Posts:   []transfer.IdentifierPair{},
			Message: "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(transfer.SyncResponse{
		Success: true,
		Posts:   pairs,
	})
}
