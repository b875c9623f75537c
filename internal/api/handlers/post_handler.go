package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/service"
	"github.com/maheshrc27/postsync/internal/transfer"
)

type PostHandler struct {
	s service.PostService
	p service.PublishService
}

func NewPostHandler(s service.PostService, p service.PublishService) *PostHandler {
	return &PostHandler{s: s, p: p}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) PostInfo(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post doesn't exist"})
	}

	post, err := h.s.PostInfo(c.Context(), postID, GetUserID(c))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post doesn't exist"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unable to get post"})
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListComments(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post doesn't exist"})
	}

	comments, err := h.s.Comments(c.Context(), postID, GetUserID(c))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post doesn't exist"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unable to list comments"})
	}
	return c.Status(fiber.StatusOK).JSON(comments)
}

// Publish is the dashboard's publish trigger.
func (h *PostHandler) Publish(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return publishResult(c, &models.NotFoundError{Resource: "post", Key: c.Params("id")})
	}

	_, err = h.p.Publish(c.Context(), postID, GetUserID(c))
	return publishResult(c, err)
}

func (h *PostHandler) Schedule(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return publishResult(c, &models.NotFoundError{Resource: "post", Key: c.Params("id")})
	}

	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(transfer.PublishResult{Message: "Unable to parse request"})
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(transfer.PublishResult{Message: "scheduled_at must be an RFC 3339 time"})
	}

	if _, err := h.s.Schedule(c.Context(), postID, GetUserID(c), at); err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(transfer.PublishResult{Message: err.Error()})
		}
		return publishResult(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(transfer.PublishResult{
		Success: true,
		Message: "Post scheduled successfully",
	})
}

func publishResult(c *fiber.Ctx, err error) error {
	status, message := fiber.StatusOK, "Post published successfully"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		status, message = fiber.StatusNotFound, "Post doesn't exist"
	case errors.Is(err, models.ErrAlreadyPublished):
		status, message = fiber.StatusConflict, "Post is already published"
	case errors.Is(err, models.ErrTimeout):
		status, message = fiber.StatusGatewayTimeout, "Publishing service timed out"
	case errors.Is(err, models.ErrUpstream):
		status, message = fiber.StatusBadGateway, "Publishing service rejected the post"
	default:
		status, message = fiber.StatusInternalServerError, "Unable to update post"
	}

	return c.Status(status).JSON(transfer.PublishResult{
		Success: err == nil,
		Message: message,
	})
}
