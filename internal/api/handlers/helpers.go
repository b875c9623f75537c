package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postsync/internal/models"
)

func GetUserID(c *fiber.Ctx) int64 {
	s, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(s, 10, 64)
	return userID
}

func postIDParam(c *fiber.Ctx) (models.InternalID, error) {
	return models.ParseInternalID(c.Params("id"))
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
