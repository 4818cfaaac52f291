package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meetlinkapp/meetlink/pkg/internal/http/exts"
	"github.com/meetlinkapp/meetlink/pkg/internal/models"
	"github.com/meetlinkapp/meetlink/pkg/internal/services"
)

func getUserinfo(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)
	return c.JSON(user)
}

func lookupUsers(c *fiber.Ctx) error {
	var data struct {
		Emails []string `json:"emails" validate:"required,dive,email"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	userIds, err := services.ResolveUserIDs(c.Context(), data.Emails)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"user_ids": userIds,
	})
}
