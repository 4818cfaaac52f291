package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"

	"github.com/meetlinkapp/meetlink/pkg/internal/http/exts"
	"github.com/meetlinkapp/meetlink/pkg/internal/models"
	"github.com/meetlinkapp/meetlink/pkg/internal/services"
)

func exchangeVideoToken(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)

	// The room grant is optional; a bare request mints an identity-only
	// token.
	var data struct {
		MeetingID string `json:"meeting_id"`
	}
	if len(c.Body()) > 0 {
		if err := exts.BindAndValidate(c, &data); err != nil {
			return err
		}
	}

	tk, err := services.EncodeVideoToken(user, data.MeetingID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"token":    tk,
		"endpoint": viper.GetString("calling.endpoint"),
	})
}
