package api

import (
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/meetlinkapp/meetlink/pkg/internal/config"
	"github.com/meetlinkapp/meetlink/pkg/internal/http/exts"
	"github.com/meetlinkapp/meetlink/pkg/internal/services"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Use(exts.IdentityMiddleware).Name("API")
	{
		api.Get("/users/me", getUserinfo)
		api.Post("/users/lookup", exts.EnsureAuthenticated, lookupUsers)

		api.Post("/calls/token", exts.EnsureAuthenticated, exchangeVideoToken)

		meetings := api.Group("/meetings").Name("Meetings API")
		{
			meetings.Post("/", exts.EnsureAuthenticated, createMeeting)
			meetings.Get("/:meetingId", getMeeting)
			meetings.Get("/:meetingId/participants", getMeetingParticipants)
			meetings.Post("/:meetingId/end", exts.EnsureAuthenticated, endMeeting)
			meetings.Delete("/:meetingId/participants", exts.EnsureAuthenticated, kickMeetingParticipant)
			meetings.Post("/:meetingId/leave", leaveMeeting)
			meetings.Get("/:meetingId/stream", websocket.New(streamMeeting))
		}
	}
}

// MapPages mounts the inbound link surface: the meeting link itself
// and the post-exit link.
func MapPages(app *fiber.App) {
	pages := app.Group("/meeting").Use(exts.IdentityMiddleware).Name("Meeting Links")
	{
		pages.Get("/:meetingId", getMeeting)
		pages.Get("/:meetingId/left", leaveMeeting)
	}
}

// mapServiceError translates the service taxonomy into transport
// statuses. Configuration and downstream failures surface as generic
// failures; nothing here retries.
func mapServiceError(err error) error {
	var confErr *config.ConfigurationError
	var remoteErr *services.RemoteServiceError

	switch {
	case errors.Is(err, services.ErrCallNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrCallForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.As(err, &confErr):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	case errors.As(err, &remoteErr):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
