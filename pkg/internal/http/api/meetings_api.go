package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meetlinkapp/meetlink/pkg/internal/http/exts"
	"github.com/meetlinkapp/meetlink/pkg/internal/models"
	"github.com/meetlinkapp/meetlink/pkg/internal/services"
)

func createMeeting(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)

	var data struct {
		Description  string     `json:"description" validate:"max=500"`
		StartsAt     *time.Time `json:"starts_at"`
		Participants []string   `json:"participants" validate:"dive,email"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	call, err := services.CreateMeeting(c.Context(), user, services.NewMeetingRequest{
		Description:       data.Description,
		StartsAt:          data.StartsAt,
		ParticipantEmails: data.Participants,
	})
	if err != nil {
		return mapServiceError(err)
	}

	res, err := meetingInvitation(call, data.StartsAt)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(res)
}

// meetingInvitation assembles the shareable links for a fresh call.
// The mailto date comes from the requested schedule, not the call's
// stored start time; a meeting started right away is announced without
// one.
func meetingInvitation(call models.Call, scheduledAt *time.Time) (fiber.Map, error) {
	link, err := services.MeetingLink(call.ID)
	if err != nil {
		return nil, err
	}

	return fiber.Map{
		"call":        call,
		"link":        link,
		"mailto_link": services.MailtoLink(link, scheduledAt, call.Description),
	}, nil
}

func getMeeting(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)
	meetingId := c.Params("meetingId")

	call, err := services.GetMeeting(c.Context(), meetingId)
	if err != nil {
		return mapServiceError(err)
	}
	if err := services.AuthorizeViewer(call, user); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(call)
}

func getMeetingParticipants(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)
	meetingId := c.Params("meetingId")

	call, err := services.GetMeeting(c.Context(), meetingId)
	if err != nil {
		return mapServiceError(err)
	}
	if err := services.AuthorizeViewer(call, user); err != nil {
		return mapServiceError(err)
	}

	participants, err := services.GetMeetingParticipants(c.Context(), call)
	if err != nil {
		return mapServiceError(err)
	}

	call.Participants = participants
	return c.JSON(call)
}

func endMeeting(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)
	meetingId := c.Params("meetingId")

	call, err := services.GetMeeting(c.Context(), meetingId)
	if err != nil {
		return mapServiceError(err)
	}
	if call.CreatedBy != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "only the meeting creator can end it")
	}

	call, err = services.EndMeeting(c.Context(), call)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(call)
}

func kickMeetingParticipant(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)
	meetingId := c.Params("meetingId")

	var data struct {
		Identity string `json:"identity" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	call, err := services.GetMeeting(c.Context(), meetingId)
	if err != nil {
		return mapServiceError(err)
	}
	if call.CreatedBy != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "only the meeting creator can kick participants")
	}

	if err := services.KickParticipant(c.Context(), call, data.Identity); err != nil {
		return mapServiceError(err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// leaveMeeting is the post-exit hook behind /meeting/<id>/left; it
// releases the viewer's live session if one remains.
func leaveMeeting(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Identity)
	meetingId := c.Params("meetingId")

	if session, ok := services.Sessions.Get(user.ID); ok && session.MeetingID() == meetingId {
		services.Sessions.Release(user.ID, session)
	}

	res := fiber.Map{"left": meetingId}
	if link, err := services.MeetingLeftLink(meetingId); err == nil {
		res["link"] = link
	}
	return c.JSON(res)
}
