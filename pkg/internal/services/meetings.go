package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/livekit"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

type NewMeetingRequest struct {
	Description       string
	StartsAt          *time.Time
	ParticipantEmails []string
}

// BuildMemberList resolves participant emails and merges in the
// creator, deduplicated by user id. The creator is always on the list,
// so a restricted call can never lock out its own founder.
func BuildMemberList(creator models.Identity, userIds []string) []models.CallMember {
	members := lo.Map(userIds, func(id string, idx int) models.CallMember {
		return models.CallMember{UserID: id, Role: models.RoleMember}
	})
	members = append(members, models.CallMember{UserID: creator.ID, Role: models.RoleMember})
	return lo.UniqBy(members, func(member models.CallMember) string {
		return member.UserID
	})
}

// CreateMeeting creates exactly one call resource on the video service.
// The call is restricted iff a non-empty participant list was supplied;
// an unscheduled meeting starts now. The scheduled-time lower bound is
// enforced by the input control, not here.
func CreateMeeting(ctx context.Context, creator models.Identity, request NewMeetingRequest) (models.Call, error) {
	if !creator.Authenticated() {
		return models.Call{}, ErrUnauthenticated
	}

	emails := lo.Filter(lo.Map(request.ParticipantEmails, func(email string, idx int) string {
		return strings.TrimSpace(email)
	}), func(email string, idx int) bool {
		return len(email) > 0
	})

	callType := models.CallTypeOpen
	if len(emails) > 0 {
		callType = models.CallTypeRestricted
	}

	userIds, err := ResolveUserIDs(ctx, emails)
	if err != nil {
		return models.Call{}, err
	}

	startsAt := time.Now()
	if request.StartsAt != nil {
		startsAt = *request.StartsAt
	}

	call := models.Call{
		ID:          uuid.NewString(),
		Type:        callType,
		Description: request.Description,
		CreatedBy:   creator.ID,
		StartsAt:    lo.ToPtr(startsAt),
		Members:     BuildMemberList(creator, userIds),
	}

	client, err := RoomClient()
	if err != nil {
		return models.Call{}, err
	}

	_, err = client.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            call.ID,
		EmptyTimeout:    viper.GetUint32("calling.empty_timeout_duration"),
		MaxParticipants: viper.GetUint32("calling.max_participants"),
		Metadata:        call.Metadata().Marshal(),
	})
	if err != nil {
		return models.Call{}, &RemoteServiceError{Op: "room creation", Err: err}
	}

	return call, nil
}

// GetMeeting reads the call back from the video service. A room that
// no longer exists maps to ErrCallNotFound, a terminal user-facing
// condition rather than a fault.
func GetMeeting(ctx context.Context, id string) (models.Call, error) {
	client, err := RoomClient()
	if err != nil {
		return models.Call{}, err
	}

	res, err := client.ListRooms(ctx, &livekit.ListRoomsRequest{
		Names: []string{id},
	})
	if err != nil {
		return models.Call{}, &RemoteServiceError{Op: "room lookup", Err: err}
	}
	if len(res.Rooms) == 0 {
		return models.Call{}, ErrCallNotFound
	}

	call, err := models.CallFromRoom(res.Rooms[0])
	if err != nil {
		return models.Call{}, &RemoteServiceError{Op: "room lookup", Err: err}
	}
	return call, nil
}

// AuthorizeViewer gates a restricted call on its member list. Open
// calls admit anyone holding the link, guests included.
func AuthorizeViewer(call models.Call, viewer models.Identity) error {
	if !call.Restricted() {
		return nil
	}
	if !viewer.Authenticated() || !call.HasMember(viewer.ID) {
		return ErrCallForbidden
	}
	return nil
}

func GetMeetingParticipants(ctx context.Context, call models.Call) ([]*livekit.ParticipantInfo, error) {
	client, err := RoomClient()
	if err != nil {
		return nil, err
	}

	res, err := client.ListParticipants(ctx, &livekit.ListParticipantsRequest{
		Room: call.ID,
	})
	if err != nil {
		return nil, &RemoteServiceError{Op: "participant listing", Err: err}
	}
	return res.Participants, nil
}

// EndMeeting records the end time in the room metadata. The room lives
// on until the video service reaps it, so late viewers still see the
// ended screen instead of a dead link.
func EndMeeting(ctx context.Context, call models.Call) (models.Call, error) {
	call.EndedAt = lo.ToPtr(time.Now())

	client, err := RoomClient()
	if err != nil {
		return call, err
	}

	if _, err := client.UpdateRoomMetadata(ctx, &livekit.UpdateRoomMetadataRequest{
		Room:     call.ID,
		Metadata: call.Metadata().Marshal(),
	}); err != nil {
		return call, &RemoteServiceError{Op: "room update", Err: err}
	}

	return call, nil
}

func KickParticipant(ctx context.Context, call models.Call, identity string) error {
	client, err := RoomClient()
	if err != nil {
		return err
	}

	if _, err := client.RemoveParticipant(ctx, &livekit.RoomParticipantIdentity{
		Room:     call.ID,
		Identity: identity,
	}); err != nil {
		log.Warn().Err(err).Str("room", call.ID).Msg("Unable to remove participant at video service side...")
		return &RemoteServiceError{Op: "participant removal", Err: err}
	}
	return nil
}
