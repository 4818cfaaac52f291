package models

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/livekit/protocol/livekit"
)

type CallType = string

const (
	// CallTypeOpen lets anyone with the meeting link join.
	CallTypeOpen = CallType("open")
	// CallTypeRestricted limits joining to the member list.
	CallTypeRestricted = CallType("restricted")
)

// RoleMember is the only member role; there is no role hierarchy.
const RoleMember = "member"

type CallMember struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Call is a transient view over a room owned by the video service.
// Everything beyond the id lives in the room's custom metadata; nothing
// is stored locally.
type Call struct {
	ID          string       `json:"id"`
	Type        CallType     `json:"type"`
	Description string       `json:"description,omitempty"`
	CreatedBy   string       `json:"created_by"`
	StartsAt    *time.Time   `json:"starts_at,omitempty"`
	EndedAt     *time.Time   `json:"ended_at,omitempty"`
	Members     []CallMember `json:"members"`

	Participants []*livekit.ParticipantInfo `json:"participants,omitempty"`
}

func (v Call) Restricted() bool {
	return v.Type == CallTypeRestricted
}

func (v Call) HasMember(userId string) bool {
	for _, member := range v.Members {
		if member.UserID == userId {
			return true
		}
	}
	return false
}

func (v Call) Metadata() CallMetadata {
	return CallMetadata{
		Type:        v.Type,
		Description: v.Description,
		CreatedBy:   v.CreatedBy,
		StartsAt:    v.StartsAt,
		EndedAt:     v.EndedAt,
		Members:     v.Members,
	}
}

// CallMetadata is the wire form kept in the room metadata blob.
type CallMetadata struct {
	Type        CallType     `json:"type"`
	Description string       `json:"description,omitempty"`
	CreatedBy   string       `json:"created_by"`
	StartsAt    *time.Time   `json:"starts_at,omitempty"`
	EndedAt     *time.Time   `json:"ended_at,omitempty"`
	Members     []CallMember `json:"members"`
}

func (v CallMetadata) Marshal() string {
	raw, _ := jsoniter.MarshalToString(v)
	return raw
}

func ParseCallMetadata(raw string) (CallMetadata, error) {
	var metadata CallMetadata
	err := jsoniter.UnmarshalFromString(raw, &metadata)
	return metadata, err
}

func CallFromRoom(room *livekit.Room) (Call, error) {
	metadata, err := ParseCallMetadata(room.Metadata)
	if err != nil {
		return Call{}, err
	}
	return Call{
		ID:          room.Name,
		Type:        metadata.Type,
		Description: metadata.Description,
		CreatedBy:   metadata.CreatedBy,
		StartsAt:    metadata.StartsAt,
		EndedAt:     metadata.EndedAt,
		Members:     metadata.Members,
	}, nil
}
