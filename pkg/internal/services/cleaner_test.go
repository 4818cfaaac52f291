package services

import (
	"testing"
	"time"

	"github.com/livekit/protocol/livekit"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

func endedRoom(name string, endedAt *time.Time) *livekit.Room {
	metadata := models.CallMetadata{
		Type:      models.CallTypeOpen,
		CreatedBy: "user_1",
		EndedAt:   endedAt,
	}
	return &livekit.Room{Name: name, Metadata: metadata.Marshal()}
}

func TestDoAutoRoomCleanupDeletesLongEndedRoomsOnly(t *testing.T) {
	fake := useFakeRoomService(t)
	viper.Set("calling.ended_room_retention", "24h")
	t.Cleanup(viper.Reset)

	fake.rooms["call_old"] = endedRoom("call_old", lo.ToPtr(time.Now().Add(-48*time.Hour)))
	fake.rooms["call_fresh"] = endedRoom("call_fresh", lo.ToPtr(time.Now().Add(-time.Hour)))
	fake.rooms["call_live"] = endedRoom("call_live", nil)

	DoAutoRoomCleanup()

	assert.NotContains(t, fake.rooms, "call_old")
	assert.Contains(t, fake.rooms, "call_fresh")
	assert.Contains(t, fake.rooms, "call_live")
}

func TestDoAutoRoomCleanupSkipsWhenUnconfigured(t *testing.T) {
	viper.Reset()

	// No client and no credentials; the sweep is a no-op rather than a
	// panic from an unconfigured video service.
	DoAutoRoomCleanup()
}
