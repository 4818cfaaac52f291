package services

import (
	"context"
	"time"

	"github.com/livekit/protocol/livekit"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

// DoAutoSessionCleanup sweeps meeting sessions whose screen went away
// without a leave hook, such as a closed laptop lid.
func DoAutoSessionCleanup() {
	maxIdle := viper.GetDuration("calling.session_max_idle")
	if maxIdle <= 0 {
		maxIdle = 2 * time.Hour
	}

	log.Debug().Dur("max_idle", maxIdle).Msg("Now cleaning up stale meeting sessions...")
	count := Sessions.CleanupStale(maxIdle)
	log.Debug().Int("affected", count).Msg("Clean up stale meeting sessions accomplished.")
}

// DoAutoRoomCleanup deletes rooms whose calls ended long enough ago
// that no late viewer still needs the ended screen.
func DoAutoRoomCleanup() {
	retention := viper.GetDuration("calling.ended_room_retention")
	if retention <= 0 {
		retention = 24 * time.Hour
	}

	client, err := RoomClient()
	if err != nil {
		log.Debug().Err(err).Msg("Skipping ended room cleanup, video service is not configured...")
		return
	}

	res, err := client.ListRooms(context.Background(), &livekit.ListRoomsRequest{})
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when listing rooms for cleanup...")
		return
	}

	deadline := time.Now().Add(-retention)
	var count int
	for _, room := range res.Rooms {
		metadata, err := models.ParseCallMetadata(room.Metadata)
		if err != nil || metadata.EndedAt == nil || metadata.EndedAt.After(deadline) {
			continue
		}
		if _, err := client.DeleteRoom(context.Background(), &livekit.DeleteRoomRequest{Room: room.Name}); err != nil {
			log.Error().Err(err).Str("room", room.Name).Msg("Unable to delete ended room...")
			continue
		}
		count++
	}
	log.Debug().Int("affected", count).Msg("Clean up ended rooms accomplished.")
}
