package services

import (
	"context"
	"sync"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"

	"github.com/meetlinkapp/meetlink/pkg/internal/config"
)

// RoomService is the slice of the video service's room API this system
// consumes. *lksdk.RoomServiceClient satisfies it; tests swap in fakes.
type RoomService interface {
	CreateRoom(ctx context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error)
	ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error)
	UpdateRoomMetadata(ctx context.Context, req *livekit.UpdateRoomMetadataRequest) (*livekit.Room, error)
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
	ListParticipants(ctx context.Context, req *livekit.ListParticipantsRequest) (*livekit.ListParticipantsResponse, error)
	RemoveParticipant(ctx context.Context, req *livekit.RoomParticipantIdentity) (*livekit.RemoveParticipantResponse, error)
}

var (
	lkMutex sync.Mutex

	// Lk is the live room client. Left nil until first use so that
	// missing credentials surface as ConfigurationError from the
	// action that needed them, not at startup.
	Lk RoomService
)

func RoomClient() (RoomService, error) {
	lkMutex.Lock()
	defer lkMutex.Unlock()

	if Lk != nil {
		return Lk, nil
	}

	endpoint, err := config.VideoEndpoint()
	if err != nil {
		return nil, err
	}
	key, err := config.VideoAPIKey()
	if err != nil {
		return nil, err
	}
	secret, err := config.VideoAPISecret()
	if err != nil {
		return nil, err
	}

	Lk = lksdk.NewRoomServiceClient("https://"+endpoint, key, secret)
	return Lk, nil
}
