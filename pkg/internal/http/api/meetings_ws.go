package api

import (
	"context"
	"errors"

	"github.com/gofiber/contrib/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
	"github.com/meetlinkapp/meetlink/pkg/internal/services"
)

// wsTransport relays media-layer requests to the client over the
// session stream; the client's own transport executes them and reports
// completion back through connection.state inputs.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Join() error {
	return t.conn.WriteMessage(websocket.TextMessage, models.StreamPackage{
		Action: "transport.join",
	}.Marshal())
}

func (t *wsTransport) SetMicrophoneEnabled(enabled bool) error {
	return t.conn.WriteMessage(websocket.TextMessage, models.StreamPackage{
		Action:  "devices.microphone",
		Payload: map[string]any{"enabled": enabled},
	}.Marshal())
}

func (t *wsTransport) SetCameraEnabled(enabled bool) error {
	return t.conn.WriteMessage(websocket.TextMessage, models.StreamPackage{
		Action:  "devices.camera",
		Payload: map[string]any{"enabled": enabled},
	}.Marshal())
}

func pushViewState(c *websocket.Conn, snapshot services.SessionSnapshot) {
	_ = c.WriteMessage(websocket.TextMessage, models.StreamPackage{
		Action: "state",
		Payload: map[string]any{
			"state": snapshot.State,
			"setup": map[string]any{
				"join_muted":       snapshot.JoinMuted,
				"needs_permission": snapshot.NeedsPermission,
			},
		},
	}.Marshal())
}

func streamMeeting(c *websocket.Conn) {
	user := c.Locals("user").(models.Identity)
	meetingId := c.Params("meetingId")

	// Push session
	session := services.Sessions.Acquire(meetingId, user, &wsTransport{conn: c})
	session.Observe(func(snapshot services.SessionSnapshot) {
		pushViewState(c, snapshot)
	})
	pushViewState(c, services.SessionSnapshot{
		State:           session.State(),
		JoinMuted:       session.JoinMuted(),
		NeedsPermission: session.NeedsPermissionPrompt(),
	})

	// Resolve the call. A missing room is a view state, not an error;
	// a downstream failure is reported as a generic failure notice and
	// recovery stays user-initiated.
	call, err := services.GetMeeting(context.Background(), meetingId)
	switch {
	case err == nil:
		session.ApplyCall(call, true)
	case errors.Is(err, services.ErrCallNotFound):
		session.ApplyCall(models.Call{}, false)
	default:
		log.Warn().Err(err).Str("meeting", meetingId).Msg("Unable to resolve call for meeting session...")
		_ = c.WriteMessage(websocket.TextMessage, models.StreamPackageFromError(err).Marshal())
	}

	// Event loop
	var messageType int
	var packet []byte

	for {
		if messageType, packet, err = c.ReadMessage(); err != nil {
			break
		}

		// A fresh frame every pass; a command without a payload must not
		// inherit the previous one's.
		var pack models.StreamPackage
		if err := jsoniter.Unmarshal(packet, &pack); err != nil {
			_ = c.WriteMessage(messageType, models.StreamPackage{
				Action:  "error",
				Message: "unable to unmarshal your command, requires json request",
			}.Marshal())
			continue
		}

		switch pack.Action {
		case "setup.join":
			if err := session.Join(); err != nil {
				_ = c.WriteMessage(messageType, models.StreamPackageFromError(err).Marshal())
			}
		case "setup.mute":
			var req struct {
				Muted bool `json:"muted"`
			}
			models.FitStruct(pack.Payload, &req)
			session.SetJoinMuted(req.Muted)
		case "devices.permission":
			var req struct {
				Microphone bool `json:"microphone"`
				Camera     bool `json:"camera"`
			}
			models.FitStruct(pack.Payload, &req)
			session.SetDevicePermissions(req.Microphone, req.Camera)
		case "connection.state":
			var req struct {
				State models.ConnectionState `json:"state"`
			}
			models.FitStruct(pack.Payload, &req)
			session.SetConnectionState(req.State)
		default:
			_ = c.WriteMessage(messageType, models.StreamPackage{
				Action:  "error",
				Message: "command not found",
			}.Marshal())
		}
	}

	// Pop session
	services.Sessions.Release(user.ID, session)
}
