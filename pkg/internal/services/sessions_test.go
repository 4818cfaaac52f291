package services

import (
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

type fakeTransport struct {
	joinErr   error
	joins     int
	micStates []bool
	camStates []bool
}

func (t *fakeTransport) Join() error {
	t.joins++
	return t.joinErr
}

func (t *fakeTransport) SetMicrophoneEnabled(enabled bool) error {
	t.micStates = append(t.micStates, enabled)
	return nil
}

func (t *fakeTransport) SetCameraEnabled(enabled bool) error {
	t.camStates = append(t.camStates, enabled)
	return nil
}

func authedViewer() models.Identity {
	return models.Identity{ID: "user_1", Name: "Alice"}
}

func openCall() models.Call {
	return models.Call{
		ID:        "call_1",
		Type:      models.CallTypeOpen,
		CreatedBy: "user_1",
		Members:   []models.CallMember{{UserID: "user_1", Role: models.RoleMember}},
	}
}

func TestSessionLoadingAndNotFound(t *testing.T) {
	session := NewSession("call_1", authedViewer(), &fakeTransport{})
	assert.Equal(t, models.StateLoading, session.State())

	session.ApplyCall(models.Call{}, false)
	assert.Equal(t, models.StateNotFound, session.State())
}

func TestSessionSetupIsDefaultPhase(t *testing.T) {
	session := NewSession("call_1", authedViewer(), &fakeTransport{})
	session.ApplyCall(openCall(), true)
	assert.Equal(t, models.StateSetup, session.State())
}

func TestSessionEndedIsTerminal(t *testing.T) {
	session := NewSession("call_1", authedViewer(), &fakeTransport{})

	call := openCall()
	call.EndedAt = lo.ToPtr(time.Now().Add(-time.Minute))
	call.StartsAt = lo.ToPtr(time.Now().Add(time.Hour))
	session.ApplyCall(call, true)
	assert.NoError(t, session.Join())

	// Ended wins over upcoming and setup regardless of other fields.
	assert.Equal(t, models.StateEnded, session.State())

	// No transition leaves the ended state, even a fresh snapshot
	// without an end time.
	session.ApplyCall(openCall(), true)
	assert.Equal(t, models.StateEnded, session.State())
}

func TestSessionForbiddenOnRestrictedCall(t *testing.T) {
	call := openCall()
	call.Type = models.CallTypeRestricted

	outsider := models.Identity{ID: "user_2", Name: "Mallory"}
	session := NewSession("call_1", outsider, &fakeTransport{})
	session.ApplyCall(call, true)
	assert.NoError(t, session.Join())

	// Completed setup does not override the membership gate.
	assert.Equal(t, models.StateForbidden, session.State())

	// Guests are never members of a restricted call.
	guest := NewSession("call_1", models.NewGuestIdentity(), &fakeTransport{})
	guest.ApplyCall(call, true)
	assert.Equal(t, models.StateForbidden, guest.State())

	member := NewSession("call_1", authedViewer(), &fakeTransport{})
	member.ApplyCall(call, true)
	assert.Equal(t, models.StateSetup, member.State())
}

func TestSessionUpcomingBoundaryIsStrict(t *testing.T) {
	now := time.Now()

	session := NewSession("call_1", authedViewer(), &fakeTransport{})
	session.now = func() time.Time { return now }

	call := openCall()
	call.StartsAt = lo.ToPtr(now)
	session.ApplyCall(call, true)
	// A start time exactly equal to now is not in the future.
	assert.Equal(t, models.StateSetup, session.State())

	call.StartsAt = lo.ToPtr(now.Add(time.Second))
	session.ApplyCall(call, true)
	assert.Equal(t, models.StateUpcoming, session.State())
}

func TestSessionJoinFlow(t *testing.T) {
	transport := &fakeTransport{}
	session := NewSession("call_1", authedViewer(), transport)
	session.ApplyCall(openCall(), true)

	assert.NoError(t, session.Join())
	assert.Equal(t, 1, transport.joins)
	assert.Equal(t, models.StateConnecting, session.State())

	session.SetConnectionState(models.ConnectionConnecting)
	assert.Equal(t, models.StateConnecting, session.State())

	session.SetConnectionState(models.ConnectionJoined)
	assert.Equal(t, models.StateInCall, session.State())

	session.SetConnectionState(models.ConnectionReconnecting)
	assert.Equal(t, models.StateConnecting, session.State())
}

func TestSessionJoinFailureKeepsSetup(t *testing.T) {
	transport := &fakeTransport{joinErr: errors.New("transport down")}
	session := NewSession("call_1", authedViewer(), transport)
	session.ApplyCall(openCall(), true)

	err := session.Join()
	var remoteErr *RemoteServiceError
	assert.True(t, errors.As(err, &remoteErr))

	// The setup flag only flips after the join request went out.
	assert.Equal(t, models.StateSetup, session.State())
}

func TestSessionJoinMutedTogglesBothDevices(t *testing.T) {
	transport := &fakeTransport{}
	session := NewSession("call_1", authedViewer(), transport)

	// The default applies on first mount: both devices enabled.
	assert.Equal(t, []bool{true}, transport.micStates)
	assert.Equal(t, []bool{true}, transport.camStates)

	session.SetJoinMuted(true)
	assert.Equal(t, []bool{true, false}, transport.micStates)
	assert.Equal(t, []bool{true, false}, transport.camStates)

	// Setting the same value again is not a change.
	session.SetJoinMuted(true)
	assert.Len(t, transport.micStates, 2)

	// Toggling twice restores the original enabled state.
	session.SetJoinMuted(false)
	assert.Equal(t, true, transport.micStates[len(transport.micStates)-1])
	assert.Equal(t, true, transport.camStates[len(transport.camStates)-1])
}

func TestSessionPermissionGate(t *testing.T) {
	session := NewSession("call_1", authedViewer(), &fakeTransport{})
	session.ApplyCall(openCall(), true)

	assert.True(t, session.NeedsPermissionPrompt())

	session.SetDevicePermissions(true, false)
	assert.True(t, session.NeedsPermissionPrompt())

	session.SetDevicePermissions(true, true)
	assert.False(t, session.NeedsPermissionPrompt())

	// The gate lives inside setup, not in the top-level state.
	assert.Equal(t, models.StateSetup, session.State())
}

func TestSessionStaleCompletionAfterClose(t *testing.T) {
	session := NewSession("call_1", authedViewer(), &fakeTransport{})
	session.Close()

	session.ApplyCall(openCall(), true)
	session.SetConnectionState(models.ConnectionJoined)

	// Inputs after close are dropped, so the snapshot never resolved.
	assert.Equal(t, models.StateLoading, session.State())
}

func TestSessionObserverPushesOnEveryInput(t *testing.T) {
	session := NewSession("call_1", authedViewer(), &fakeTransport{})

	var pushed []models.ViewState
	session.Observe(func(snapshot SessionSnapshot) {
		pushed = append(pushed, snapshot.State)
	})

	session.ApplyCall(openCall(), true)
	assert.NoError(t, session.Join())
	session.SetConnectionState(models.ConnectionJoined)

	assert.Equal(t, []models.ViewState{
		models.StateSetup,
		models.StateConnecting,
		models.StateInCall,
	}, pushed)
}

func TestSessionObserverCarriesSetupSubState(t *testing.T) {
	session := NewSession("call_1", authedViewer(), &fakeTransport{})

	var last SessionSnapshot
	session.Observe(func(snapshot SessionSnapshot) {
		last = snapshot
	})

	session.ApplyCall(openCall(), true)
	assert.True(t, last.NeedsPermission)
	assert.False(t, last.JoinMuted)

	session.SetJoinMuted(true)
	assert.True(t, last.JoinMuted)

	session.SetDevicePermissions(true, true)
	assert.False(t, last.NeedsPermission)
	assert.Equal(t, models.StateSetup, last.State)
}
