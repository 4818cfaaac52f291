package services

import (
	"sync"
	"time"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

// Transport is the client-side media layer a session drives. Join and
// the device switches only issue requests; completion comes back later
// as a connection-state input.
type Transport interface {
	Join() error
	SetMicrophoneEnabled(enabled bool) error
	SetCameraEnabled(enabled bool) error
}

// SessionSnapshot is what the observer receives on every input change:
// the top-level phase plus the setup sub-state the screen renders
// inside it.
type SessionSnapshot struct {
	State           models.ViewState `json:"state"`
	JoinMuted       bool             `json:"join_muted"`
	NeedsPermission bool             `json:"needs_permission"`
}

// Session derives the meeting screen's view state for one viewer from
// the call state pushed by the video service and the viewer's own
// actions. All inputs funnel through the mutex, the stand-in for the
// browser's single-threaded event loop; every change re-evaluates the
// state and notifies the observer.
type Session struct {
	mutex sync.Mutex

	meetingId string
	viewer    models.Identity
	transport Transport
	observer  func(SessionSnapshot)

	loading bool
	found   bool
	call    models.Call

	setupComplete bool
	joinMuted     bool
	micPermission bool
	camPermission bool
	connection    models.ConnectionState

	ended    bool
	closed   bool
	lastSeen time.Time

	now func() time.Time
}

func NewSession(meetingId string, viewer models.Identity, transport Transport) *Session {
	session := &Session{
		meetingId:  meetingId,
		viewer:     viewer,
		transport:  transport,
		loading:    true,
		connection: models.ConnectionIdle,
		lastSeen:   time.Now(),
		now:        time.Now,
	}

	// The join-muted default applies to both capture devices up front,
	// same as every later toggle.
	session.applyJoinMuted()

	return session
}

func (s *Session) MeetingID() string {
	return s.meetingId
}

func (s *Session) Viewer() models.Identity {
	return s.viewer
}

// Observe registers the single listener pushed on every state change.
func (s *Session) Observe(observer func(SessionSnapshot)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.observer = observer
}

// State evaluates the transition rules in priority order.
func (s *Session) State() models.ViewState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.reduce()
}

func (s *Session) reduce() models.ViewState {
	// Ended is terminal; nothing leaves it.
	if s.ended {
		return models.StateEnded
	}
	if s.loading {
		return models.StateLoading
	}
	if !s.found {
		return models.StateNotFound
	}
	if s.call.Restricted() && (!s.viewer.Authenticated() || !s.call.HasMember(s.viewer.ID)) {
		return models.StateForbidden
	}
	if s.call.EndedAt != nil {
		s.ended = true
		return models.StateEnded
	}
	// Boundary is strict: a start time equal to now is not upcoming.
	if s.call.StartsAt != nil && s.call.StartsAt.After(s.now()) {
		return models.StateUpcoming
	}
	if !s.setupComplete {
		return models.StateSetup
	}
	if s.connection != models.ConnectionJoined {
		return models.StateConnecting
	}
	return models.StateInCall
}

func (s *Session) notify() {
	if s.observer != nil {
		s.observer(s.snapshot())
	}
}

func (s *Session) snapshot() SessionSnapshot {
	return SessionSnapshot{
		State:           s.reduce(),
		JoinMuted:       s.joinMuted,
		NeedsPermission: !s.micPermission || !s.camPermission,
	}
}

// ApplyCall feeds the call-resolution completion in. A completion
// arriving after Close is dropped, not an error.
func (s *Session) ApplyCall(call models.Call, found bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return
	}

	s.loading = false
	s.found = found
	s.call = call
	s.touch()
	s.notify()
}

// SetConnectionState feeds the transport layer's own signal in.
func (s *Session) SetConnectionState(state models.ConnectionState) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return
	}

	s.connection = state
	s.touch()
	s.notify()
}

// SetDevicePermissions records whether the browser granted each
// capture device. Inside setup this gates the preview behind the
// permission prompt; it is not a top-level state.
func (s *Session) SetDevicePermissions(microphone, camera bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return
	}

	s.micPermission = microphone
	s.camPermission = camera
	s.touch()
	s.notify()
}

func (s *Session) NeedsPermissionPrompt() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return !s.micPermission || !s.camPermission
}

// Join issues the join request first and only then flips the setup
// flag, so the screen never claims the call was joined before the
// request went out. The join itself completes asynchronously through
// SetConnectionState.
func (s *Session) Join() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}

	if err := s.transport.Join(); err != nil {
		return &RemoteServiceError{Op: "call join", Err: err}
	}
	s.setupComplete = true
	s.touch()
	s.notify()
	return nil
}

// SetJoinMuted re-applies enable/disable to both capture devices
// together on every change; there is no per-device default.
func (s *Session) SetJoinMuted(muted bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed || s.joinMuted == muted {
		return
	}

	s.joinMuted = muted
	s.applyJoinMuted()
	s.touch()
	s.notify()
}

func (s *Session) applyJoinMuted() {
	if s.transport == nil {
		return
	}
	_ = s.transport.SetMicrophoneEnabled(!s.joinMuted)
	_ = s.transport.SetCameraEnabled(!s.joinMuted)
}

func (s *Session) JoinMuted() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.joinMuted
}

// Close detaches the session from its screen. Later completions become
// no-ops.
func (s *Session) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	s.observer = nil
}

func (s *Session) Closed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}

func (s *Session) IdleSince() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastSeen
}
