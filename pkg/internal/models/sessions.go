package models

import jsoniter "github.com/json-iterator/go"

// ViewState is the phase of the meeting screen a viewer should see.
type ViewState = string

const (
	StateLoading    = ViewState("loading")
	StateNotFound   = ViewState("not_found")
	StateForbidden  = ViewState("forbidden")
	StateEnded      = ViewState("ended")
	StateUpcoming   = ViewState("upcoming")
	StateSetup      = ViewState("setup")
	StateConnecting = ViewState("connecting")
	StateInCall     = ViewState("in_call")
)

// ConnectionState mirrors what the client's transport layer reports
// about its media connection.
type ConnectionState = string

const (
	ConnectionIdle         = ConnectionState("idle")
	ConnectionConnecting   = ConnectionState("connecting")
	ConnectionJoined       = ConnectionState("joined")
	ConnectionReconnecting = ConnectionState("reconnecting")
	ConnectionFailed       = ConnectionState("failed")
)

// StreamPackage is the frame exchanged over the session gateway, in
// both directions.
type StreamPackage struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

func (v StreamPackage) Marshal() []byte {
	raw, _ := jsoniter.Marshal(v)
	return raw
}

func StreamPackageFromError(err error) StreamPackage {
	return StreamPackage{
		Action:  "error",
		Message: err.Error(),
	}
}

func FitStruct(src any, out any) {
	raw, _ := jsoniter.Marshal(src)
	_ = jsoniter.Unmarshal(raw, out)
}
