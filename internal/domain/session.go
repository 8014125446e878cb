package domain

import "strings"

// SessionMode tells how an actor's usage is recorded.
type SessionMode string

const (
	SessionRemote    SessionMode = "remote"
	SessionLocalDemo SessionMode = "local-demo"
)

// ActorSession identifies the current actor. It is resolved once and never mutated.
type ActorSession struct {
	Mode     SessionMode
	Identity string
	// DemoID keys local persisted state for demo sessions. It never reaches the remote store.
	DemoID string
}

// RemoteSession builds a session for an authenticated account.
func RemoteSession(identity string) ActorSession {
	return ActorSession{Mode: SessionRemote, Identity: strings.TrimSpace(identity)}
}

// DemoSession builds a local demo session keyed by demoID.
func DemoSession(demoID string) ActorSession {
	return ActorSession{Mode: SessionLocalDemo, DemoID: strings.TrimSpace(demoID)}
}
