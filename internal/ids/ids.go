// Package ids defines the identifier types shared across the engine:
// client, session, and pane identifiers. Session and client IDs are
// backed by google/uuid (already random, already [16]byte-shaped, so
// they drop straight into the [16]byte ClientID/SessionID fields of
// the protocol's attach messages).
package ids

import "github.com/google/uuid"

// ClientID identifies one attached client connection.
type ClientID = uuid.UUID

// SessionID identifies one server-side session (one Screen).
type SessionID = uuid.UUID

// NewClientID returns a fresh random client identifier.
func NewClientID() ClientID { return uuid.New() }

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID { return uuid.New() }

// PaneID identifies a pane within a tab. Terminal panes and plugin
// panes are drawn from the same id space; Kind distinguishes them so
// a Tab's pane map can hold both without colliding.
type PaneID struct {
	UUID uuid.UUID
	Kind PaneKind
}

// PaneKind distinguishes the two pane backends sharing the PaneID space.
type PaneKind uint8

const (
	PaneKindTerminal PaneKind = iota
	PaneKindPlugin
)

// NewPaneID returns a fresh random pane identifier of the given kind.
func NewPaneID(kind PaneKind) PaneID {
	return PaneID{UUID: uuid.New(), Kind: kind}
}

func (p PaneID) String() string {
	return p.UUID.String()
}
