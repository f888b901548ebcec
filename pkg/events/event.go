package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	NoteCreated       = "NOTE_CREATED"
	NoteUpdated       = "NOTE_UPDATED"
	NoteTrashed       = "NOTE_TRASHED"
	NoteRestored      = "NOTE_RESTORED"
	NotePurged        = "NOTE_PURGED"
	AttachmentAdded   = "ATTACHMENT_ADDED"
	AttachmentRemoved = "ATTACHMENT_REMOVED"

	CollectionCreated   = "COLLECTION_CREATED"
	CollectionUpdated   = "COLLECTION_UPDATED"
	CollectionDeleted   = "COLLECTION_DELETED"
	CollectionReordered = "COLLECTION_REORDERED"
	CollectionMoved     = "COLLECTION_MOVED"

	StoragePathChanged = "STORAGE_PATH_CHANGED"
)

// ChangeEvent reports one mutation of the entity store. An empty UserId
// addresses every connected user.
type ChangeEvent struct {
	Type       string    `json:"type"`
	UserId     string    `json:"userId"`
	Kind       string    `json:"kind"`
	EntityId   string    `json:"entityId,omitempty"`
	Version    int       `json:"version,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewChangeEvent(eventType, userId, kind, entityId string) ChangeEvent {
	return ChangeEvent{
		Type:       eventType,
		UserId:     userId,
		Kind:       kind,
		EntityId:   entityId,
		OccurredAt: time.Now().UTC(),
	}
}

func (e ChangeEvent) WithVersion(version int) ChangeEvent {
	e.Version = version
	return e
}

func (e ChangeEvent) EventType() string {
	return e.Type
}

func (e ChangeEvent) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"type":       e.Type,
		"userId":     e.UserId,
		"kind":       e.Kind,
		"occurredAt": e.OccurredAt,
	}
	if e.EntityId != "" {
		payload["entityId"] = e.EntityId
	}
	if e.Version > 0 {
		payload["version"] = e.Version
	}
	return payload
}

func (e ChangeEvent) Timestamp() time.Time {
	return e.OccurredAt
}
