package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityType identifies which level of the registry hierarchy a change touches.
type EntityType string

const (
	EntityProduct       EntityType = "product"
	EntityDomain        EntityType = "domain"
	EntityContext       EntityType = "context"
	EntitySchema        EntityType = "schema"
	EntitySchemaVersion EntityType = "schema_version"

	// EntityVersionAlias is the short form some producers emit for schema versions.
	EntityVersionAlias EntityType = "version"
)

// Operation is the mutation kind carried by a change message.
type Operation string

const (
	OpCreated Operation = "created"
	OpUpdated Operation = "updated"
	OpDeleted Operation = "deleted"
)

// MessageSource identifies the kind of actor that originated a change.
type MessageSource string

const (
	SourceClient        MessageSource = "client"
	SourceServer        MessageSource = "server"
	SourceDurableObject MessageSource = "durable-object"
)

// TimestampLayout is the wire format for message timestamps: ISO-8601 with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ChangeMessage is the wire unit broadcast to every session in a room when an
// entity is created, updated or deleted.
//
// Type is "{entity}_{operation}"; EntityType is redundant with it and the two
// must agree, otherwise the message is malformed and dropped whole.
type ChangeMessage struct {
	Type       string         `json:"type"`
	EntityID   string         `json:"entityId"`
	EntityType string         `json:"entityType"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  string         `json:"timestamp"`
	Source     MessageSource  `json:"source,omitempty"`
	UserID     string         `json:"userId,omitempty"`
}

// NewChangeMessage builds a well-formed message for the given entity and
// operation, stamped with the current time.
func NewChangeMessage(entity EntityType, op Operation, entityID string, data map[string]any) ChangeMessage {
	return ChangeMessage{
		Type:       fmt.Sprintf("%s_%s", entity, op),
		EntityID:   entityID,
		EntityType: string(entity),
		Data:       data,
		Timestamp:  time.Now().UTC().Format(TimestampLayout),
	}
}

// RoomID forms the broadcast room identifier for a tenant's registry. One
// logical room exists per (tenant, registry) pair.
func RoomID(tenantID, registryID string) string {
	return fmt.Sprintf("%s-%s", tenantID, registryID)
}

// canonicalEntity folds the "version" alias into "schema_version".
func canonicalEntity(raw string) (EntityType, bool) {
	switch EntityType(raw) {
	case EntityProduct, EntityDomain, EntityContext, EntitySchema, EntitySchemaVersion:
		return EntityType(raw), true
	case EntityVersionAlias:
		return EntitySchemaVersion, true
	default:
		return "", false
	}
}

// splitType breaks "{entity}_{operation}" into its parts.
func splitType(msgType string) (EntityType, Operation, bool) {
	idx := strings.LastIndex(msgType, "_")
	if idx <= 0 || idx == len(msgType)-1 {
		return "", "", false
	}

	op := Operation(msgType[idx+1:])
	switch op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return "", "", false
	}

	entity, ok := canonicalEntity(msgType[:idx])
	if !ok {
		return "", "", false
	}
	return entity, op, true
}

// Entity returns the canonical entity type derived from the message's Type
// field, or false when the prefix is not a recognized entity.
func (m *ChangeMessage) Entity() (EntityType, bool) {
	entity, _, ok := splitType(m.Type)
	return entity, ok
}

// Operation returns the operation suffix of the message's Type field.
func (m *ChangeMessage) Operation() (Operation, bool) {
	_, op, ok := splitType(m.Type)
	return op, ok
}

// IsWellFormed reports whether the message is structurally valid: the Type
// parses into a known entity and operation, the redundant EntityType field
// agrees with the Type prefix, and the timestamp parses as an instant.
// Malformed messages must be dropped, never partially applied.
func (m *ChangeMessage) IsWellFormed() bool {
	entity, _, ok := splitType(m.Type)
	if !ok {
		return false
	}

	declared, ok := canonicalEntity(m.EntityType)
	if !ok || declared != entity {
		return false
	}

	if _, err := time.Parse(time.RFC3339, m.Timestamp); err != nil {
		return false
	}

	return true
}

// DataString returns a string field from the opaque data payload, empty when
// absent or not a string.
func (m *ChangeMessage) DataString(key string) string {
	if m.Data == nil {
		return ""
	}
	if s, ok := m.Data[key].(string); ok {
		return s
	}
	return ""
}
