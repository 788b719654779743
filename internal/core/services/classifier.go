package services

import (
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

// Classification is deliberately pure: no connection, no clock, no state.
// Everything here can be exercised against a fixture table.

// IsActionable reports whether a message should trigger reconciliation for the
// given local actor. Self-originated messages are never actionable; the local
// mutation already updated local state.
func IsActionable(msg *domain.ChangeMessage, localUserID string) bool {
	if msg == nil {
		return false
	}
	return msg.UserID == "" || msg.UserID != localUserID
}

// IsVersionUpdate reports whether the message is an update to a schema
// version, in either the long or short entity spelling.
func IsVersionUpdate(msg *domain.ChangeMessage) bool {
	if msg == nil {
		return false
	}
	entity, ok := msg.Entity()
	if !ok || entity != domain.EntitySchemaVersion {
		return false
	}
	op, ok := msg.Operation()
	return ok && op == domain.OpUpdated
}

// SameVersion reports whether the message targets the given version ID.
// Only meaningful when IsVersionUpdate holds.
func SameVersion(msg *domain.ChangeMessage, versionID string) bool {
	return msg != nil && versionID != "" && msg.EntityID == versionID
}

// SameSchema reports whether the message's payload references the given
// schema ID.
func SameSchema(msg *domain.ChangeMessage, schemaID string) bool {
	return msg != nil && schemaID != "" && msg.DataString("schemaId") == schemaID
}

// SameSemanticVersion reports whether the message's payload carries the given
// semantic version string.
func SameSemanticVersion(msg *domain.ChangeMessage, semanticVersion string) bool {
	return msg != nil && semanticVersion != "" && msg.DataString("semanticVersion") == semanticVersion
}
