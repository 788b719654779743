package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeMessage(t *testing.T) {
	msg := NewChangeMessage(EntitySchema, OpCreated, "abc-123", map[string]any{"name": "Invoice"})

	assert.Equal(t, "schema_created", msg.Type)
	assert.Equal(t, "abc-123", msg.EntityID)
	assert.Equal(t, "schema", msg.EntityType)
	assert.True(t, msg.IsWellFormed())

	ts, err := time.Parse(TimestampLayout, msg.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, 2*time.Second)
}

func TestChangeMessage_EntityAndOperation(t *testing.T) {
	tests := []struct {
		msgType    string
		wantEntity EntityType
		wantOp     Operation
		ok         bool
	}{
		{"product_created", EntityProduct, OpCreated, true},
		{"domain_updated", EntityDomain, OpUpdated, true},
		{"context_deleted", EntityContext, OpDeleted, true},
		{"schema_created", EntitySchema, OpCreated, true},
		{"schema_version_updated", EntitySchemaVersion, OpUpdated, true},
		{"version_updated", EntitySchemaVersion, OpUpdated, true},
		{"schema_version_created", EntitySchemaVersion, OpCreated, true},
		{"widget_created", "", "", false},
		{"schema_exploded", "", "", false},
		{"schema", "", "", false},
		{"_created", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.msgType, func(t *testing.T) {
			msg := &ChangeMessage{Type: tt.msgType}

			entity, ok := msg.Entity()
			assert.Equal(t, tt.ok, ok)
			op, opOK := msg.Operation()
			assert.Equal(t, tt.ok, opOK)

			if tt.ok {
				assert.Equal(t, tt.wantEntity, entity)
				assert.Equal(t, tt.wantOp, op)
			}
		})
	}
}

func TestChangeMessage_IsWellFormed(t *testing.T) {
	now := time.Now().UTC().Format(TimestampLayout)

	t.Run("valid message", func(t *testing.T) {
		msg := &ChangeMessage{Type: "schema_created", EntityID: "x", EntityType: "schema", Timestamp: now}
		assert.True(t, msg.IsWellFormed())
	})

	t.Run("version alias agrees with long form", func(t *testing.T) {
		msg := &ChangeMessage{Type: "schema_version_updated", EntityID: "x", EntityType: "version", Timestamp: now}
		assert.True(t, msg.IsWellFormed())

		msg = &ChangeMessage{Type: "version_updated", EntityID: "x", EntityType: "schema_version", Timestamp: now}
		assert.True(t, msg.IsWellFormed())
	})

	t.Run("entity type disagreement", func(t *testing.T) {
		msg := &ChangeMessage{Type: "schema_created", EntityID: "x", EntityType: "product", Timestamp: now}
		assert.False(t, msg.IsWellFormed())
	})

	t.Run("unknown entity type field", func(t *testing.T) {
		msg := &ChangeMessage{Type: "schema_created", EntityID: "x", EntityType: "widget", Timestamp: now}
		assert.False(t, msg.IsWellFormed())
	})

	t.Run("unparseable timestamp", func(t *testing.T) {
		msg := &ChangeMessage{Type: "schema_created", EntityID: "x", EntityType: "schema", Timestamp: "yesterday"}
		assert.False(t, msg.IsWellFormed())
	})

	t.Run("missing timestamp", func(t *testing.T) {
		msg := &ChangeMessage{Type: "schema_created", EntityID: "x", EntityType: "schema"}
		assert.False(t, msg.IsWellFormed())
	})
}

func TestRoomID(t *testing.T) {
	assert.Equal(t, "tenant-1-registry-9", RoomID("tenant-1", "registry-9"))
}

func TestChangeMessage_DataString(t *testing.T) {
	msg := &ChangeMessage{Data: map[string]any{"schemaId": "s-1", "count": 3}}

	assert.Equal(t, "s-1", msg.DataString("schemaId"))
	assert.Equal(t, "", msg.DataString("count"))
	assert.Equal(t, "", msg.DataString("missing"))

	empty := &ChangeMessage{}
	assert.Equal(t, "", empty.DataString("schemaId"))
}
