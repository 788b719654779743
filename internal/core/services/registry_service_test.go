package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	apperrors "github.com/VaughnVernon/SchemaMinder-sub003/internal/core/errors"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/mocks"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

var testActor = ports.Actor{
	UserID:     "user-1",
	TenantID:   "tenant-1",
	RegistryID: "reg-1",
}

func TestRegistryService_Snapshot(t *testing.T) {
	repo := mocks.NewMockRegistryRepository()
	broadcaster := mocks.NewMockChangeBroadcaster()
	svc := NewRegistryService(repo, broadcaster, testLogger())

	snap := &domain.Snapshot{
		RegistryID: "reg-1",
		Products: []domain.Product{
			{ID: "p2", Name: "zebra"},
			{ID: "p1", Name: "alpha"},
		},
	}
	repo.On("LoadSnapshot", mock.Anything, "reg-1").Return(snap, nil)

	got, err := svc.Snapshot(context.Background(), "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Products[0].Name)
	repo.AssertExpectations(t)
	broadcaster.AssertNotCalled(t, "Broadcast")
}

func TestRegistryService_CreateProduct(t *testing.T) {
	t.Run("creates and broadcasts to the actor's room", func(t *testing.T) {
		repo := mocks.NewMockRegistryRepository()
		broadcaster := mocks.NewMockChangeBroadcaster()
		svc := NewRegistryService(repo, broadcaster, testLogger())

		repo.On("CreateProduct", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
		broadcaster.On("Broadcast", "tenant-1-reg-1", mock.MatchedBy(func(msg domain.ChangeMessage) bool {
			return msg.Type == "product_created" &&
				msg.Source == domain.SourceServer &&
				msg.UserID == "user-1" &&
				msg.EntityType == "product"
		})).Return(nil)

		product, err := svc.CreateProduct(context.Background(), ports.CreateProductParams{
			Actor: testActor,
			Name:  "Billing",
		})
		require.NoError(t, err)
		assert.Equal(t, "reg-1", product.RegistryID)
		repo.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("validation failure never touches the repository", func(t *testing.T) {
		repo := mocks.NewMockRegistryRepository()
		broadcaster := mocks.NewMockChangeBroadcaster()
		svc := NewRegistryService(repo, broadcaster, testLogger())

		_, err := svc.CreateProduct(context.Background(), ports.CreateProductParams{
			Actor: testActor,
			Name:  "   ",
		})
		assert.ErrorIs(t, err, domain.ErrNameRequired)
		repo.AssertNotCalled(t, "CreateProduct")
		broadcaster.AssertNotCalled(t, "Broadcast")
	})

	t.Run("broadcast failure does not fail the mutation", func(t *testing.T) {
		repo := mocks.NewMockRegistryRepository()
		broadcaster := mocks.NewMockChangeBroadcaster()
		svc := NewRegistryService(repo, broadcaster, testLogger())

		repo.On("CreateProduct", mock.Anything, mock.Anything).Return(nil)
		broadcaster.On("Broadcast", mock.Anything, mock.Anything).Return(errors.New("hub backed up"))

		_, err := svc.CreateProduct(context.Background(), ports.CreateProductParams{
			Actor: testActor,
			Name:  "Billing",
		})
		assert.NoError(t, err)
	})
}

func TestRegistryService_CreateDomain_RequiresParent(t *testing.T) {
	repo := mocks.NewMockRegistryRepository()
	broadcaster := mocks.NewMockChangeBroadcaster()
	svc := NewRegistryService(repo, broadcaster, testLogger())

	repo.On("GetProduct", mock.Anything, "p-missing").Return(nil, apperrors.ErrProductNotFound)

	_, err := svc.CreateDomain(context.Background(), ports.CreateDomainParams{
		Actor:     testActor,
		ProductID: "p-missing",
		Name:      "core",
	})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	repo.AssertNotCalled(t, "CreateDomain")
	broadcaster.AssertNotCalled(t, "Broadcast")
}

func TestRegistryService_UpdateSchema(t *testing.T) {
	t.Run("patches only provided fields", func(t *testing.T) {
		repo := mocks.NewMockRegistryRepository()
		broadcaster := mocks.NewMockChangeBroadcaster()
		svc := NewRegistryService(repo, broadcaster, testLogger())

		existing := &domain.Schema{ID: "s-1", ContextID: "c-1", Name: "Invoice", Category: domain.CategoryEvent}
		repo.On("GetSchema", mock.Anything, "s-1").Return(existing, nil)
		repo.On("UpdateSchema", mock.Anything, mock.MatchedBy(func(s *domain.Schema) bool {
			return s.Name == "InvoiceCreated" && s.Category == domain.CategoryEvent
		})).Return(nil)
		broadcaster.On("Broadcast", "tenant-1-reg-1", mock.MatchedBy(func(msg domain.ChangeMessage) bool {
			return msg.Type == "schema_updated" && msg.EntityID == "s-1"
		})).Return(nil)

		updated, err := svc.UpdateSchema(context.Background(), ports.UpdateSchemaParams{
			Actor:    testActor,
			SchemaID: "s-1",
			Name:     "InvoiceCreated",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryEvent, updated.Category)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		repo := mocks.NewMockRegistryRepository()
		broadcaster := mocks.NewMockChangeBroadcaster()
		svc := NewRegistryService(repo, broadcaster, testLogger())

		existing := &domain.Schema{ID: "s-1", ContextID: "c-1", Name: "Invoice"}
		repo.On("GetSchema", mock.Anything, "s-1").Return(existing, nil)

		_, err := svc.UpdateSchema(context.Background(), ports.UpdateSchemaParams{
			Actor:    testActor,
			SchemaID: "s-1",
			Category: "Telegram",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCategory)
		repo.AssertNotCalled(t, "UpdateSchema")
		broadcaster.AssertNotCalled(t, "Broadcast")
	})
}

func TestRegistryService_UpdateSchemaVersion(t *testing.T) {
	repo := mocks.NewMockRegistryRepository()
	broadcaster := mocks.NewMockChangeBroadcaster()
	svc := NewRegistryService(repo, broadcaster, testLogger())

	existing := &domain.SchemaVersion{
		ID:              "v-1",
		SchemaID:        "s-1",
		SemanticVersion: "1.2.0",
		Specification:   "old spec",
		Status:          domain.StatusDraft,
	}
	repo.On("GetSchemaVersion", mock.Anything, "v-1").Return(existing, nil)
	repo.On("UpdateSchemaVersion", mock.Anything, mock.MatchedBy(func(v *domain.SchemaVersion) bool {
		return v.Specification == "new spec" && v.Status == domain.StatusPublished && v.UpdatedAt != nil
	})).Return(nil)
	broadcaster.On("Broadcast", "tenant-1-reg-1", mock.MatchedBy(func(msg domain.ChangeMessage) bool {
		return msg.Type == "schema_version_updated" &&
			msg.EntityID == "v-1" &&
			msg.DataString("schemaId") == "s-1" &&
			msg.DataString("semanticVersion") == "1.2.0"
	})).Return(nil)

	_, err := svc.UpdateSchemaVersion(context.Background(), ports.UpdateSchemaVersionParams{
		Actor:         testActor,
		VersionID:     "v-1",
		Specification: "new spec",
		Status:        domain.StatusPublished,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestRegistryService_DeleteSchemaVersion(t *testing.T) {
	t.Run("broadcasts deletion", func(t *testing.T) {
		repo := mocks.NewMockRegistryRepository()
		broadcaster := mocks.NewMockChangeBroadcaster()
		svc := NewRegistryService(repo, broadcaster, testLogger())

		repo.On("DeleteSchemaVersion", mock.Anything, "v-1").Return(nil)
		broadcaster.On("Broadcast", "tenant-1-reg-1", mock.MatchedBy(func(msg domain.ChangeMessage) bool {
			return msg.Type == "schema_version_deleted" && msg.EntityID == "v-1"
		})).Return(nil)

		err := svc.DeleteSchemaVersion(context.Background(), ports.DeleteParams{Actor: testActor, ID: "v-1"})
		require.NoError(t, err)
		broadcaster.AssertExpectations(t)
	})

	t.Run("missing version does not broadcast", func(t *testing.T) {
		repo := mocks.NewMockRegistryRepository()
		broadcaster := mocks.NewMockChangeBroadcaster()
		svc := NewRegistryService(repo, broadcaster, testLogger())

		repo.On("DeleteSchemaVersion", mock.Anything, "v-missing").Return(apperrors.ErrSchemaVersionNotFound)

		err := svc.DeleteSchemaVersion(context.Background(), ports.DeleteParams{Actor: testActor, ID: "v-missing"})
		assert.ErrorIs(t, err, apperrors.ErrSchemaVersionNotFound)
		broadcaster.AssertNotCalled(t, "Broadcast")
	})
}
