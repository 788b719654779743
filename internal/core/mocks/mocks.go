// Package mocks provides testify mocks for the core ports.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// MockSnapshotLoader mocks ports.SnapshotLoader.
type MockSnapshotLoader struct {
	mock.Mock
}

func NewMockSnapshotLoader() *MockSnapshotLoader { return &MockSnapshotLoader{} }

func (m *MockSnapshotLoader) Load(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

// MockChangeBroadcaster mocks ports.ChangeBroadcaster.
type MockChangeBroadcaster struct {
	mock.Mock
}

func NewMockChangeBroadcaster() *MockChangeBroadcaster { return &MockChangeBroadcaster{} }

func (m *MockChangeBroadcaster) Broadcast(room string, msg domain.ChangeMessage) error {
	args := m.Called(room, msg)
	return args.Error(0)
}

// MockUserRepository mocks ports.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository { return &MockUserRepository{} }

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockRegistryRepository mocks ports.RegistryRepository.
type MockRegistryRepository struct {
	mock.Mock
}

func NewMockRegistryRepository() *MockRegistryRepository { return &MockRegistryRepository{} }

func (m *MockRegistryRepository) LoadSnapshot(ctx context.Context, registryID string) (*domain.Snapshot, error) {
	args := m.Called(ctx, registryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockRegistryRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockRegistryRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockRegistryRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockRegistryRepository) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRegistryRepository) CreateDomain(ctx context.Context, dom *domain.Domain) error {
	return m.Called(ctx, dom).Error(0)
}

func (m *MockRegistryRepository) GetDomain(ctx context.Context, id string) (*domain.Domain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *MockRegistryRepository) UpdateDomain(ctx context.Context, dom *domain.Domain) error {
	return m.Called(ctx, dom).Error(0)
}

func (m *MockRegistryRepository) DeleteDomain(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRegistryRepository) CreateContext(ctx context.Context, c *domain.Context) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRegistryRepository) GetContext(ctx context.Context, id string) (*domain.Context, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Context), args.Error(1)
}

func (m *MockRegistryRepository) UpdateContext(ctx context.Context, c *domain.Context) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRegistryRepository) DeleteContext(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRegistryRepository) CreateSchema(ctx context.Context, schema *domain.Schema) error {
	return m.Called(ctx, schema).Error(0)
}

func (m *MockRegistryRepository) GetSchema(ctx context.Context, id string) (*domain.Schema, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schema), args.Error(1)
}

func (m *MockRegistryRepository) UpdateSchema(ctx context.Context, schema *domain.Schema) error {
	return m.Called(ctx, schema).Error(0)
}

func (m *MockRegistryRepository) DeleteSchema(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRegistryRepository) CreateSchemaVersion(ctx context.Context, version *domain.SchemaVersion) error {
	return m.Called(ctx, version).Error(0)
}

func (m *MockRegistryRepository) GetSchemaVersion(ctx context.Context, id string) (*domain.SchemaVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchemaVersion), args.Error(1)
}

func (m *MockRegistryRepository) UpdateSchemaVersion(ctx context.Context, version *domain.SchemaVersion) error {
	return m.Called(ctx, version).Error(0)
}

func (m *MockRegistryRepository) DeleteSchemaVersion(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockRegistryService mocks ports.RegistryService for handler tests.
type MockRegistryService struct {
	mock.Mock
}

func NewMockRegistryService() *MockRegistryService { return &MockRegistryService{} }

func (m *MockRegistryService) Snapshot(ctx context.Context, registryID string) (*domain.Snapshot, error) {
	args := m.Called(ctx, registryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockRegistryService) CreateProduct(ctx context.Context, params ports.CreateProductParams) (*domain.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockRegistryService) UpdateProduct(ctx context.Context, params ports.UpdateProductParams) (*domain.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockRegistryService) DeleteProduct(ctx context.Context, params ports.DeleteParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockRegistryService) CreateDomain(ctx context.Context, params ports.CreateDomainParams) (*domain.Domain, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *MockRegistryService) UpdateDomain(ctx context.Context, params ports.UpdateDomainParams) (*domain.Domain, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *MockRegistryService) DeleteDomain(ctx context.Context, params ports.DeleteParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockRegistryService) CreateContext(ctx context.Context, params ports.CreateContextParams) (*domain.Context, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Context), args.Error(1)
}

func (m *MockRegistryService) UpdateContext(ctx context.Context, params ports.UpdateContextParams) (*domain.Context, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Context), args.Error(1)
}

func (m *MockRegistryService) DeleteContext(ctx context.Context, params ports.DeleteParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockRegistryService) CreateSchema(ctx context.Context, params ports.CreateSchemaParams) (*domain.Schema, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schema), args.Error(1)
}

func (m *MockRegistryService) UpdateSchema(ctx context.Context, params ports.UpdateSchemaParams) (*domain.Schema, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schema), args.Error(1)
}

func (m *MockRegistryService) DeleteSchema(ctx context.Context, params ports.DeleteParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockRegistryService) CreateSchemaVersion(ctx context.Context, params ports.CreateSchemaVersionParams) (*domain.SchemaVersion, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchemaVersion), args.Error(1)
}

func (m *MockRegistryService) UpdateSchemaVersion(ctx context.Context, params ports.UpdateSchemaVersionParams) (*domain.SchemaVersion, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchemaVersion), args.Error(1)
}

func (m *MockRegistryService) DeleteSchemaVersion(ctx context.Context, params ports.DeleteParams) error {
	return m.Called(ctx, params).Error(0)
}

// MockAuthService mocks ports.AuthService.
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService() *MockAuthService { return &MockAuthService{} }

func (m *MockAuthService) Register(ctx context.Context, fullName, email, password string, tenantID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, fullName, email, password, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
