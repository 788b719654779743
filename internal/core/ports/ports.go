package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

// SnapshotLoader refetches the full registry tree. Implementations must be
// safe to call repeatedly; callers serialize concurrent reloads themselves.
type SnapshotLoader interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// ChangeBroadcaster delivers a change message to every session in a room.
type ChangeBroadcaster interface {
	Broadcast(room string, msg domain.ChangeMessage) error
}

// RegistryRepository is the persistence port for the registry hierarchy.
type RegistryRepository interface {
	LoadSnapshot(ctx context.Context, registryID string) (*domain.Snapshot, error)

	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateDomain(ctx context.Context, dom *domain.Domain) error
	GetDomain(ctx context.Context, id string) (*domain.Domain, error)
	UpdateDomain(ctx context.Context, dom *domain.Domain) error
	DeleteDomain(ctx context.Context, id string) error

	CreateContext(ctx context.Context, c *domain.Context) error
	GetContext(ctx context.Context, id string) (*domain.Context, error)
	UpdateContext(ctx context.Context, c *domain.Context) error
	DeleteContext(ctx context.Context, id string) error

	CreateSchema(ctx context.Context, schema *domain.Schema) error
	GetSchema(ctx context.Context, id string) (*domain.Schema, error)
	UpdateSchema(ctx context.Context, schema *domain.Schema) error
	DeleteSchema(ctx context.Context, id string) error

	CreateSchemaVersion(ctx context.Context, version *domain.SchemaVersion) error
	GetSchemaVersion(ctx context.Context, id string) (*domain.SchemaVersion, error)
	UpdateSchemaVersion(ctx context.Context, version *domain.SchemaVersion) error
	DeleteSchemaVersion(ctx context.Context, id string) error
}

// UserRepository is the persistence port for editor accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Actor identifies who performs a mutation and which room it broadcasts to.
type Actor struct {
	UserID     string
	TenantID   string
	RegistryID string
}

// Room returns the broadcast room for this actor's registry.
func (a Actor) Room() string {
	return domain.RoomID(a.TenantID, a.RegistryID)
}

// CreateProductParams defines the input for creating a product.
type CreateProductParams struct {
	Actor       Actor
	Name        string
	Description string
}

// UpdateProductParams defines the input for renaming or describing a product.
type UpdateProductParams struct {
	Actor       Actor
	ProductID   string
	Name        string
	Description string
}

// CreateDomainParams defines the input for creating a domain under a product.
type CreateDomainParams struct {
	Actor       Actor
	ProductID   string
	Name        string
	Description string
}

// UpdateDomainParams defines the input for updating a domain.
type UpdateDomainParams struct {
	Actor       Actor
	DomainID    string
	Name        string
	Description string
}

// CreateContextParams defines the input for creating a context under a domain.
type CreateContextParams struct {
	Actor       Actor
	DomainID    string
	Namespace   string
	Description string
}

// UpdateContextParams defines the input for updating a context.
type UpdateContextParams struct {
	Actor       Actor
	ContextID   string
	Namespace   string
	Description string
}

// CreateSchemaParams defines the input for creating a schema under a context.
type CreateSchemaParams struct {
	Actor       Actor
	ContextID   string
	Name        string
	Category    domain.SchemaCategory
	Description string
}

// UpdateSchemaParams defines the input for updating a schema.
type UpdateSchemaParams struct {
	Actor       Actor
	SchemaID    string
	Name        string
	Category    domain.SchemaCategory
	Description string
}

// CreateSchemaVersionParams defines the input for creating a schema version.
type CreateSchemaVersionParams struct {
	Actor           Actor
	SchemaID        string
	SemanticVersion string
	Specification   string
	Description     string
	Status          domain.VersionStatus
}

// UpdateSchemaVersionParams defines the input for updating a schema version.
// Updates are last-write-wins; concurrent edits are only flagged client-side.
type UpdateSchemaVersionParams struct {
	Actor         Actor
	VersionID     string
	Specification string
	Description   string
	Status        domain.VersionStatus
}

// DeleteParams defines the input for deleting any registry entity.
type DeleteParams struct {
	Actor Actor
	ID    string
}

// RegistryService defines the mutation and snapshot operations exposed over
// HTTP. Every successful mutation broadcasts a change message to the room.
type RegistryService interface {
	Snapshot(ctx context.Context, registryID string) (*domain.Snapshot, error)

	CreateProduct(ctx context.Context, params CreateProductParams) (*domain.Product, error)
	UpdateProduct(ctx context.Context, params UpdateProductParams) (*domain.Product, error)
	DeleteProduct(ctx context.Context, params DeleteParams) error

	CreateDomain(ctx context.Context, params CreateDomainParams) (*domain.Domain, error)
	UpdateDomain(ctx context.Context, params UpdateDomainParams) (*domain.Domain, error)
	DeleteDomain(ctx context.Context, params DeleteParams) error

	CreateContext(ctx context.Context, params CreateContextParams) (*domain.Context, error)
	UpdateContext(ctx context.Context, params UpdateContextParams) (*domain.Context, error)
	DeleteContext(ctx context.Context, params DeleteParams) error

	CreateSchema(ctx context.Context, params CreateSchemaParams) (*domain.Schema, error)
	UpdateSchema(ctx context.Context, params UpdateSchemaParams) (*domain.Schema, error)
	DeleteSchema(ctx context.Context, params DeleteParams) error

	CreateSchemaVersion(ctx context.Context, params CreateSchemaVersionParams) (*domain.SchemaVersion, error)
	UpdateSchemaVersion(ctx context.Context, params UpdateSchemaVersionParams) (*domain.SchemaVersion, error)
	DeleteSchemaVersion(ctx context.Context, params DeleteParams) error
}

// AuthService defines the port for identifying editors.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string, tenantID uuid.UUID) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}
