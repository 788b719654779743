package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// RegistryService implements the registry mutation use-cases. Every
// successful mutation is broadcast to the actor's room so other sessions can
// reconcile; ordering is preserved by broadcasting inline, in mutation order.
type RegistryService struct {
	repo        ports.RegistryRepository
	broadcaster ports.ChangeBroadcaster
	logger      *slog.Logger
}

var _ ports.RegistryService = (*RegistryService)(nil)

// NewRegistryService creates a new registry service.
func NewRegistryService(repo ports.RegistryRepository, broadcaster ports.ChangeBroadcaster, logger *slog.Logger) ports.RegistryService {
	return &RegistryService{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger.With("component", "registry_service"),
	}
}

// Snapshot loads the full hierarchy for a registry in display order.
func (s *RegistryService) Snapshot(ctx context.Context, registryID string) (*domain.Snapshot, error) {
	snap, err := s.repo.LoadSnapshot(ctx, registryID)
	if err != nil {
		return nil, err
	}
	snap.Normalize()
	return snap, nil
}

// broadcast publishes a change message for a mutation performed over HTTP.
func (s *RegistryService) broadcast(actor ports.Actor, entity domain.EntityType, op domain.Operation, entityID string, data map[string]any) {
	msg := domain.NewChangeMessage(entity, op, entityID, data)
	msg.Source = domain.SourceServer
	msg.UserID = actor.UserID

	if err := s.broadcaster.Broadcast(actor.Room(), msg); err != nil {
		s.logger.Warn("failed to broadcast change", "type", msg.Type, "entity_id", entityID, "error", err)
	}
}

// --- Products ---

func (s *RegistryService) CreateProduct(ctx context.Context, params ports.CreateProductParams) (*domain.Product, error) {
	product, err := domain.NewProduct(params.Actor.RegistryID, params.Name, params.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntityProduct, domain.OpCreated, product.ID, map[string]any{"name": product.Name})
	return product, nil
}

func (s *RegistryService) UpdateProduct(ctx context.Context, params ports.UpdateProductParams) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}
	if params.Name != "" {
		product.Name = params.Name
	}
	product.Description = params.Description
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntityProduct, domain.OpUpdated, product.ID, map[string]any{"name": product.Name})
	return product, nil
}

func (s *RegistryService) DeleteProduct(ctx context.Context, params ports.DeleteParams) error {
	if err := s.repo.DeleteProduct(ctx, params.ID); err != nil {
		return err
	}
	s.broadcast(params.Actor, domain.EntityProduct, domain.OpDeleted, params.ID, nil)
	return nil
}

// --- Domains ---

func (s *RegistryService) CreateDomain(ctx context.Context, params ports.CreateDomainParams) (*domain.Domain, error) {
	if _, err := s.repo.GetProduct(ctx, params.ProductID); err != nil {
		return nil, err
	}
	dom, err := domain.NewDomain(params.ProductID, params.Name, params.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateDomain(ctx, dom); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntityDomain, domain.OpCreated, dom.ID, map[string]any{"name": dom.Name, "productId": dom.ProductID})
	return dom, nil
}

func (s *RegistryService) UpdateDomain(ctx context.Context, params ports.UpdateDomainParams) (*domain.Domain, error) {
	dom, err := s.repo.GetDomain(ctx, params.DomainID)
	if err != nil {
		return nil, err
	}
	if params.Name != "" {
		dom.Name = params.Name
	}
	dom.Description = params.Description
	if err := s.repo.UpdateDomain(ctx, dom); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntityDomain, domain.OpUpdated, dom.ID, map[string]any{"name": dom.Name, "productId": dom.ProductID})
	return dom, nil
}

func (s *RegistryService) DeleteDomain(ctx context.Context, params ports.DeleteParams) error {
	if err := s.repo.DeleteDomain(ctx, params.ID); err != nil {
		return err
	}
	s.broadcast(params.Actor, domain.EntityDomain, domain.OpDeleted, params.ID, nil)
	return nil
}

// --- Contexts ---

func (s *RegistryService) CreateContext(ctx context.Context, params ports.CreateContextParams) (*domain.Context, error) {
	if _, err := s.repo.GetDomain(ctx, params.DomainID); err != nil {
		return nil, err
	}
	c, err := domain.NewContext(params.DomainID, params.Namespace, params.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateContext(ctx, c); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntityContext, domain.OpCreated, c.ID, map[string]any{"namespace": c.Namespace, "domainId": c.DomainID})
	return c, nil
}

func (s *RegistryService) UpdateContext(ctx context.Context, params ports.UpdateContextParams) (*domain.Context, error) {
	c, err := s.repo.GetContext(ctx, params.ContextID)
	if err != nil {
		return nil, err
	}
	if params.Namespace != "" {
		c.Namespace = params.Namespace
	}
	c.Description = params.Description
	if err := s.repo.UpdateContext(ctx, c); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntityContext, domain.OpUpdated, c.ID, map[string]any{"namespace": c.Namespace, "domainId": c.DomainID})
	return c, nil
}

func (s *RegistryService) DeleteContext(ctx context.Context, params ports.DeleteParams) error {
	if err := s.repo.DeleteContext(ctx, params.ID); err != nil {
		return err
	}
	s.broadcast(params.Actor, domain.EntityContext, domain.OpDeleted, params.ID, nil)
	return nil
}

// --- Schemas ---

func (s *RegistryService) CreateSchema(ctx context.Context, params ports.CreateSchemaParams) (*domain.Schema, error) {
	if _, err := s.repo.GetContext(ctx, params.ContextID); err != nil {
		return nil, err
	}
	schema, err := domain.NewSchema(params.ContextID, params.Name, params.Category, params.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSchema(ctx, schema); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntitySchema, domain.OpCreated, schema.ID, map[string]any{
		"name":      schema.Name,
		"category":  string(schema.Category),
		"contextId": schema.ContextID,
	})
	return schema, nil
}

func (s *RegistryService) UpdateSchema(ctx context.Context, params ports.UpdateSchemaParams) (*domain.Schema, error) {
	schema, err := s.repo.GetSchema(ctx, params.SchemaID)
	if err != nil {
		return nil, err
	}
	if params.Name != "" {
		schema.Name = params.Name
	}
	if params.Category != "" {
		if !domain.ValidCategory(params.Category) {
			return nil, domain.ErrInvalidCategory
		}
		schema.Category = params.Category
	}
	schema.Description = params.Description
	if err := s.repo.UpdateSchema(ctx, schema); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntitySchema, domain.OpUpdated, schema.ID, map[string]any{
		"name":      schema.Name,
		"category":  string(schema.Category),
		"contextId": schema.ContextID,
	})
	return schema, nil
}

func (s *RegistryService) DeleteSchema(ctx context.Context, params ports.DeleteParams) error {
	if err := s.repo.DeleteSchema(ctx, params.ID); err != nil {
		return err
	}
	s.broadcast(params.Actor, domain.EntitySchema, domain.OpDeleted, params.ID, nil)
	return nil
}

// --- Schema versions ---

func (s *RegistryService) CreateSchemaVersion(ctx context.Context, params ports.CreateSchemaVersionParams) (*domain.SchemaVersion, error) {
	if _, err := s.repo.GetSchema(ctx, params.SchemaID); err != nil {
		return nil, err
	}
	version, err := domain.NewSchemaVersion(params.SchemaID, params.SemanticVersion, params.Specification, params.Description, params.Status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSchemaVersion(ctx, version); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntitySchemaVersion, domain.OpCreated, version.ID, versionPayload(version))
	return version, nil
}

// UpdateSchemaVersion applies a last-write-wins update. Concurrent remote
// edits are only flagged in the editing session, never rejected here.
func (s *RegistryService) UpdateSchemaVersion(ctx context.Context, params ports.UpdateSchemaVersionParams) (*domain.SchemaVersion, error) {
	version, err := s.repo.GetSchemaVersion(ctx, params.VersionID)
	if err != nil {
		return nil, err
	}
	if params.Specification != "" {
		version.Specification = params.Specification
	}
	if params.Status != "" {
		if !domain.ValidStatus(params.Status) {
			return nil, domain.ErrInvalidStatus
		}
		version.Status = params.Status
	}
	version.Description = params.Description
	now := time.Now().UTC()
	version.UpdatedAt = &now

	if err := s.repo.UpdateSchemaVersion(ctx, version); err != nil {
		return nil, err
	}
	s.broadcast(params.Actor, domain.EntitySchemaVersion, domain.OpUpdated, version.ID, versionPayload(version))
	return version, nil
}

func (s *RegistryService) DeleteSchemaVersion(ctx context.Context, params ports.DeleteParams) error {
	if err := s.repo.DeleteSchemaVersion(ctx, params.ID); err != nil {
		return err
	}
	s.broadcast(params.Actor, domain.EntitySchemaVersion, domain.OpDeleted, params.ID, nil)
	return nil
}

// versionPayload carries the fields the edit-conflict watcher matches on.
func versionPayload(v *domain.SchemaVersion) map[string]any {
	return map[string]any{
		"schemaId":        v.SchemaID,
		"semanticVersion": v.SemanticVersion,
		"status":          string(v.Status),
	}
}
