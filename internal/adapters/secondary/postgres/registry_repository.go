package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	apperrors "github.com/VaughnVernon/SchemaMinder-sub003/internal/core/errors"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// RegistryRepository persists the registry hierarchy in PostgreSQL.
type RegistryRepository struct {
	pool *pgxpool.Pool
}

var _ ports.RegistryRepository = (*RegistryRepository)(nil)

// NewRegistryRepository creates a new registry repository.
func NewRegistryRepository(pool *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

// LoadSnapshot assembles the full tree for one registry. Children are fetched
// level by level and stitched together in memory; ordering is left to
// Snapshot.Normalize, which derives it from names and semantic versions.
func (r *RegistryRepository) LoadSnapshot(ctx context.Context, registryID string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{RegistryID: registryID}

	rows, err := r.pool.Query(ctx,
		`SELECT id, registry_id, name, description FROM products WHERE registry_id = $1`,
		registryID)
	if err != nil {
		return nil, err
	}
	productIdx := make(map[string]int)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.RegistryID, &p.Name, &p.Description); err != nil {
			rows.Close()
			return nil, err
		}
		productIdx[p.ID] = len(snap.Products)
		snap.Products = append(snap.Products, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT d.id, d.product_id, d.name, d.description
		 FROM domains d JOIN products p ON p.id = d.product_id
		 WHERE p.registry_id = $1`,
		registryID)
	if err != nil {
		return nil, err
	}
	domainIdx := make(map[string][2]int)
	for rows.Next() {
		var d domain.Domain
		if err := rows.Scan(&d.ID, &d.ProductID, &d.Name, &d.Description); err != nil {
			rows.Close()
			return nil, err
		}
		pi, ok := productIdx[d.ProductID]
		if !ok {
			continue
		}
		domainIdx[d.ID] = [2]int{pi, len(snap.Products[pi].Domains)}
		snap.Products[pi].Domains = append(snap.Products[pi].Domains, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT c.id, c.domain_id, c.namespace, c.description
		 FROM contexts c
		 JOIN domains d ON d.id = c.domain_id
		 JOIN products p ON p.id = d.product_id
		 WHERE p.registry_id = $1`,
		registryID)
	if err != nil {
		return nil, err
	}
	contextIdx := make(map[string][3]int)
	for rows.Next() {
		var c domain.Context
		if err := rows.Scan(&c.ID, &c.DomainID, &c.Namespace, &c.Description); err != nil {
			rows.Close()
			return nil, err
		}
		di, ok := domainIdx[c.DomainID]
		if !ok {
			continue
		}
		dom := &snap.Products[di[0]].Domains[di[1]]
		contextIdx[c.ID] = [3]int{di[0], di[1], len(dom.Contexts)}
		dom.Contexts = append(dom.Contexts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT s.id, s.context_id, s.name, s.category, s.description
		 FROM schemas s
		 JOIN contexts c ON c.id = s.context_id
		 JOIN domains d ON d.id = c.domain_id
		 JOIN products p ON p.id = d.product_id
		 WHERE p.registry_id = $1`,
		registryID)
	if err != nil {
		return nil, err
	}
	schemaIdx := make(map[string][4]int)
	for rows.Next() {
		var s domain.Schema
		if err := rows.Scan(&s.ID, &s.ContextID, &s.Name, &s.Category, &s.Description); err != nil {
			rows.Close()
			return nil, err
		}
		ci, ok := contextIdx[s.ContextID]
		if !ok {
			continue
		}
		c := &snap.Products[ci[0]].Domains[ci[1]].Contexts[ci[2]]
		schemaIdx[s.ID] = [4]int{ci[0], ci[1], ci[2], len(c.Schemas)}
		c.Schemas = append(c.Schemas, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT v.id, v.schema_id, v.semantic_version, v.status, v.specification, v.description, v.created_at, v.updated_at
		 FROM schema_versions v
		 JOIN schemas s ON s.id = v.schema_id
		 JOIN contexts c ON c.id = s.context_id
		 JOIN domains d ON d.id = c.domain_id
		 JOIN products p ON p.id = d.product_id
		 WHERE p.registry_id = $1`,
		registryID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var v domain.SchemaVersion
		if err := rows.Scan(&v.ID, &v.SchemaID, &v.SemanticVersion, &v.Status, &v.Specification, &v.Description, &v.CreatedAt, &v.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		si, ok := schemaIdx[v.SchemaID]
		if !ok {
			continue
		}
		schema := &snap.Products[si[0]].Domains[si[1]].Contexts[si[2]].Schemas[si[3]]
		schema.Versions = append(schema.Versions, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

// --- Products ---

func (r *RegistryRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, registry_id, name, description) VALUES ($1, $2, $3, $4)`,
		product.ID, product.RegistryID, product.Name, product.Description)
	return err
}

func (r *RegistryRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, registry_id, name, description FROM products WHERE id = $1`,
		id).Scan(&p.ID, &p.RegistryID, &p.Name, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RegistryRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $2, description = $3 WHERE id = $1`,
		product.ID, product.Name, product.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

func (r *RegistryRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// --- Domains ---

func (r *RegistryRepository) CreateDomain(ctx context.Context, dom *domain.Domain) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO domains (id, product_id, name, description) VALUES ($1, $2, $3, $4)`,
		dom.ID, dom.ProductID, dom.Name, dom.Description)
	return err
}

func (r *RegistryRepository) GetDomain(ctx context.Context, id string) (*domain.Domain, error) {
	var d domain.Domain
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, name, description FROM domains WHERE id = $1`,
		id).Scan(&d.ID, &d.ProductID, &d.Name, &d.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RegistryRepository) UpdateDomain(ctx context.Context, dom *domain.Domain) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE domains SET name = $2, description = $3 WHERE id = $1`,
		dom.ID, dom.Name, dom.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDomainNotFound
	}
	return nil
}

func (r *RegistryRepository) DeleteDomain(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM domains WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDomainNotFound
	}
	return nil
}

// --- Contexts ---

func (r *RegistryRepository) CreateContext(ctx context.Context, c *domain.Context) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contexts (id, domain_id, namespace, description) VALUES ($1, $2, $3, $4)`,
		c.ID, c.DomainID, c.Namespace, c.Description)
	return err
}

func (r *RegistryRepository) GetContext(ctx context.Context, id string) (*domain.Context, error) {
	var c domain.Context
	err := r.pool.QueryRow(ctx,
		`SELECT id, domain_id, namespace, description FROM contexts WHERE id = $1`,
		id).Scan(&c.ID, &c.DomainID, &c.Namespace, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrContextNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RegistryRepository) UpdateContext(ctx context.Context, c *domain.Context) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contexts SET namespace = $2, description = $3 WHERE id = $1`,
		c.ID, c.Namespace, c.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrContextNotFound
	}
	return nil
}

func (r *RegistryRepository) DeleteContext(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contexts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrContextNotFound
	}
	return nil
}

// --- Schemas ---

func (r *RegistryRepository) CreateSchema(ctx context.Context, schema *domain.Schema) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO schemas (id, context_id, name, category, description) VALUES ($1, $2, $3, $4, $5)`,
		schema.ID, schema.ContextID, schema.Name, schema.Category, schema.Description)
	return err
}

func (r *RegistryRepository) GetSchema(ctx context.Context, id string) (*domain.Schema, error) {
	var s domain.Schema
	err := r.pool.QueryRow(ctx,
		`SELECT id, context_id, name, category, description FROM schemas WHERE id = $1`,
		id).Scan(&s.ID, &s.ContextID, &s.Name, &s.Category, &s.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrSchemaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RegistryRepository) UpdateSchema(ctx context.Context, schema *domain.Schema) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE schemas SET name = $2, category = $3, description = $4 WHERE id = $1`,
		schema.ID, schema.Name, schema.Category, schema.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSchemaNotFound
	}
	return nil
}

func (r *RegistryRepository) DeleteSchema(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schemas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSchemaNotFound
	}
	return nil
}

// --- Schema versions ---

func (r *RegistryRepository) CreateSchemaVersion(ctx context.Context, version *domain.SchemaVersion) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO schema_versions (id, schema_id, semantic_version, status, specification, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		version.ID, version.SchemaID, version.SemanticVersion, version.Status,
		version.Specification, version.Description, version.CreatedAt)
	return err
}

func (r *RegistryRepository) GetSchemaVersion(ctx context.Context, id string) (*domain.SchemaVersion, error) {
	var v domain.SchemaVersion
	err := r.pool.QueryRow(ctx,
		`SELECT id, schema_id, semantic_version, status, specification, description, created_at, updated_at
		 FROM schema_versions WHERE id = $1`,
		id).Scan(&v.ID, &v.SchemaID, &v.SemanticVersion, &v.Status, &v.Specification, &v.Description, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrSchemaVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *RegistryRepository) UpdateSchemaVersion(ctx context.Context, version *domain.SchemaVersion) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE schema_versions SET status = $2, specification = $3, description = $4, updated_at = $5 WHERE id = $1`,
		version.ID, version.Status, version.Specification, version.Description, version.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSchemaVersionNotFound
	}
	return nil
}

func (r *RegistryRepository) DeleteSchemaVersion(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schema_versions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSchemaVersionNotFound
	}
	return nil
}
