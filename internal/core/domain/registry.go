package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Pre-defined errors for registry validation.
var (
	ErrNameRequired       = errors.New("name is required")
	ErrNamespaceRequired  = errors.New("namespace is required")
	ErrSpecificationEmpty = errors.New("specification is required")
	ErrInvalidCategory    = errors.New("invalid schema category")
	ErrInvalidStatus      = errors.New("invalid version status")
)

// SchemaCategory classifies what kind of message a schema describes.
type SchemaCategory string

const (
	CategoryCommand     SchemaCategory = "Command"
	CategoryData        SchemaCategory = "Data"
	CategoryDocument    SchemaCategory = "Document"
	CategoryEnvelope    SchemaCategory = "Envelope"
	CategoryEvent       SchemaCategory = "Event"
	CategoryUnspecified SchemaCategory = "Unspecified"
)

// ValidCategory reports whether c is a known schema category.
func ValidCategory(c SchemaCategory) bool {
	switch c {
	case CategoryCommand, CategoryData, CategoryDocument, CategoryEnvelope, CategoryEvent, CategoryUnspecified:
		return true
	}
	return false
}

// VersionStatus is the publication state of a schema version.
type VersionStatus string

const (
	StatusDraft      VersionStatus = "Draft"
	StatusPublished  VersionStatus = "Published"
	StatusDeprecated VersionStatus = "Deprecated"
	StatusRemoved    VersionStatus = "Removed"
)

// ValidStatus reports whether s is a known version status.
func ValidStatus(s VersionStatus) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusDeprecated, StatusRemoved:
		return true
	}
	return false
}

// AllStatuses lists every version status, in lifecycle order.
func AllStatuses() []VersionStatus {
	return []VersionStatus{StatusDraft, StatusPublished, StatusDeprecated, StatusRemoved}
}

// SchemaVersion is a single immutable revision of a schema specification.
type SchemaVersion struct {
	ID              string        `json:"id"`
	SchemaID        string        `json:"schemaId"`
	SemanticVersion string        `json:"semanticVersion"`
	Status          VersionStatus `json:"status"`
	Specification   string        `json:"specification"`
	Description     string        `json:"description,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       *time.Time    `json:"updatedAt,omitempty"`
}

// Schema is a named specification within a context, owning its versions.
type Schema struct {
	ID          string          `json:"id"`
	ContextID   string          `json:"contextId"`
	Name        string          `json:"name"`
	Category    SchemaCategory  `json:"category"`
	Description string          `json:"description,omitempty"`
	Versions    []SchemaVersion `json:"versions,omitempty"`
}

// Context is a bounded namespace within a domain.
type Context struct {
	ID          string   `json:"id"`
	DomainID    string   `json:"domainId"`
	Namespace   string   `json:"namespace"`
	Description string   `json:"description,omitempty"`
	Schemas     []Schema `json:"schemas,omitempty"`
}

// Domain groups contexts under a product.
type Domain struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Contexts    []Context `json:"contexts,omitempty"`
}

// Product is the top of the registry hierarchy.
type Product struct {
	ID          string   `json:"id"`
	RegistryID  string   `json:"registryId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Domains     []Domain `json:"domains,omitempty"`
}

// NewProduct creates a validated product with a fresh ID.
func NewProduct(registryID, name, description string) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	return &Product{
		ID:          uuid.NewString(),
		RegistryID:  registryID,
		Name:        name,
		Description: description,
	}, nil
}

// NewDomain creates a validated domain with a fresh ID.
func NewDomain(productID, name, description string) (*Domain, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	return &Domain{
		ID:          uuid.NewString(),
		ProductID:   productID,
		Name:        name,
		Description: description,
	}, nil
}

// NewContext creates a validated context with a fresh ID.
func NewContext(domainID, namespace, description string) (*Context, error) {
	if strings.TrimSpace(namespace) == "" {
		return nil, ErrNamespaceRequired
	}
	return &Context{
		ID:          uuid.NewString(),
		DomainID:    domainID,
		Namespace:   namespace,
		Description: description,
	}, nil
}

// NewSchema creates a validated schema with a fresh ID.
func NewSchema(contextID, name string, category SchemaCategory, description string) (*Schema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if category == "" {
		category = CategoryUnspecified
	}
	if !ValidCategory(category) {
		return nil, ErrInvalidCategory
	}
	return &Schema{
		ID:          uuid.NewString(),
		ContextID:   contextID,
		Name:        name,
		Category:    category,
		Description: description,
	}, nil
}

// NewSchemaVersion creates a validated version with a fresh ID.
func NewSchemaVersion(schemaID, semanticVersion, specification, description string, status VersionStatus) (*SchemaVersion, error) {
	if !IsValidSemanticVersion(semanticVersion) {
		return nil, ErrInvalidSemanticVersion
	}
	if strings.TrimSpace(specification) == "" {
		return nil, ErrSpecificationEmpty
	}
	if status == "" {
		status = StatusDraft
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return &SchemaVersion{
		ID:              uuid.NewString(),
		SchemaID:        schemaID,
		SemanticVersion: semanticVersion,
		Status:          status,
		Specification:   specification,
		Description:     description,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// Snapshot is an immutable full view of one registry's hierarchy. It is
// replaced wholesale on every reload; nothing should hold references into an
// old snapshot across reloads.
type Snapshot struct {
	RegistryID string    `json:"registryId"`
	Products   []Product `json:"products"`
}

// Normalize recomputes display order at every level. Order is derived, never a
// storage property: names sort naturally (numeric-aware), versions sort by
// semantic version.
func (s *Snapshot) Normalize() {
	sort.SliceStable(s.Products, func(i, j int) bool {
		return naturalLess(s.Products[i].Name, s.Products[j].Name)
	})
	for pi := range s.Products {
		product := &s.Products[pi]
		sort.SliceStable(product.Domains, func(i, j int) bool {
			return naturalLess(product.Domains[i].Name, product.Domains[j].Name)
		})
		for di := range product.Domains {
			dom := &product.Domains[di]
			sort.SliceStable(dom.Contexts, func(i, j int) bool {
				return naturalLess(dom.Contexts[i].Namespace, dom.Contexts[j].Namespace)
			})
			for ci := range dom.Contexts {
				c := &dom.Contexts[ci]
				sort.SliceStable(c.Schemas, func(i, j int) bool {
					return naturalLess(c.Schemas[i].Name, c.Schemas[j].Name)
				})
				for si := range c.Schemas {
					versions := c.Schemas[si].Versions
					sort.SliceStable(versions, func(i, j int) bool {
						return CompareSemanticVersions(versions[i].SemanticVersion, versions[j].SemanticVersion) < 0
					})
				}
			}
		}
	}
}

// ContainsID reports whether any entity in the snapshot carries the given ID.
func (s *Snapshot) ContainsID(id string) bool {
	if s == nil || id == "" {
		return false
	}
	for pi := range s.Products {
		product := &s.Products[pi]
		if product.ID == id {
			return true
		}
		for di := range product.Domains {
			dom := &product.Domains[di]
			if dom.ID == id {
				return true
			}
			for ci := range dom.Contexts {
				c := &dom.Contexts[ci]
				if c.ID == id {
					return true
				}
				for si := range c.Schemas {
					schema := &c.Schemas[si]
					if schema.ID == id {
						return true
					}
					for vi := range schema.Versions {
						if schema.Versions[vi].ID == id {
							return true
						}
					}
				}
			}
		}
	}
	return false
}

// FindSchemaVersion looks up a version by ID anywhere in the snapshot.
func (s *Snapshot) FindSchemaVersion(id string) *SchemaVersion {
	for pi := range s.Products {
		for di := range s.Products[pi].Domains {
			for ci := range s.Products[pi].Domains[di].Contexts {
				for si := range s.Products[pi].Domains[di].Contexts[ci].Schemas {
					schema := &s.Products[pi].Domains[di].Contexts[ci].Schemas[si]
					for vi := range schema.Versions {
						if schema.Versions[vi].ID == id {
							return &schema.Versions[vi]
						}
					}
				}
			}
		}
	}
	return nil
}

// naturalLess orders strings case-insensitively with embedded numbers compared
// numerically, so "item2" sorts before "item10".
func naturalLess(a, b string) bool {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			// Compare the full digit runs numerically.
			si, sj := i, j
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na := strings.TrimLeft(string(ra[si:i]), "0")
			nb := strings.TrimLeft(string(rb[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}
