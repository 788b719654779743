package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/VaughnVernon/SchemaMinder-sub003/internal/adapters/primary/http/middleware"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/auth"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	apperrors "github.com/VaughnVernon/SchemaMinder-sub003/internal/core/errors"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// RegistryHandler exposes the registry hierarchy over HTTP. Mutations flow
// through the registry service, which broadcasts a change message to the
// registry's room after each successful write.
type RegistryHandler struct {
	service      ports.RegistryService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(service ports.RegistryService, errorHandler *ErrorHandler, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RegisterRoutes mounts the registry routes. Callers must wrap the router in
// JWT middleware; every actor here comes from validated claims.
func (h *RegistryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/registries/{registryID}", func(r chi.Router) {
		r.Get("/snapshot", h.HandleSnapshot)

		r.Post("/products", h.HandleCreateProduct)
		r.Put("/products/{productID}", h.HandleUpdateProduct)
		r.Delete("/products/{productID}", h.HandleDeleteProduct)

		r.Post("/products/{productID}/domains", h.HandleCreateDomain)
		r.Put("/domains/{domainID}", h.HandleUpdateDomain)
		r.Delete("/domains/{domainID}", h.HandleDeleteDomain)

		r.Post("/domains/{domainID}/contexts", h.HandleCreateContext)
		r.Put("/contexts/{contextID}", h.HandleUpdateContext)
		r.Delete("/contexts/{contextID}", h.HandleDeleteContext)

		r.Post("/contexts/{contextID}/schemas", h.HandleCreateSchema)
		r.Put("/schemas/{schemaID}", h.HandleUpdateSchema)
		r.Delete("/schemas/{schemaID}", h.HandleDeleteSchema)

		r.Post("/schemas/{schemaID}/versions", h.HandleCreateSchemaVersion)
		r.Put("/versions/{versionID}", h.HandleUpdateSchemaVersion)
		r.Delete("/versions/{versionID}", h.HandleDeleteSchemaVersion)
	})
}

// actorFromRequest builds the acting identity from JWT claims and the URL.
func (h *RegistryHandler) actorFromRequest(r *http.Request) (ports.Actor, bool) {
	claims, ok := r.Context().Value(mw.UserClaimsKey).(*auth.Claims)
	if !ok {
		return ports.Actor{}, false
	}
	return ports.Actor{
		UserID:     claims.UserID.String(),
		TenantID:   claims.TenantID.String(),
		RegistryID: chi.URLParam(r, "registryID"),
	}, true
}

func (h *RegistryHandler) requireActor(w http.ResponseWriter, r *http.Request) (ports.Actor, bool) {
	actor, ok := h.actorFromRequest(r)
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return ports.Actor{}, false
	}
	return actor, true
}

func (h *RegistryHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return false
	}
	return true
}

// HandleSnapshot returns the full hierarchy for one registry in display order.
func (h *RegistryHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireActor(w, r); !ok {
		return
	}

	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "registryID"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// --- Products ---

// ProductRequest is the request body for creating or updating a product.
type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (h *RegistryHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), ports.CreateProductParams{
		Actor:       actor,
		Name:        req.Name,
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteCreated(w, product)
}

func (h *RegistryHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), ports.UpdateProductParams{
		Actor:       actor,
		ProductID:   chi.URLParam(r, "productID"),
		Name:        req.Name,
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

func (h *RegistryHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	err := h.service.DeleteProduct(r.Context(), ports.DeleteParams{
		Actor: actor,
		ID:    chi.URLParam(r, "productID"),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteNoContent(w)
}

// --- Domains ---

// DomainRequest is the request body for creating or updating a domain.
type DomainRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (h *RegistryHandler) HandleCreateDomain(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req DomainRequest
	if !h.decode(w, r, &req) {
		return
	}

	dom, err := h.service.CreateDomain(r.Context(), ports.CreateDomainParams{
		Actor:       actor,
		ProductID:   chi.URLParam(r, "productID"),
		Name:        req.Name,
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteCreated(w, dom)
}

func (h *RegistryHandler) HandleUpdateDomain(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req DomainRequest
	if !h.decode(w, r, &req) {
		return
	}

	dom, err := h.service.UpdateDomain(r.Context(), ports.UpdateDomainParams{
		Actor:       actor,
		DomainID:    chi.URLParam(r, "domainID"),
		Name:        req.Name,
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, dom)
}

func (h *RegistryHandler) HandleDeleteDomain(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	err := h.service.DeleteDomain(r.Context(), ports.DeleteParams{
		Actor: actor,
		ID:    chi.URLParam(r, "domainID"),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteNoContent(w)
}

// --- Contexts ---

// ContextRequest is the request body for creating or updating a context.
type ContextRequest struct {
	Namespace   string `json:"namespace"`
	Description string `json:"description,omitempty"`
}

func (h *RegistryHandler) HandleCreateContext(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req ContextRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.CreateContext(r.Context(), ports.CreateContextParams{
		Actor:       actor,
		DomainID:    chi.URLParam(r, "domainID"),
		Namespace:   req.Namespace,
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteCreated(w, c)
}

func (h *RegistryHandler) HandleUpdateContext(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req ContextRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.UpdateContext(r.Context(), ports.UpdateContextParams{
		Actor:       actor,
		ContextID:   chi.URLParam(r, "contextID"),
		Namespace:   req.Namespace,
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (h *RegistryHandler) HandleDeleteContext(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	err := h.service.DeleteContext(r.Context(), ports.DeleteParams{
		Actor: actor,
		ID:    chi.URLParam(r, "contextID"),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteNoContent(w)
}

// --- Schemas ---

// SchemaRequest is the request body for creating or updating a schema.
type SchemaRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

func (h *RegistryHandler) HandleCreateSchema(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req SchemaRequest
	if !h.decode(w, r, &req) {
		return
	}

	schema, err := h.service.CreateSchema(r.Context(), ports.CreateSchemaParams{
		Actor:       actor,
		ContextID:   chi.URLParam(r, "contextID"),
		Name:        req.Name,
		Category:    domain.SchemaCategory(req.Category),
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteCreated(w, schema)
}

func (h *RegistryHandler) HandleUpdateSchema(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req SchemaRequest
	if !h.decode(w, r, &req) {
		return
	}

	schema, err := h.service.UpdateSchema(r.Context(), ports.UpdateSchemaParams{
		Actor:       actor,
		SchemaID:    chi.URLParam(r, "schemaID"),
		Name:        req.Name,
		Category:    domain.SchemaCategory(req.Category),
		Description: req.Description,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, schema)
}

func (h *RegistryHandler) HandleDeleteSchema(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	err := h.service.DeleteSchema(r.Context(), ports.DeleteParams{
		Actor: actor,
		ID:    chi.URLParam(r, "schemaID"),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteNoContent(w)
}

// --- Schema versions ---

// SchemaVersionRequest is the request body for creating or updating a version.
type SchemaVersionRequest struct {
	SemanticVersion string `json:"semanticVersion,omitempty"`
	Specification   string `json:"specification,omitempty"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status,omitempty"`
}

func (h *RegistryHandler) HandleCreateSchemaVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req SchemaVersionRequest
	if !h.decode(w, r, &req) {
		return
	}

	version, err := h.service.CreateSchemaVersion(r.Context(), ports.CreateSchemaVersionParams{
		Actor:           actor,
		SchemaID:        chi.URLParam(r, "schemaID"),
		SemanticVersion: req.SemanticVersion,
		Specification:   req.Specification,
		Description:     req.Description,
		Status:          domain.VersionStatus(req.Status),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteCreated(w, version)
}

func (h *RegistryHandler) HandleUpdateSchemaVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req SchemaVersionRequest
	if !h.decode(w, r, &req) {
		return
	}

	version, err := h.service.UpdateSchemaVersion(r.Context(), ports.UpdateSchemaVersionParams{
		Actor:         actor,
		VersionID:     chi.URLParam(r, "versionID"),
		Specification: req.Specification,
		Description:   req.Description,
		Status:        domain.VersionStatus(req.Status),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, version)
}

func (h *RegistryHandler) HandleDeleteSchemaVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	err := h.service.DeleteSchemaVersion(r.Context(), ports.DeleteParams{
		Actor: actor,
		ID:    chi.URLParam(r, "versionID"),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteNoContent(w)
}
