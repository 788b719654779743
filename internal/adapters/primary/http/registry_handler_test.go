package http

import (
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mw "github.com/VaughnVernon/SchemaMinder-sub003/internal/adapters/primary/http/middleware"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/auth"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	apperrors "github.com/VaughnVernon/SchemaMinder-sub003/internal/core/errors"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/mocks"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRegistryRouter wires the handler under a real JWT middleware so actor
// identity flows exactly as in production.
func newRegistryRouter(service ports.RegistryService) (*chi.Mux, *auth.TokenManager) {
	logger := testLogger()
	tm := auth.NewTokenManager("test-secret", time.Hour)
	handler := NewRegistryHandler(service, NewErrorHandler(logger), logger)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(mw.JWTMiddleware(tm))
		handler.RegisterRoutes(r)
	})
	return router, tm
}

func authedRequest(t *testing.T, tm *auth.TokenManager, userID, tenantID uuid.UUID, method, target, body string) *stdhttp.Request {
	t.Helper()
	token, err := tm.GenerateToken(userID, tenantID)
	require.NoError(t, err)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRegistryHandler_Snapshot(t *testing.T) {
	service := mocks.NewMockRegistryService()
	router, tm := newRegistryRouter(service)

	service.On("Snapshot", mock.Anything, "reg-1").Return(&domain.Snapshot{
		RegistryID: "reg-1",
		Products:   []domain.Product{{ID: "p-1", Name: "Billing", RegistryID: "reg-1"}},
	}, nil)

	req := authedRequest(t, tm, uuid.New(), uuid.New(), stdhttp.MethodGet, "/registries/reg-1/snapshot", "")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&snap))
	assert.Equal(t, "reg-1", snap.RegistryID)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Billing", snap.Products[0].Name)
	service.AssertExpectations(t)
}

func TestRegistryHandler_RequiresToken(t *testing.T) {
	service := mocks.NewMockRegistryService()
	router, _ := newRegistryRouter(service)

	req := httptest.NewRequest(stdhttp.MethodGet, "/registries/reg-1/snapshot", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
	service.AssertNotCalled(t, "Snapshot")
}

func TestRegistryHandler_CreateProduct(t *testing.T) {
	service := mocks.NewMockRegistryService()
	router, tm := newRegistryRouter(service)

	userID := uuid.New()
	tenantID := uuid.New()

	service.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p ports.CreateProductParams) bool {
		return p.Name == "Billing" &&
			p.Actor.UserID == userID.String() &&
			p.Actor.TenantID == tenantID.String() &&
			p.Actor.RegistryID == "reg-1"
	})).Return(&domain.Product{ID: "p-1", RegistryID: "reg-1", Name: "Billing"}, nil)

	req := authedRequest(t, tm, userID, tenantID, stdhttp.MethodPost,
		"/registries/reg-1/products", `{"name":"Billing"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	var product domain.Product
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&product))
	assert.Equal(t, "p-1", product.ID)
	service.AssertExpectations(t)
}

func TestRegistryHandler_CreateProductValidationError(t *testing.T) {
	service := mocks.NewMockRegistryService()
	router, tm := newRegistryRouter(service)

	service.On("CreateProduct", mock.Anything, mock.Anything).Return(nil, domain.ErrNameRequired)

	req := authedRequest(t, tm, uuid.New(), uuid.New(), stdhttp.MethodPost,
		"/registries/reg-1/products", `{"name":""}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
}

func TestRegistryHandler_UpdateSchemaVersion(t *testing.T) {
	service := mocks.NewMockRegistryService()
	router, tm := newRegistryRouter(service)

	service.On("UpdateSchemaVersion", mock.Anything, mock.MatchedBy(func(p ports.UpdateSchemaVersionParams) bool {
		return p.VersionID == "v-1" &&
			p.Specification == `{"type":"object"}` &&
			p.Status == domain.StatusPublished
	})).Return(&domain.SchemaVersion{
		ID:              "v-1",
		SchemaID:        "s-1",
		SemanticVersion: "1.2.0",
		Status:          domain.StatusPublished,
	}, nil)

	req := authedRequest(t, tm, uuid.New(), uuid.New(), stdhttp.MethodPut,
		"/registries/reg-1/versions/v-1",
		`{"specification":"{\"type\":\"object\"}","status":"Published"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var version domain.SchemaVersion
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&version))
	assert.Equal(t, "1.2.0", version.SemanticVersion)
	service.AssertExpectations(t)
}

func TestRegistryHandler_DeleteMissingSchemaReturns404(t *testing.T) {
	service := mocks.NewMockRegistryService()
	router, tm := newRegistryRouter(service)

	service.On("DeleteSchema", mock.Anything, mock.Anything).Return(apperrors.ErrSchemaNotFound)

	req := authedRequest(t, tm, uuid.New(), uuid.New(), stdhttp.MethodDelete,
		"/registries/reg-1/schemas/s-missing", "")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, stdhttp.StatusNotFound, recorder.Code)
}

func TestRegistryHandler_DeleteReturnsNoContent(t *testing.T) {
	service := mocks.NewMockRegistryService()
	router, tm := newRegistryRouter(service)

	service.On("DeleteDomain", mock.Anything, mock.MatchedBy(func(p ports.DeleteParams) bool {
		return p.ID == "d-1"
	})).Return(nil)

	req := authedRequest(t, tm, uuid.New(), uuid.New(), stdhttp.MethodDelete,
		"/registries/reg-1/domains/d-1", "")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, stdhttp.StatusNoContent, recorder.Code)
	service.AssertExpectations(t)
}
