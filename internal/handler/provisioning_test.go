package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/internal/models"
	"backend/internal/permissions"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvisioningService struct {
	schema       permissions.Schema
	client       *models.Client
	provisionErr error
	toggleErr    error

	lastInput       models.ProvisionClientInput
	lastToggledPath string
}

func (s *stubProvisioningService) Schema() permissions.Schema { return s.schema }

func (s *stubProvisioningService) ProvisionClient(input models.ProvisionClientInput) (*models.Client, error) {
	s.lastInput = input
	if s.provisionErr != nil {
		return nil, s.provisionErr
	}
	return s.client, nil
}

func (s *stubProvisioningService) ListClients() ([]*models.Client, error) {
	if s.client == nil {
		return nil, nil
	}
	return []*models.Client{s.client}, nil
}

func (s *stubProvisioningService) GetClient(publicID string) (*models.Client, error) {
	if s.client == nil || s.client.PublicID != publicID {
		return nil, service.ErrClientNotFound
	}
	return s.client, nil
}

func (s *stubProvisioningService) TogglePermission(publicID, path string) (*models.Client, error) {
	s.lastToggledPath = path
	if s.toggleErr != nil {
		return nil, s.toggleErr
	}
	if s.client == nil || s.client.PublicID != publicID {
		return nil, service.ErrClientNotFound
	}
	return s.client, nil
}

func newProvisioningRouter(svc service.ProvisioningService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProvisioningHandler(svc, nil, zap.NewNop())

	router := gin.New()
	router.GET("/api/admin/permission-schema", h.GetSchema)
	router.POST("/api/admin/clients", h.CreateClient)
	router.GET("/api/admin/clients", h.ListClients)
	router.GET("/api/admin/clients/:id", h.GetClient)
	router.PATCH("/api/admin/clients/:id/permissions/toggle", h.TogglePermission)
	return router
}

func TestGetSchemaListsSectionsAndLeaves(t *testing.T) {
	svc := &stubProvisioningService{schema: permissions.DefaultSchema()}
	router := newProvisioningRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/permission-schema", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sections []struct {
			Key    string `json:"key"`
			Leaves []struct {
				Key     string `json:"key"`
				Default bool   `json:"default"`
			} `json:"leaves"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Sections)

	keys := make([]string, 0, len(body.Sections))
	for _, section := range body.Sections {
		keys = append(keys, section.Key)
		assert.NotEmpty(t, section.Leaves)
	}
	assert.Contains(t, keys, "navigation")
	assert.Contains(t, keys, "analytics.sms")
}

func TestCreateClientReturnsCreated(t *testing.T) {
	svc := &stubProvisioningService{
		client: &models.Client{
			PublicID:    "6d9a3c42-0000-4000-8000-000000000001",
			BusinessID:  "acme",
			Permissions: models.PermissionMap{"navigation.dashboard": true},
		},
	}
	router := newProvisioningRouter(svc)

	payload, _ := json.Marshal(models.ProvisionClientInput{
		BusinessID: "acme",
		Passcode:   "12345",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/clients", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "acme", svc.lastInput.BusinessID)
	assert.NotContains(t, w.Body.String(), "12345", "passcode must never be echoed back")
}

func TestCreateClientMissingFieldsRejected(t *testing.T) {
	svc := &stubProvisioningService{}
	router := newProvisioningRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/clients", bytes.NewBufferString(`{"business_id":"acme"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateClientValidationErrorsMapToStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid passcode", service.ErrInvalidPasscode, http.StatusBadRequest},
		{"missing business id", service.ErrMissingBusinessID, http.StatusBadRequest},
		{"duplicate business", service.ErrBusinessAlreadyProvisioned, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubProvisioningService{provisionErr: tc.err}
			router := newProvisioningRouter(svc)

			payload := `{"business_id":"acme","passcode":"12345"}`
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/clients", bytes.NewBufferString(payload))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestGetClientNotFound(t *testing.T) {
	svc := &stubProvisioningService{}
	router := newProvisioningRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients/unknown-id", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTogglePermissionUnknownPathRejected(t *testing.T) {
	svc := &stubProvisioningService{
		client:    &models.Client{PublicID: "abc"},
		toggleErr: permissions.ErrUnknownPath,
	}
	router := newProvisioningRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/clients/abc/permissions/toggle", bytes.NewBufferString(`{"path":"navigation.nonsense"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "navigation.nonsense", svc.lastToggledPath)
}

func TestTogglePermissionFlipsLeaf(t *testing.T) {
	svc := &stubProvisioningService{
		client: &models.Client{
			PublicID:    "abc",
			BusinessID:  "acme",
			Permissions: models.PermissionMap{"navigation.settings": true},
		},
	}
	router := newProvisioningRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/clients/abc/permissions/toggle", bytes.NewBufferString(`{"path":"navigation.settings"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "navigation.settings", svc.lastToggledPath)

	var body struct {
		Client models.Client `json:"client"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Client.Permissions["navigation.settings"])
}
