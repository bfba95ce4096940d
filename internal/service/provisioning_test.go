package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/models"
	"backend/internal/permissions"
)

// fakeClientRepo is an in-memory ClientRepository for service tests.
type fakeClientRepo struct {
	clients map[string]*models.Client // keyed by public_id
	nextID  int64
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*models.Client)}
}

func (f *fakeClientRepo) Create(client *models.Client) error {
	f.nextID++
	client.ID = f.nextID
	stored := *client
	f.clients[client.PublicID] = &stored
	return nil
}

func (f *fakeClientRepo) GetByPublicID(publicID string) (*models.Client, error) {
	client, ok := f.clients[publicID]
	if !ok {
		return nil, nil
	}
	copied := *client
	return &copied, nil
}

func (f *fakeClientRepo) GetByBusinessID(businessID string) (*models.Client, error) {
	for _, client := range f.clients {
		if client.BusinessID == businessID {
			copied := *client
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeClientRepo) GetAll() ([]*models.Client, error) {
	var all []*models.Client
	for _, client := range f.clients {
		copied := *client
		all = append(all, &copied)
	}
	return all, nil
}

func (f *fakeClientRepo) UpdatePermissions(publicID string, perms models.PermissionMap) error {
	client, ok := f.clients[publicID]
	if !ok {
		return nil
	}
	client.Permissions = perms
	return nil
}

func newTestService(t *testing.T) (ProvisioningService, *fakeClientRepo) {
	t.Helper()
	repo := newFakeClientRepo()
	return NewProvisioningService(repo, permissions.DefaultSchema(), zap.NewNop()), repo
}

func TestProvisionClientFillsDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	client, err := svc.ProvisionClient(models.ProvisionClientInput{
		BusinessID: "acme-dental",
		Passcode:   "41592",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, client.PublicID)

	// Every schema leaf populated with its declared default.
	schema := permissions.DefaultSchema()
	assert.Len(t, client.Permissions, len(schema.LeafPaths()))
	assert.True(t, client.Permissions["navigation.dashboard"])
	assert.False(t, client.Permissions["admin.user_management"])
}

func TestProvisionClientDropsUnknownKeys(t *testing.T) {
	svc, _ := newTestService(t)

	client, err := svc.ProvisionClient(models.ProvisionClientInput{
		BusinessID: "acme-dental",
		Passcode:   "41592",
		Permissions: models.PermissionMap{
			"navigation.settings": true,
			"legacy.reports":      true, // stale key from an older schema
		},
	})
	require.NoError(t, err)

	assert.True(t, client.Permissions["navigation.settings"])
	_, ok := client.Permissions["legacy.reports"]
	assert.False(t, ok, "stale keys must never be stored")
}

func TestProvisionClientPasscodeValidation(t *testing.T) {
	svc, _ := newTestService(t)

	for _, passcode := range []string{"", "1234", "123456", "12a45", "12 45", "१२३४५"} {
		_, err := svc.ProvisionClient(models.ProvisionClientInput{
			BusinessID: "acme-dental",
			Passcode:   passcode,
		})
		assert.ErrorIs(t, err, ErrInvalidPasscode, "passcode %q", passcode)
	}
}

func TestProvisionClientMissingBusinessID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProvisionClient(models.ProvisionClientInput{
		BusinessID: "   ",
		Passcode:   "41592",
	})
	assert.ErrorIs(t, err, ErrMissingBusinessID)
}

func TestProvisionClientDuplicateBusiness(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProvisionClient(models.ProvisionClientInput{BusinessID: "acme-dental", Passcode: "41592"})
	require.NoError(t, err)

	_, err = svc.ProvisionClient(models.ProvisionClientInput{BusinessID: "acme-dental", Passcode: "90210"})
	assert.ErrorIs(t, err, ErrBusinessAlreadyProvisioned)
}

func TestTogglePermission(t *testing.T) {
	svc, repo := newTestService(t)

	client, err := svc.ProvisionClient(models.ProvisionClientInput{BusinessID: "acme-dental", Passcode: "41592"})
	require.NoError(t, err)
	require.False(t, client.Permissions["navigation.settings"])

	toggled, err := svc.TogglePermission(client.PublicID, "navigation.settings")
	require.NoError(t, err)
	assert.True(t, toggled.Permissions["navigation.settings"])

	// Persisted, not just returned.
	stored, err := repo.GetByPublicID(client.PublicID)
	require.NoError(t, err)
	assert.True(t, stored.Permissions["navigation.settings"])
}

func TestTogglePermissionUnknownPath(t *testing.T) {
	svc, _ := newTestService(t)

	client, err := svc.ProvisionClient(models.ProvisionClientInput{BusinessID: "acme-dental", Passcode: "41592"})
	require.NoError(t, err)

	_, err = svc.TogglePermission(client.PublicID, "navigation.reports")
	assert.ErrorIs(t, err, permissions.ErrUnknownPath)
}

func TestTogglePermissionClientNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.TogglePermission("no-such-id", "navigation.settings")
	assert.ErrorIs(t, err, ErrClientNotFound)
}
