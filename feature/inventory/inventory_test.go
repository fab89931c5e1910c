package inventory

import (
	"context"
	"errors"
	"testing"

	"netbox-reconciler/core/database"
	"netbox-reconciler/core/journal"
	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/netbox/mocks"
	"netbox-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reportStore struct {
	mock.Mock
}

func (m *reportStore) Store(ctx context.Context, kind, id string, report any) (string, error) {
	args := m.Called(ctx, kind, id, report)
	return args.String(0), args.Error(1)
}

func newTestJournal(t *testing.T) *journal.Journal {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	j := journal.New(db, zap.NewNop())
	require.NoError(t, j.Migrate(context.Background()))
	return j
}

func newTestService(t *testing.T, j Journal, reports ReportStore) (*Service, *mocks.Client) {
	t.Helper()
	registry, err := NewRegistry()
	require.NoError(t, err)

	client := new(mocks.Client)
	engine := reconcile.NewEngine(client, registry, zap.NewNop())
	return NewService(engine, j, reports, zap.NewNop()), client
}

func TestKinds_RegistryIsValid(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"device_role", "device_type", "manufacturer", "platform", "site", "tenant"},
		registry.Names(),
	)

	dt, ok := registry.Get("device_type")
	require.True(t, ok)
	assert.Equal(t, "model", dt.NaturalKey)
}

func TestService_ReconcileRecordsRun(t *testing.T) {
	j := newTestJournal(t)
	reports := new(reportStore)
	svc, client := newTestService(t, j, reports)

	client.On("List", mock.Anything, "dcim/manufacturers", map[string]string{"name": "Cisco"}).
		Return([]netbox.Object{}, nil)
	client.On("Create", mock.Anything, "dcim/manufacturers", map[string]any{"name": "Cisco", "slug": "cisco"}).
		Return(netbox.Object{"id": 1, "name": "Cisco", "slug": "cisco"}, nil)
	reports.On("Store", mock.Anything, "manufacturer", mock.Anything, mock.Anything).
		Return("reports/manufacturer/x.json", nil)

	resp := svc.Reconcile(context.Background(), reconcile.Request{
		Kind: "manufacturer",
		Data: map[string]any{"name": "Cisco"},
	}, SourceCLI)

	require.Nil(t, resp.Error)
	assert.True(t, resp.Changed)
	assert.Equal(t, "created", resp.Action)
	assert.Equal(t, "manufacturer Cisco created", resp.Message)
	assert.Equal(t, "reports/manufacturer/x.json", resp.ReportKey)
	assert.NotEmpty(t, resp.RunID)

	run, err := svc.Run(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, "manufacturer", run.Kind)
	assert.Equal(t, "Cisco", run.Key)
	assert.Equal(t, "created", run.Action)
	assert.Equal(t, SourceCLI, run.Source)
	assert.Equal(t, "reports/manufacturer/x.json", run.ReportKey)
}

func TestService_FailureRecordsErrorCode(t *testing.T) {
	j := newTestJournal(t)
	svc, client := newTestService(t, j, nil)

	client.On("List", mock.Anything, "dcim/manufacturers", map[string]string{"name": "Nope"}).
		Return([]netbox.Object{}, nil)

	resp := svc.Reconcile(context.Background(), reconcile.Request{
		Kind: "platform",
		Data: map[string]any{"name": "IOS", "manufacturer": "Nope"},
	}, SourceHTTP)

	require.NotNil(t, resp.Error)
	assert.Equal(t, reconcile.CodeReferenceNotFound, resp.Error.Code)

	runs, err := svc.Runs(context.Background(), journal.Filter{Kind: "platform"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, string(reconcile.CodeReferenceNotFound), runs[0].ErrorCode)
	assert.Equal(t, "failed", runs[0].Stage)
}

func TestService_ArchiveFailureDoesNotFailResult(t *testing.T) {
	reports := new(reportStore)
	svc, client := newTestService(t, nil, reports)

	client.On("List", mock.Anything, "tenancy/tenants", map[string]string{"name": "Acme"}).
		Return([]netbox.Object{{"id": 4, "name": "Acme", "slug": "acme"}}, nil)
	reports.On("Store", mock.Anything, "tenant", mock.Anything, mock.Anything).
		Return("", errors.New("bucket gone"))

	resp := svc.Reconcile(context.Background(), reconcile.Request{
		Kind: "tenant",
		Data: map[string]any{"name": "Acme"},
	}, SourceCLI)

	assert.Nil(t, resp.Error)
	assert.False(t, resp.Changed)
	assert.Empty(t, resp.ReportKey)
	assert.False(t, svc.JournalEnabled())

	runs, err := svc.Runs(context.Background(), journal.Filter{})
	assert.NoError(t, err)
	assert.Nil(t, runs)
}

func TestService_Kinds(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	kinds := svc.Kinds()
	require.Len(t, kinds, 6)

	var platform KindInfo
	for _, k := range kinds {
		if k.Name == "platform" {
			platform = k
		}
	}
	assert.Equal(t, "dcim/platforms", platform.Endpoint)
	assert.Equal(t, "map", platform.Fields["napalm_args"])
	assert.Equal(t, "manufacturer", platform.References["manufacturer"])
}
