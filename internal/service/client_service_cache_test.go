package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/policy"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/models"
)

func accounts() []models.Record {
	return []models.Record{
		{ID: "401", Payload: models.Payload{"id": "401", "label": "Fournisseurs"}},
		{ID: "411", Payload: models.Payload{"id": "411", "label": "Clients"}},
		{ID: "512", Payload: models.Payload{"id": "512", "label": "Banque"}},
	}
}

func TestCacheReader_ReadNeverRefreshed(t *testing.T) {
	env := newTestEnv(t, testConfig())

	result := env.services.Cache.Read(context.Background(), models.ReadRequest{Table: "chart_of_accounts", CompanyID: "acme"})
	assert.False(t, result.Fresh)
	assert.Nil(t, result.LastSyncedAt)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Error)
}

func TestCacheReader_CommitRefreshThenRead(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	req := models.ReadRequest{Table: "chart_of_accounts", CompanyID: "acme"}

	require.NoError(t, env.services.Cache.CommitRefresh(ctx, "chart_of_accounts", "acme", accounts()))

	result := env.services.Cache.Read(ctx, req)
	assert.True(t, result.Fresh)
	assert.True(t, result.FromCache)
	assert.Equal(t, accounts(), result.Records)
	require.NotNil(t, result.LastSyncedAt)
	assert.Equal(t, baseTime, result.LastSyncedAt.UTC())

	// another company sees nothing
	other := env.services.Cache.Read(ctx, models.ReadRequest{Table: "chart_of_accounts", CompanyID: "globex"})
	assert.False(t, other.Fresh)
	assert.Empty(t, other.Records)

	env.clock.Advance(policy.TTLConfiguration)
	stale := env.services.Cache.Read(ctx, req)
	assert.False(t, stale.Fresh)
	assert.Equal(t, accounts(), stale.Records, "stale records are still served")
}

func TestCacheReader_CommitRefreshReplaces(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	require.NoError(t, env.services.Cache.CommitRefresh(ctx, "chart_of_accounts", "acme", accounts()))
	require.NoError(t, env.services.Cache.CommitRefresh(ctx, "chart_of_accounts", "acme", accounts()[:1]))

	result := env.services.Cache.Read(ctx, models.ReadRequest{Table: "chart_of_accounts", CompanyID: "acme"})
	assert.Equal(t, accounts()[:1], result.Records)
}

func TestCacheReader_CommitPartialKeepsOthers(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	require.NoError(t, env.services.Cache.CommitRefresh(ctx, "chart_of_accounts", "acme", accounts()))

	changed := models.Record{ID: "512", Payload: models.Payload{"id": "512", "label": "Banque Populaire"}}
	env.clock.Advance(time.Minute)
	require.NoError(t, env.services.Cache.CommitPartial(ctx, "chart_of_accounts", "acme", []models.Record{changed}))

	result := env.services.Cache.Read(ctx, models.ReadRequest{Table: "chart_of_accounts", CompanyID: "acme"})
	require.Len(t, result.Records, 3)
	assert.Equal(t, changed, result.Records[2])
	assert.Equal(t, baseTime.Add(time.Minute), result.LastSyncedAt.UTC())
}

func TestCacheReader_Filter(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	require.NoError(t, env.services.Cache.CommitRefresh(ctx, "chart_of_accounts", "acme", accounts()))

	result := env.services.Cache.Read(ctx, models.ReadRequest{
		Table:     "chart_of_accounts",
		CompanyID: "acme",
		Filter:    models.Filter{IDs: []string{"411", "512"}, OrderBy: "label", Limit: 1},
	})
	require.Len(t, result.Records, 1)
	assert.Equal(t, "512", result.Records[0].ID)
}

func TestCacheReader_InvalidateAndLastSyncTime(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	assert.Nil(t, env.services.Cache.LastSyncTime(ctx, "journals", "acme"))

	require.NoError(t, env.services.Cache.CommitRefresh(ctx, "journals", "acme", nil))
	last := env.services.Cache.LastSyncTime(ctx, "journals", "acme")
	require.NotNil(t, last)
	assert.Equal(t, baseTime, last.UTC())

	require.NoError(t, env.services.Cache.Invalidate(ctx, "journals", "acme"))
	assert.Nil(t, env.services.Cache.LastSyncTime(ctx, "journals", "acme"))
	assert.False(t, env.services.Cache.Read(ctx, models.ReadRequest{Table: "journals", CompanyID: "acme"}).Fresh)
}

func TestCacheReader_InvalidRequest(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	result := env.services.Cache.Read(ctx, models.ReadRequest{})
	assert.Equal(t, ErrInvalidRequest.Error(), result.Error)
	assert.NotNil(t, result.Records)

	assert.ErrorIs(t, env.services.Cache.CommitRefresh(ctx, "", "acme", nil), ErrInvalidRequest)
	assert.ErrorIs(t, env.services.Cache.CommitPartial(ctx, "", "acme", nil), ErrInvalidRequest)
}

func TestCacheReader_NilStorage(t *testing.T) {
	svc := NewClientServices(nil, nil, nil, testConfig(), logger.Nop())
	ctx := context.Background()

	result := svc.Cache.Read(ctx, models.ReadRequest{Table: "invoices"})
	assert.False(t, result.Fresh)
	assert.Empty(t, result.Records)
	assert.Equal(t, store.ErrStorageUnavailable.Error(), result.Error)

	assert.ErrorIs(t, svc.Cache.CommitRefresh(ctx, "invoices", "", nil), store.ErrStorageUnavailable)
	assert.ErrorIs(t, svc.Cache.Invalidate(ctx, "invoices", ""), store.ErrStorageUnavailable)
	assert.Nil(t, svc.Cache.LastSyncTime(ctx, "invoices", ""))
}
