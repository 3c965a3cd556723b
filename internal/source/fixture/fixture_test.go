package fixture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
)

var anchor = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(50, 7, anchor)
	b := Generate(50, 7, anchor)
	assert.Equal(t, a, b)

	c := Generate(50, 8, anchor)
	assert.NotEqual(t, a, c)

	seen := map[string]bool{}
	for _, p := range a {
		require.NoError(t, p.Validate())
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestSource_FetchPage(t *testing.T) {
	src := New(Options{Count: 25, Now: anchor})
	ctx := context.Background()

	page, err := src.FetchPage(ctx, paging.Request{Offset: 0, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 25, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, "MRN-000001", page.Items[0].MRN)

	page, err = src.FetchPage(ctx, paging.Request{Offset: 20, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.False(t, page.HasMore)

	page, err = src.FetchPage(ctx, paging.Request{Offset: 40, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestSource_Sorted(t *testing.T) {
	src := New(Options{Count: 30, Now: anchor})
	page, err := src.FetchPage(context.Background(), paging.Request{
		Offset: 0, Limit: 30, Sort: patient.SortByMRN, Order: paging.SortOrderDesc,
	})
	require.NoError(t, err)
	assert.Equal(t, "MRN-000030", page.Items[0].MRN)
	assert.Equal(t, "MRN-000001", page.Items[29].MRN)
	assert.True(t, src.ValidSortField(patient.SortByName))
	assert.False(t, src.ValidSortField("ssn"))
}

func TestSource_FailEvery(t *testing.T) {
	src := New(Options{Count: 10, FailEvery: 2, Now: anchor})
	ctx := context.Background()
	req := paging.Request{Limit: 5}

	_, err := src.FetchPage(ctx, req)
	require.NoError(t, err)
	_, err = src.FetchPage(ctx, req)
	require.ErrorIs(t, err, ErrInjected)
	_, err = src.FetchPage(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Fetches())
}

func TestSource_LatencyHonorsContext(t *testing.T) {
	src := New(Options{Count: 10, Latency: time.Hour, Now: anchor})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchPage(ctx, paging.Request{Limit: 5})
	assert.ErrorIs(t, err, context.Canceled)
}
