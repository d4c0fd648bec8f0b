package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextgencrm/nextgencrm-go/client/cache"
)

func seedConversionCache() (*cache.Store, cache.Key, cache.Key, cache.Key) {
	store := cache.NewStore()
	leadKey := cache.EntityKey(cache.TypeLead, "l1")
	leadList := cache.ListKey(cache.TypeLead, "status=new")
	orgList := cache.ListKey(cache.TypeOrganization, "all")

	store.Set(leadKey, cache.Document{"id": "l1", "first_name": "Maria", "converted": false})
	store.SetList(leadList, cache.List{{"id": "l1", "first_name": "Maria"}}, nil)
	store.SetList(orgList, cache.List{}, nil)
	store.Set(cache.DashboardKey(), cache.Document{"leads": 10})
	return store, leadKey, leadList, orgList
}

func TestConvertSuccessAppliesCacheEffects(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/leads/l1/convert", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Lead converted successfully","organization_id":"o1","contact_id":"c1","opportunity_id":"op1"}`))
	}))
	defer server.Close()

	store, leadKey, leadList, orgList := seedConversionCache()
	conv := NewConverter(NewClient(server.URL, ""), store)

	result, err := conv.Convert(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "o1", result.OrganizationID)
	assert.Equal(t, "c1", result.ContactID)
	require.NotNil(t, result.OpportunityID)
	assert.Equal(t, "op1", *result.OpportunityID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))

	_, ok := store.Get(leadKey)
	assert.False(t, ok, "converted lead evicted")
	assert.True(t, store.IsStale(leadList))
	assert.True(t, store.IsStale(orgList))
	assert.True(t, store.IsStale(cache.DashboardKey()))
}

func TestConvertWithoutOpportunity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Lead converted successfully","organization_id":"o1","contact_id":"c1"}`))
	}))
	defer server.Close()

	store, _, _, _ := seedConversionCache()
	conv := NewConverter(NewClient(server.URL, ""), store)

	result, err := conv.Convert(context.Background(), "l1")
	require.NoError(t, err)
	assert.Nil(t, result.OpportunityID)
}

// A lead the cache already knows is converted never reaches the network.
func TestConvertGuardShortCircuits(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	store := cache.NewStore()
	leadKey := cache.EntityKey(cache.TypeLead, "l1")
	store.Set(leadKey, cache.Document{"id": "l1", "converted": true})

	conv := NewConverter(NewClient(server.URL, ""), store)
	_, err := conv.Convert(context.Background(), "l1")

	assert.ErrorIs(t, err, ErrAlreadyConverted)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

// The terminal status alone marks a lead converted, even when the cached
// document carries no converted flag.
func TestConvertGuardRecognizesTerminalStatus(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	store := cache.NewStore()
	leadKey := cache.EntityKey(cache.TypeLead, "l1")
	store.Set(leadKey, cache.Document{"id": "l1", "status": "converted_to_opportunity"})

	conv := NewConverter(NewClient(server.URL, ""), store)
	_, err := conv.Convert(context.Background(), "l1")

	assert.ErrorIs(t, err, ErrAlreadyConverted)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestConvertServerSaysAlreadyConverted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Lead has already been converted and records still exist"}`))
	}))
	defer server.Close()

	store, leadKey, leadList, _ := seedConversionCache()
	conv := NewConverter(NewClient(server.URL, ""), store)

	_, err := conv.Convert(context.Background(), "l1")
	assert.ErrorIs(t, err, ErrAlreadyConverted)

	// Informational outcome, not a mutation: the cache stays as it was
	// until the next refetch corrects the stale lead.
	_, ok := store.Get(leadKey)
	assert.True(t, ok)
	assert.False(t, store.IsStale(leadList))
}

func TestConvertTransportErrorLeavesCacheUntouched(t *testing.T) {
	store, leadKey, leadList, _ := seedConversionCache()
	// closed server: connection refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	conv := NewConverter(NewClient(server.URL, ""), store)
	_, err := conv.Convert(context.Background(), "l1")

	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	v, ok := store.Get(leadKey)
	require.True(t, ok, "lead entry survives a transport failure")
	assert.Equal(t, false, v.(cache.Document)["converted"])
	assert.False(t, store.IsStale(leadList))
}

func TestConvertOtherServerErrorsSurfaceAsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to convert lead: insert failed"}`))
	}))
	defer server.Close()

	store, leadKey, _, _ := seedConversionCache()
	conv := NewConverter(NewClient(server.URL, ""), store)

	_, err := conv.Convert(context.Background(), "l1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, IsRetryable(err))

	_, ok := store.Get(leadKey)
	assert.True(t, ok, "failed conversion leaves the cache alone")
}

// The conversion effects land as one batch: no subscriber may observe the
// lead evicted while a related list is still fresh.
func TestConvertCacheEffectsAreAtomic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","organization_id":"o1","contact_id":"c1"}`))
	}))
	defer server.Close()

	store, leadKey, leadList, _ := seedConversionCache()

	var observed int
	store.Subscribe(func(k cache.Key) {
		observed++
		_, leadPresent := store.Get(leadKey)
		assert.False(t, leadPresent)
		assert.True(t, store.IsStale(leadList))
	})

	conv := NewConverter(NewClient(server.URL, ""), store)
	_, err := conv.Convert(context.Background(), "l1")
	require.NoError(t, err)
	assert.Greater(t, observed, 0)
}
