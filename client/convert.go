package client

import (
	"context"

	"github.com/nextgencrm/nextgencrm-go/client/cache"
)

// ConversionAPI is the slice of the HTTP client the converter needs.
type ConversionAPI interface {
	ConvertLead(ctx context.Context, id string) (*ConversionResult, error)
}

// Converter orchestrates a lead conversion from the client side: guard
// against known-converted leads, one request, then a single atomic pass
// of cache effects. Conversion is not an optimistic mutation — the
// server creates records the client cannot predict, so the cache is
// only touched after the response.
type Converter struct {
	API   ConversionAPI
	Cache *cache.Store
}

func NewConverter(api ConversionAPI, store *cache.Store) *Converter {
	return &Converter{API: api, Cache: store}
}

// Convert runs the conversion workflow for one lead.
//
// The cached lead's converted flag is a fast-path guard only; the
// server remains the authority, so a stale cache never causes a wrong
// outcome, just a spared or wasted request. On success the lead entry
// is evicted and every list that conversion can reshape goes stale in
// one batch, so no subscriber observes a half-updated cache. Any
// failure, a duplicate-conversion answer included, leaves the cache
// untouched; ErrAlreadyConverted stays distinguishable so callers can
// treat it as informational rather than alarming.
func (c *Converter) Convert(ctx context.Context, leadID string) (*ConversionResult, error) {
	leadKey := cache.EntityKey(cache.TypeLead, leadID)

	if cached, ok := c.Cache.Get(leadKey); ok {
		if doc, ok := cached.(cache.Document); ok && leadIsConverted(doc) {
			return nil, ErrAlreadyConverted
		}
	}

	result, err := c.API.ConvertLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	c.applyEffects(leadKey)
	return result, nil
}

// statusConverted mirrors the server's terminal lead status.
const statusConverted = "converted_to_opportunity"

// leadIsConverted covers both ways a cached lead can be known converted:
// the flag, or the terminal status when the flag is absent.
func leadIsConverted(doc cache.Document) bool {
	if converted, _ := doc["converted"].(bool); converted {
		return true
	}
	status, _ := doc["status"].(string)
	return status == statusConverted
}

func (c *Converter) applyEffects(leadKey cache.Key) {
	c.Cache.Batch(func(b *cache.Batch) {
		b.Remove(leadKey)
		b.InvalidateLists(cache.TypeLead)
		b.InvalidateLists(cache.TypeOrganization)
		b.InvalidateLists(cache.TypeContact)
		b.InvalidateLists(cache.TypeOpportunity)
		b.MarkStale(cache.DashboardKey())
	})
}
