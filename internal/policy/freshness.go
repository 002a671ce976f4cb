// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package policy

import (
	"sort"
	"time"
)

// Tier groups collections that share a time-to-live.
type Tier int

const (
	// TierTransactional covers financial transactions. It is also the tier of
	// every unknown collection.
	TierTransactional Tier = iota
	// TierConfiguration covers slowly changing configuration-like data.
	TierConfiguration
	// TierReference covers counterparties and catalogue data.
	TierReference
	// TierKPI covers aggregated dashboard values.
	TierKPI
)

// TTL values of the four tiers.
const (
	TTLConfiguration = time.Hour
	TTLTransactional = 15 * time.Minute
	TTLReference     = 30 * time.Minute
	TTLKPI           = 5 * time.Minute
)

func (t Tier) String() string {
	switch t {
	case TierConfiguration:
		return "configuration"
	case TierReference:
		return "reference"
	case TierKPI:
		return "kpi"
	default:
		return "transactional"
	}
}

// TTL returns the time-to-live of the tier.
func (t Tier) TTL() time.Duration {
	switch t {
	case TierConfiguration:
		return TTLConfiguration
	case TierReference:
		return TTLReference
	case TierKPI:
		return TTLKPI
	default:
		return TTLTransactional
	}
}

var tables = map[string]Tier{
	"chart_of_accounts":  TierConfiguration,
	"journals":           TierConfiguration,
	"accounting_periods": TierConfiguration,
	"companies":          TierConfiguration,
	"user_companies":     TierConfiguration,

	"invoices":            TierTransactional,
	"journal_entries":     TierTransactional,
	"journal_entry_lines": TierTransactional,
	"payments":            TierTransactional,
	"bank_transactions":   TierTransactional,

	"third_parties": TierReference,
	"articles":      TierReference,

	"kpi_cache": TierKPI,
}

// ReferenceTables are the configuration collections preloaded for a company
// so that forms keep working offline.
var ReferenceTables = []string{"chart_of_accounts", "journals", "accounting_periods"}

// FreshnessPolicy maps collection names to tiers.
type FreshnessPolicy struct {
	tables map[string]Tier
}

// NewFreshnessPolicy returns a policy over the known collections. Extra
// entries override or extend the built-in table.
func NewFreshnessPolicy(extra map[string]Tier) *FreshnessPolicy {
	merged := make(map[string]Tier, len(tables)+len(extra))
	for name, tier := range tables {
		merged[name] = tier
	}
	for name, tier := range extra {
		merged[name] = tier
	}
	return &FreshnessPolicy{tables: merged}
}

var defaultFreshness = NewFreshnessPolicy(nil)

// TierOf returns the tier of table. Unknown tables are transactional so
// that anything unclassified is refreshed often rather than served stale.
func (p *FreshnessPolicy) TierOf(table string) Tier {
	if tier, ok := p.tables[table]; ok {
		return tier
	}
	return TierTransactional
}

// TTL returns the time-to-live of table.
func (p *FreshnessPolicy) TTL(table string) time.Duration {
	return p.TierOf(table).TTL()
}

// IsFresh reports whether data of table refreshed at lastSyncedAt may still
// be served at now. A zero lastSyncedAt is never fresh.
func (p *FreshnessPolicy) IsFresh(lastSyncedAt time.Time, table string, now time.Time) bool {
	if lastSyncedAt.IsZero() {
		return false
	}
	return now.Sub(lastSyncedAt) < p.TTL(table)
}

// Cacheable reports whether table is one of the collections kept in the
// local store.
func (p *FreshnessPolicy) Cacheable(table string) bool {
	_, ok := p.tables[table]
	return ok
}

// Tables returns the names of all cacheable collections, sorted.
func (p *FreshnessPolicy) Tables() []string {
	out := make([]string, 0, len(p.tables))
	for name := range p.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TierOf, TTL, IsFresh and Cacheable use the built-in table.

func TierOf(table string) Tier { return defaultFreshness.TierOf(table) }

func TTL(table string) time.Duration { return defaultFreshness.TTL(table) }

func IsFresh(lastSyncedAt time.Time, table string, now time.Time) bool {
	return defaultFreshness.IsFresh(lastSyncedAt, table, now)
}

func Cacheable(table string) bool { return defaultFreshness.Cacheable(table) }
