package engine

import (
	"encoding/json"
	"sync"

	"main/internal/model"
	"main/internal/strategy"
)

// Cache owns the live strategy unit instances. A unit carries position
// memory across bars, so an instance lives for the process lifetime unless
// the persisted parameters change, in which case it is rebuilt — stale
// parameters must never keep driving signals.
type Cache struct {
	mu      sync.Mutex
	entries map[uint]*cacheEntry
}

type cacheEntry struct {
	unit        strategy.Unit
	fingerprint string
}

// NewCache creates an empty instance cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint]*cacheEntry)}
}

// Get returns the cached unit for a strategy, constructing or rebuilding it
// when absent or when the persisted params no longer match.
func (c *Cache) Get(strat model.Strategy) (strategy.Unit, error) {
	fp := fingerprint(strat)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[strat.ID]; ok && entry.fingerprint == fp {
		return entry.unit, nil
	}

	ctor, err := strategy.Resolve(strat.Unit)
	if err != nil {
		return nil, err
	}
	unit := ctor(strategy.Params(strat.Params))
	c.entries[strat.ID] = &cacheEntry{unit: unit, fingerprint: fp}
	return unit, nil
}

// Invalidate drops the cached instance for one strategy.
func (c *Cache) Invalidate(strategyID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strategyID)
}

// Len reports how many instances are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// fingerprint captures the unit binding and parameter set. Map keys are
// marshaled in sorted order, so equal params yield equal fingerprints.
func fingerprint(strat model.Strategy) string {
	raw, err := json.Marshal(strat.Params)
	if err != nil {
		raw = []byte("{}")
	}
	return strat.Unit + ":" + string(raw)
}
