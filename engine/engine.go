// Package engine resolves filter selections against the facet index:
// matching product ids, would-be facet counts, and the facet value
// listing for the filtering UI.
package engine

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"catalog-engine/domain"
	"catalog-engine/hierarchy"
	"catalog-engine/port"
)

// Config bounds the engine's derived-key lifetimes and fan-out.
type Config struct {
	// TempKeyTTL reclaims derived union/intersection keys. They are
	// content-addressed, so concurrent duplicate computations are
	// redundant, never corrupting.
	TempKeyTTL time.Duration

	// ResultCacheTTL bounds staleness of cached selection results.
	ResultCacheTTL time.Duration

	// BrandListLimit caps the brand facet group.
	BrandListLimit int

	// CountConcurrency caps parallel facet count computations.
	CountConcurrency int
}

func (c *Config) applyDefaults() {
	if c.TempKeyTTL <= 0 {
		c.TempKeyTTL = 5 * time.Minute
	}
	if c.ResultCacheTTL <= 0 {
		c.ResultCacheTTL = 5 * time.Minute
	}
	if c.BrandListLimit <= 0 {
		c.BrandListLimit = 50
	}
	if c.CountConcurrency <= 0 {
		c.CountConcurrency = 8
	}
}

// Engine is stateless per query: the set store is the only shared mutable
// resource, and all per-request memoization lives in an explicit
// QueryCache the caller passes in.
type Engine struct {
	store     port.SetStore
	catalog   port.CatalogStore
	hierarchy *hierarchy.Resolver
	cfg       Config
	log       *slog.Logger
}

func New(store port.SetStore, catalog port.CatalogStore, resolver *hierarchy.Resolver, cfg Config, log *slog.Logger) *Engine {
	cfg.applyDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:     store,
		catalog:   catalog,
		hierarchy: resolver,
		cfg:       cfg,
		log:       log,
	}
}

// QueryCache memoizes facet counts and resolved baseline keys for the
// lifetime of one request. Entries are keyed by selection fingerprints,
// so a cache must never outlive a rebuild of the index.
type QueryCache struct {
	mu        sync.Mutex
	counts    map[string]int64
	baselines map[string]baselineEntry
}

type baselineEntry struct {
	key string
	ok  bool
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		counts:    make(map[string]int64),
		baselines: make(map[string]baselineEntry),
	}
}

func (qc *QueryCache) count(key string) (int64, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	n, ok := qc.counts[key]
	return n, ok
}

func (qc *QueryCache) setCount(key string, n int64) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.counts[key] = n
}

func (qc *QueryCache) baseline(fingerprint string) (baselineEntry, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	entry, ok := qc.baselines[fingerprint]
	return entry, ok
}

func (qc *QueryCache) setBaseline(fingerprint string, entry baselineEntry) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.baselines[fingerprint] = entry
}

// ResolveProductIDs returns the ids of products matching the selection:
// values union within a dimension, dimensions intersect with each other.
// An empty selection is unconstrained and returns every available
// product. Set store failures degrade to an empty result.
func (e *Engine) ResolveProductIDs(ctx context.Context, filters domain.FilterSelection) ([]int64, error) {
	if !hasConstraint(filters) {
		return e.catalog.AvailableProductIDs(ctx)
	}

	cacheKey := resultCacheKey(filters)
	if ids, ok := e.cachedResult(ctx, cacheKey); ok {
		return ids, nil
	}

	key, ok, err := e.selectionKey(ctx, filters, nil)
	if err != nil {
		return e.degraded("resolve product ids", err)
	}
	if !ok {
		return []int64{}, nil
	}

	ids, err := e.store.Members(ctx, key)
	if err != nil {
		return e.degraded("resolve product ids", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	// Set members come back unordered; callers get a stable order.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	e.cacheResult(ctx, cacheKey, ids)
	return ids, nil
}

// CountIfSelected answers "how many products would match if this value
// were additionally selected", with every OTHER dimension's current
// selection still applied. The target dimension's own selections are
// stripped from the baseline, so the result does not depend on whether
// the value (or its siblings) is already selected.
func (e *Engine) CountIfSelected(ctx context.Context, dimensionName, value string, filters domain.FilterSelection, qc *QueryCache) (int64, error) {
	reduced := filters.Without(dimensionName)

	candidateKey, ok, err := e.candidateKey(ctx, dimensionName, value)
	if err != nil {
		return e.degradedCount(dimensionName, value, err)
	}
	if !ok {
		return 0, nil
	}

	countKey := candidateKey + "|" + reduced.Fingerprint()
	if qc != nil {
		if n, ok := qc.count(countKey); ok {
			return n, nil
		}
	}

	n, err := e.countAgainst(ctx, candidateKey, reduced, qc)
	if err != nil {
		return e.degradedCount(dimensionName, value, err)
	}

	if qc != nil {
		qc.setCount(countKey, n)
	}
	return n, nil
}

// CountIfSelectedIn is the precomputed-baseline shortcut: instead of
// re-resolving the reduced selection it intersects the candidate set
// directly against the set stored at baselineKey. It must agree with
// CountIfSelected when baselineKey holds the resolved reduced selection.
func (e *Engine) CountIfSelectedIn(ctx context.Context, dimensionName, value, baselineKey string) (int64, error) {
	candidateKey, ok, err := e.candidateKey(ctx, dimensionName, value)
	if err != nil {
		return e.degradedCount(dimensionName, value, err)
	}
	if !ok {
		return 0, nil
	}
	n, err := e.intersectCardinality(ctx, candidateKey, baselineKey)
	if err != nil {
		return e.degradedCount(dimensionName, value, err)
	}
	return n, nil
}

// candidateKey resolves one (dimension, value) pair to a single set key,
// creating a derived union key when the value expands to several sets.
// ok=false means the value names no live set and counts as zero.
func (e *Engine) candidateKey(ctx context.Context, dimensionName, value string) (string, bool, error) {
	keys, err := e.resolveKeys(ctx, e.dimensionFor(dimensionName), value)
	if err != nil {
		return "", false, err
	}
	if len(keys) == 0 {
		return "", false, nil
	}

	key := keys[0]
	if len(keys) > 1 {
		key = derivedKey("union", keys)
		if _, err := e.store.UnionStore(ctx, key, e.cfg.TempKeyTTL, keys...); err != nil {
			return "", false, err
		}
	}

	exists, err := e.store.Exists(ctx, key)
	if err != nil {
		return "", false, err
	}
	return key, exists, nil
}

func (e *Engine) countAgainst(ctx context.Context, candidateKey string, reduced domain.FilterSelection, qc *QueryCache) (int64, error) {
	if !hasConstraint(reduced) {
		// Facet sets only ever hold available products, so an
		// unconstrained baseline is the candidate set itself.
		return e.store.Cardinality(ctx, candidateKey)
	}

	baselineKey, ok, err := e.selectionKey(ctx, reduced, qc)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return e.intersectCardinality(ctx, candidateKey, baselineKey)
}

func (e *Engine) intersectCardinality(ctx context.Context, a, b string) (int64, error) {
	if a == b {
		return e.store.Cardinality(ctx, a)
	}
	return e.store.InterStore(ctx, derivedKey("inter", []string{a, b}), e.cfg.TempKeyTTL, a, b)
}

// selectionKey materializes the selection into a single store key:
// per-dimension unions intersected across dimensions. ok=false means the
// selection matched nothing. Requires a constrained selection.
func (e *Engine) selectionKey(ctx context.Context, filters domain.FilterSelection, qc *QueryCache) (string, bool, error) {
	fingerprint := filters.Fingerprint()
	if qc != nil {
		if entry, ok := qc.baseline(fingerprint); ok {
			return entry.key, entry.ok, nil
		}
	}

	key, ok, err := e.buildSelectionKey(ctx, filters)
	if err != nil {
		return "", false, err
	}
	if qc != nil {
		qc.setBaseline(fingerprint, baselineEntry{key: key, ok: ok})
	}
	return key, ok, nil
}

func (e *Engine) buildSelectionKey(ctx context.Context, filters domain.FilterSelection) (string, bool, error) {
	dims := make([]string, 0, len(filters))
	for name := range filters {
		if filters.Has(name) {
			dims = append(dims, name)
		}
	}
	sort.Strings(dims)

	dimensionKeys := make([]string, 0, len(dims))
	for _, name := range dims {
		dim := e.dimensionFor(name)

		var keys []string
		for _, value := range filters[name] {
			resolved, err := e.resolveKeys(ctx, dim, value)
			if err != nil {
				return "", false, err
			}
			keys = append(keys, resolved...)
		}
		keys = dedupe(keys)

		// A dimension whose every value resolved to nothing is an
		// empty set; intersecting with it yields nothing.
		if len(keys) == 0 {
			return "", false, nil
		}

		key := keys[0]
		if len(keys) > 1 {
			key = derivedKey("union", keys)
			if _, err := e.store.UnionStore(ctx, key, e.cfg.TempKeyTTL, keys...); err != nil {
				return "", false, err
			}
		}
		dimensionKeys = append(dimensionKeys, key)
	}

	if len(dimensionKeys) == 1 {
		return dimensionKeys[0], true, nil
	}

	key := derivedKey("inter", dimensionKeys)
	if _, err := e.store.InterStore(ctx, key, e.cfg.TempKeyTTL, dimensionKeys...); err != nil {
		return "", false, err
	}
	return key, true, nil
}

func (e *Engine) cachedResult(ctx context.Context, cacheKey string) ([]int64, bool) {
	raw, ok, err := e.store.GetValue(ctx, cacheKey)
	if err != nil {
		e.log.Warn("result cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		e.log.Warn("result cache entry malformed", "err", err)
		return nil, false
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, true
}

func (e *Engine) cacheResult(ctx context.Context, cacheKey string, ids []int64) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := e.store.SetValue(ctx, cacheKey, string(raw), e.cfg.ResultCacheTTL); err != nil {
		e.log.Warn("result cache write failed", "err", err)
	}
}

// degraded turns a set store failure into an empty result. Catalog and
// hierarchy failures still propagate.
func (e *Engine) degraded(op string, err error) ([]int64, error) {
	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		e.log.Error("set store failure, degrading to empty result", "op", op, "err", err)
		return []int64{}, nil
	}
	return nil, err
}

func (e *Engine) degradedCount(dimensionName, value string, err error) (int64, error) {
	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		e.log.Error("set store failure, degrading count to zero",
			"dimension", dimensionName,
			"value", value,
			"err", err,
		)
		return 0, nil
	}
	return 0, err
}

func hasConstraint(filters domain.FilterSelection) bool {
	for name := range filters {
		if filters.Has(name) {
			return true
		}
	}
	return false
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// derivedKey names a temporary union/intersection result by a content
// hash of its sorted inputs, so concurrent identical computations land
// on the same key.
func derivedKey(op string, keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	sum := md5.Sum([]byte(strings.Join(sorted, "|")))
	return "tmp:" + op + ":" + hex.EncodeToString(sum[:])
}

func resultCacheKey(filters domain.FilterSelection) string {
	sum := md5.Sum([]byte(filters.Fingerprint()))
	return "filterResult:" + hex.EncodeToString(sum[:])
}
