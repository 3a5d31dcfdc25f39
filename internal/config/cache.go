package config

import (
	"strings"
	"time"
)

// Cache key strategies.  Each names the request parts hashed into the key.
const (
	CacheKeyRoute            = "route"
	CacheKeyRouteQuery       = "route_query"
	CacheKeyMethodRoute      = "method_route"
	CacheKeyMethodRouteQuery = "method_route_query"
)

const (
	defaultCacheTTL     = 30 * time.Second
	defaultCacheMaxBody = 1 << 20
)

// CacheConfig drives the Redis response cache in front of the campground
// pages.  Prefix namespaces both the stored pages and the generation counter
// that writes bump to invalidate them.  Responses larger than MaxBodyBytes
// are served but not stored; zero stores every size.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// Cacheable reports whether responses to method are stored.
func (c CacheConfig) Cacheable(method string) bool {
	return c.Methods[strings.ToUpper(method)]
}

// LoadCacheConfig reads the CACHE_* variables.  Out-of-range values fall
// back to their defaults rather than disabling the cache.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methodSet(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", defaultCacheTTL),
		KeyStrategy:  strings.ToLower(envStr("CACHE_KEY_STRATEGY", CacheKeyRouteQuery)),
		Prefix:       strings.TrimSuffix(envStr("CACHE_PREFIX", "fishcamp:cache"), ":"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", defaultCacheMaxBody),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}
	if cfg.MaxBodyBytes < 0 {
		cfg.MaxBodyBytes = 0
	}
	switch cfg.KeyStrategy {
	case CacheKeyRoute, CacheKeyRouteQuery, CacheKeyMethodRoute, CacheKeyMethodRouteQuery:
	default:
		cfg.KeyStrategy = CacheKeyRouteQuery
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = map[string]bool{"GET": true}
	}
	return cfg
}

// methodSet parses a comma separated method list, upper-casing each entry.
func methodSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range strings.Split(list, ",") {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			set[m] = true
		}
	}
	return set
}
