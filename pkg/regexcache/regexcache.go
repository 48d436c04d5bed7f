// Package regexcache provides a thread-safe cache for compiled regular
// expressions, so checks that run once per scan do not recompile patterns.
//
// Usage:
//
//	re := regexcache.MustGet(`Disallow: (.*)`)
//	for _, m := range re.FindAllStringSubmatch(body, -1) { ... }
package regexcache

import (
	"regexp"
	"sync"
)

var cache sync.Map

// Get returns the compiled regexp for pattern, compiling it on first use.
func Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// MustGet is like Get but panics on an invalid pattern.
// Use it only with constant patterns.
func MustGet(pattern string) *regexp.Regexp {
	re, err := Get(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Clear drops every cached pattern. Tests only.
func Clear() {
	cache.Range(func(key, _ any) bool {
		cache.Delete(key)
		return true
	})
}

// Size returns the number of cached patterns.
func Size() int {
	n := 0
	cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
