package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// CachePolicy is the "standard" shared TTL tier for public GET responses.
type CachePolicy struct {
	MaxAge               time.Duration
	SMaxAge              time.Duration
	StaleWhileRevalidate time.Duration
}

func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		MaxAge:               5 * time.Minute,
		SMaxAge:              time.Hour,
		StaleWhileRevalidate: 24 * time.Hour,
	}
}

// Header renders the Cache-Control value. Zero fields take the defaults.
func (p CachePolicy) Header() string {
	def := DefaultCachePolicy()
	if p.MaxAge <= 0 {
		p.MaxAge = def.MaxAge
	}
	if p.SMaxAge <= 0 {
		p.SMaxAge = def.SMaxAge
	}
	if p.StaleWhileRevalidate <= 0 {
		p.StaleWhileRevalidate = def.StaleWhileRevalidate
	}
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		int64(p.MaxAge/time.Second), int64(p.SMaxAge/time.Second), int64(p.StaleWhileRevalidate/time.Second))
}

func (p CachePolicy) apply(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", p.Header())
}
