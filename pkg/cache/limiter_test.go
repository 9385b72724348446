package cache

import (
	"context"
	"testing"
	"time"
)

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	ok, n, err := l.Allow(context.Background(), 1, 1)
	if !ok || n != 0 || err != nil {
		t.Errorf("Expected nil limiter to allow, got %v %d %v", ok, n, err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil limiter returned %v", err)
	}
}

func TestKey(t *testing.T) {
	day := time.Date(2026, 10, 14, 23, 30, 0, 0, time.FixedZone("EAT", 3*3600))
	if got := Key(7, day); got != "usage:7:2026-10-14" {
		t.Errorf("Unexpected key %q", got)
	}
}
