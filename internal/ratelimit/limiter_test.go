package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(1, 2)
	now := time.Now()

	if !l.Allow("ip:1", now) {
		t.Fatalf("expected first request allowed")
	}
	if !l.Allow("ip:1", now) {
		t.Fatalf("expected second request allowed")
	}
	if l.Allow("ip:1", now) {
		t.Fatalf("expected third request limited")
	}

	later := now.Add(1500 * time.Millisecond)
	if !l.Allow("ip:1", later) {
		t.Fatalf("expected refill to allow after time")
	}
}

func TestLimiterDifferentKeys(t *testing.T) {
	l := NewLimiter(1, 1)
	now := time.Now()

	if !l.Allow("ip:1", now) {
		t.Fatalf("expected first key allowed")
	}
	if !l.Allow("ip:2", now) {
		t.Fatalf("expected second key allowed")
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", l.Len())
	}
}

func TestLimiterDisabled(t *testing.T) {
	cases := []struct {
		name string
		l    *Limiter
		key  string
	}{
		{name: "nil limiter", l: nil, key: "ip:1"},
		{name: "zero rate", l: NewLimiter(0, 5), key: "ip:1"},
		{name: "zero burst", l: NewLimiter(5, 0), key: "ip:1"},
		{name: "empty key", l: NewLimiter(1, 1), key: ""},
	}

	now := time.Now()
	for _, tc := range cases {
		for i := 0; i < 5; i++ {
			if !tc.l.Allow(tc.key, now) {
				t.Fatalf("%s: expected request %d allowed", tc.name, i)
			}
		}
	}
}

func TestLimiterSweep(t *testing.T) {
	l := NewLimiter(1, 2)
	now := time.Now()

	l.Allow("idle", now)
	l.Allow("busy", now.Add(time.Second))

	if removed := l.Sweep(now.Add(2500 * time.Millisecond)); removed != 1 {
		t.Fatalf("expected 1 bucket swept, got %d", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("expected busy key to remain, got %d keys", l.Len())
	}
}
