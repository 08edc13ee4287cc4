package sam

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestAdaptClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	r := New(3, 0.5)
	for i := 0; i < 1000; i++ {
		r.Adapt([]Kind{LogNormal, RateSelect, LogNormal}, 0.0001, rng)
		for i, v := range r {
			if v < 0.0001 || v > 1 {
				t.Fatalf("rate[%d] = %v out of [0.0001, 1]", i, v)
			}
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	r := New(4, 0.2)
	r.Adapt([]Kind{LogNormal, LogNormal, LogNormal, LogNormal}, 0.0001, rng)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(r) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(r))
	}
	for i := range r {
		if got[i] != r[i] {
			t.Errorf("rate[%d] = %v, want %v", i, got[i], r[i])
		}
	}
}

func TestCopyIsDeep(t *testing.T) {
	r := New(2, 1.0)
	cp := r.Copy()
	cp[0] = 0.0
	if r[0] != 1.0 {
		t.Fatalf("mutating copy changed original: %v", r[0])
	}
}
