package lanecache

import (
	"testing"
	"time"

	"github.com/abw750/ferryAPI3/internal/models"
)

func TestGet_FreshWithinTTL(t *testing.T) {
	c := New()
	observed := time.Now()
	c.Put(1, models.SlotUpper, models.Lane{VesselName: "M/V A"}, observed)

	got, ok := c.Get(1, models.SlotUpper, observed.Add(TTL-time.Second))
	if !ok {
		t.Fatalf("Get = not ok, want a fresh hit just under TTL")
	}
	if got.VesselName != "M/V A" {
		t.Errorf("VesselName = %q, want %q", got.VesselName, "M/V A")
	}
}

func TestGet_ExpiredAfterTTL(t *testing.T) {
	c := New()
	observed := time.Now()
	c.Put(1, models.SlotUpper, models.Lane{VesselName: "M/V A"}, observed)

	_, ok := c.Get(1, models.SlotUpper, observed.Add(TTL+time.Second))
	if ok {
		t.Fatalf("Get = ok, want a miss once past TTL")
	}
}

func TestGet_MissingEntry(t *testing.T) {
	c := New()
	if _, ok := c.Get(1, models.SlotUpper, time.Now()); ok {
		t.Fatalf("Get on empty cache = ok, want miss")
	}
}

func TestGet_IndependentPerRouteAndSlot(t *testing.T) {
	c := New()
	now := time.Now()
	c.Put(1, models.SlotUpper, models.Lane{VesselName: "route1-upper"}, now)
	c.Put(1, models.SlotLower, models.Lane{VesselName: "route1-lower"}, now)
	c.Put(2, models.SlotUpper, models.Lane{VesselName: "route2-upper"}, now)

	got, ok := c.Get(1, models.SlotLower, now)
	if !ok || got.VesselName != "route1-lower" {
		t.Errorf("Get(1, lower) = %+v, ok=%v, want route1-lower", got, ok)
	}

	got, ok = c.Get(2, models.SlotUpper, now)
	if !ok || got.VesselName != "route2-upper" {
		t.Errorf("Get(2, upper) = %+v, ok=%v, want route2-upper", got, ok)
	}
}
