package fallout

import (
	"math"
	"testing"

	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/nation"
)

func TestMarkGrowsThenDecays(t *testing.T) {
	m := NewMark("m1", geo.LatLon{Lat: 40, Lon: -100}, 50, 10)

	// Growth window: intensity and radius climb toward targets.
	prevIntensity := m.Intensity
	prevRadius := m.RadiusKm
	for turn := 11; turn <= 10+m.DecayDelay; turn++ {
		if !m.Tick(turn) {
			t.Fatalf("mark pruned during growth window at turn %d", turn)
		}
		if m.Intensity < prevIntensity || m.RadiusKm < prevRadius {
			t.Fatalf("mark shrank during growth: intensity %v→%v radius %v→%v", prevIntensity, m.Intensity, prevRadius, m.RadiusKm)
		}
		prevIntensity = m.Intensity
		prevRadius = m.RadiusKm
	}

	// Past the delay: intensity decays every turn.
	for turn := 11 + m.DecayDelay; turn < 20+m.DecayDelay; turn++ {
		m.Tick(turn)
		if m.Intensity >= prevIntensity {
			t.Fatalf("intensity did not decay at turn %d: %v >= %v", turn, m.Intensity, prevIntensity)
		}
		prevIntensity = m.Intensity
	}
}

func TestMarkPrunedWhenFaded(t *testing.T) {
	m := NewMark("m1", geo.LatLon{}, 1, 0)
	alive := true
	turn := 0
	for alive && turn < 1000 {
		turn++
		alive = m.Tick(turn)
	}
	if alive {
		t.Fatal("mark never faded below the prune threshold")
	}
	if m.Intensity >= PruneIntensity {
		t.Fatalf("pruned mark still at intensity %v", m.Intensity)
	}
}

func TestRestrikeResetsDecayClock(t *testing.T) {
	m := NewMark("m1", geo.LatLon{}, 30, 0)
	for turn := 1; turn <= 10; turn++ {
		m.Tick(turn)
	}
	decayed := m.Intensity

	m.Restrike(50, 10)
	if m.LastStrikeTurn != 10 {
		t.Fatalf("expected last strike turn 10, got %d", m.LastStrikeTurn)
	}
	m.Tick(11)
	if m.Intensity <= decayed {
		t.Fatalf("expected growth after restrike, got %v <= %v", m.Intensity, decayed)
	}
}

func TestSeverityBands(t *testing.T) {
	tests := []struct {
		intensity float64
		want      Severity
	}{
		{0, SeverityNone},
		{0.29, SeverityNone},
		{0.3, SeverityElevated},
		{0.59, SeverityElevated},
		{0.6, SeveritySevere},
		{0.89, SeveritySevere},
		{0.9, SeverityDeadly},
		{1.5, SeverityDeadly},
		{-1, SeverityNone},
		{math.NaN(), SeverityNone},
	}
	for _, tt := range tests {
		if got := SeverityLevel(tt.intensity); got != tt.want {
			t.Fatalf("SeverityLevel(%v) = %s, want %s", tt.intensity, got, tt.want)
		}
	}
}

func TestApplyEffectsAccruesInsideRadiusOnly(t *testing.T) {
	inside := &nation.Nation{ID: "near", Position: geo.LatLon{Lat: 40, Lon: -100}, Population: 100, FoodSupply: 50}
	outside := &nation.Nation{ID: "far", Position: geo.LatLon{Lat: -40, Lon: 100}, Population: 100, FoodSupply: 50}

	m := NewMark("m1", geo.LatLon{Lat: 40, Lon: -100}, 80, 0)
	m.Intensity = 0.8
	m.RadiusKm = 500

	ApplyEffects([]*Mark{m}, []*nation.Nation{inside, outside})

	fx := inside.Fallout
	if fx == nil {
		t.Fatal("expected fallout block initialized for nation inside the zone")
	}
	if fx.RadiationSickness <= 0 || fx.Hunger <= 0 || fx.Instability <= 0 || fx.RefugeeFlow <= 0 {
		t.Fatalf("expected all effects accrued, got %+v", fx)
	}
	if inside.Population >= 100 || inside.FoodSupply >= 50 {
		t.Fatalf("expected population and food reduced, got pop %v food %v", inside.Population, inside.FoodSupply)
	}

	if outside.Fallout != nil {
		t.Fatalf("nation outside the zone accrued effects: %+v", outside.Fallout)
	}
	if outside.Population != 100 {
		t.Fatalf("nation outside the zone lost population: %v", outside.Population)
	}
}

func TestApplyEffectsSkipsInvalidPositions(t *testing.T) {
	bad := &nation.Nation{ID: "bad", Position: geo.LatLon{Lat: math.NaN(), Lon: 0}, Population: 100}
	m := NewMark("m1", geo.LatLon{}, 80, 0)
	m.RadiusKm = 20000

	ApplyEffects([]*Mark{m}, []*nation.Nation{bad})
	if bad.Fallout != nil {
		t.Fatal("expected nation with malformed position to be skipped")
	}
}

func TestDecayEffectsApproachesZeroWithoutCrossing(t *testing.T) {
	n := &nation.Nation{ID: "a"}
	fx := n.EnsureFallout()
	fx.RadiationSickness = 10
	fx.Hunger = 4
	fx.Instability = 2
	fx.RefugeeFlow = 1

	for i := 0; i < 500; i++ {
		DecayEffects([]*nation.Nation{n})
	}

	if fx.RadiationSickness <= 0 || fx.RadiationSickness >= 10 {
		t.Fatalf("expected decay toward but not past zero, got %v", fx.RadiationSickness)
	}
}

func TestSeverityTableRecordsWorstInRangeMark(t *testing.T) {
	n := &nation.Nation{ID: "a", Position: geo.LatLon{Lat: 10, Lon: 10}}
	clear := &nation.Nation{ID: "b", Position: geo.LatLon{Lat: -60, Lon: -120}}

	weak := NewMark("w", geo.LatLon{Lat: 10, Lon: 10}, 0, 0)
	weak.Intensity = 0.4
	weak.RadiusKm = 300
	strong := NewMark("s", geo.LatLon{Lat: 11, Lon: 10}, 0, 0)
	strong.Intensity = 0.95
	strong.RadiusKm = 300

	table := make(SeverityTable)
	table.Observe([]*Mark{weak, strong}, []*nation.Nation{n, clear})

	if table["a"] != SeverityDeadly {
		t.Fatalf("expected deadly for worst in-range mark, got %s", table["a"])
	}
	if table["b"] != SeverityNone {
		t.Fatalf("expected none for nation outside all zones, got %s", table["b"])
	}
}
