package persistence

import (
	"path/filepath"
	"testing"

	"github.com/seberin/aftermath/internal/engine"
	"github.com/seberin/aftermath/internal/fallout"
	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/resources"
	"github.com/seberin/aftermath/internal/worldgen"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNationRoundTrip(t *testing.T) {
	db := openTestDB(t)

	touched := &nation.Nation{
		ID: "atl", Name: "Atlantica", Leader: "President Hale",
		Position: geo.LatLon{Lat: 40, Lon: -98}, Population: 310,
		Missiles: 40, Warheads: map[int]int{5: 12, 50: 6},
		Defense: 18, Council: nation.SeatPermanent, PeaceTurns: 7,
	}
	touched.EnsureInfluence().Points = 62.5
	touched.EnsureTrust()["vel"] = 15
	touched.EnsureFallout().Hunger = 3.25

	untouched := &nation.Nation{
		ID: "vel", Name: "Velistan", Leader: "Premier Orlov",
		Position: geo.LatLon{Lat: 56, Lon: 61}, Population: 240,
		Warheads: map[int]int{50: 8},
	}

	if err := db.SaveNations([]*nation.Nation{touched, untouched}); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := db.LoadNations()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 nations, got %d", len(loaded))
	}

	byID := make(map[nation.ID]*nation.Nation)
	for _, n := range loaded {
		byID[n.ID] = n
	}

	atl := byID["atl"]
	if atl == nil {
		t.Fatal("atl missing after load")
	}
	if atl.Warheads[50] != 6 || atl.PeaceTurns != 7 || atl.Council != nation.SeatPermanent {
		t.Fatalf("scalar state diverged: %+v", atl)
	}
	if atl.Influence == nil || atl.Influence.Points != 62.5 {
		t.Fatalf("influence block diverged: %+v", atl.Influence)
	}
	if atl.Trust["vel"] != 15 {
		t.Fatalf("trust block diverged: %+v", atl.Trust)
	}
	if atl.Fallout == nil || atl.Fallout.Hunger != 3.25 {
		t.Fatalf("fallout block diverged: %+v", atl.Fallout)
	}

	// Blocks never touched must stay nil after a round trip.
	vel := byID["vel"]
	if vel == nil {
		t.Fatal("vel missing after load")
	}
	if vel.Influence != nil || vel.Reputation != nil || vel.Trust != nil || vel.Fallout != nil {
		t.Fatalf("untouched blocks materialized: %+v", vel)
	}
}

func TestMarksAndTerritoriesRoundTrip(t *testing.T) {
	db := openTestDB(t)

	mark := fallout.NewMark("fz-vel-3", geo.LatLon{Lat: 56, Lon: 61}, 50, 3)
	if err := db.SaveMarks([]*fallout.Mark{mark}); err != nil {
		t.Fatalf("save marks: %v", err)
	}
	marks, err := db.LoadMarks()
	if err != nil {
		t.Fatalf("load marks: %v", err)
	}
	if len(marks) != 1 || marks[0].ID != mark.ID || marks[0].Intensity != mark.Intensity {
		t.Fatalf("mark diverged: %+v", marks)
	}

	terr := []*worldgen.Territory{
		{ID: "t1", Name: "Karamark", Position: geo.LatLon{Lat: 42, Lon: -100}, Controller: "atl"},
	}
	res := map[string]*resources.TerritoryResources{
		"t1": {TerritoryID: "t1", Deposits: []*resources.Deposit{
			{Type: resources.DepositOil, Amount: 80, InitialAmount: 100, DepletionRate: 0.1, LastWarned: resources.LevelWarning},
		}},
	}
	if err := db.SaveTerritories(terr, res); err != nil {
		t.Fatalf("save territories: %v", err)
	}
	loadedTerr, loadedRes, err := db.LoadTerritories()
	if err != nil {
		t.Fatalf("load territories: %v", err)
	}
	if len(loadedTerr) != 1 || loadedTerr[0].Controller != "atl" {
		t.Fatalf("territory diverged: %+v", loadedTerr)
	}
	dep := loadedRes["t1"].Deposits[0]
	if dep.Amount != 80 || dep.LastWarned != resources.LevelWarning {
		t.Fatalf("deposit warning state lost: %+v", dep)
	}
}

func TestEventsRoundTripOldestFirst(t *testing.T) {
	db := openTestDB(t)

	events := []engine.Event{
		{Turn: 1, Description: "first", Category: "strike"},
		{Turn: 2, Description: "second", Category: "fallout"},
		{Turn: 3, Description: "third", Category: "resources"},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatalf("save events: %v", err)
	}

	loaded, err := db.RecentEvents(2)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded))
	}
	if loaded[0].Description != "second" || loaded[1].Description != "third" {
		t.Fatalf("expected oldest-first window, got %+v", loaded)
	}

	// A second save must not duplicate rows.
	if err := db.SaveEvents(events); err != nil {
		t.Fatalf("resave events: %v", err)
	}
	all, err := db.RecentEvents(10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events after resave, got %d", len(all))
	}
}

func TestMetaMissingKeyIsEmpty(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMeta("last_turn")
	if err != nil || v != "" {
		t.Fatalf("expected empty value for missing key, got %q err %v", v, err)
	}

	if err := db.SaveMeta("last_turn", "41"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("last_turn", "42"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	v, err = db.GetMeta("last_turn")
	if err != nil || v != "42" {
		t.Fatalf("expected 42, got %q err %v", v, err)
	}
}
