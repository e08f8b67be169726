// Command aftermath runs the post-exchange grand strategy world.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/seberin/aftermath/internal/api"
	"github.com/seberin/aftermath/internal/config"
	"github.com/seberin/aftermath/internal/engine"
	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/persistence"
	"github.com/seberin/aftermath/internal/resources"
	"github.com/seberin/aftermath/internal/worldgen"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Aftermath: nuclear grand strategy turn resolver", "seed", cfg.Seed)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate World State ─────────────────────────────────
	var nations []*nation.Nation
	var territories []*worldgen.Territory
	var res map[string]*resources.TerritoryResources
	var marks int
	startTurn := 0

	var sim *engine.Simulation

	if db.HasWorldState() {
		slog.Info("found saved world state, loading...")

		nations, err = db.LoadNations()
		if err != nil {
			slog.Error("failed to load nations", "error", err)
			os.Exit(1)
		}
		territories, res, err = db.LoadTerritories()
		if err != nil {
			slog.Error("failed to load territories", "error", err)
			os.Exit(1)
		}

		if turnStr, err := db.GetMeta("last_turn"); err == nil && turnStr != "" {
			if t, err := strconv.Atoi(turnStr); err == nil {
				startTurn = t
			}
		}

		sim = engine.NewSimulation(cfg.Seed, nations, territories, res)
		sim.Turn = startTurn

		if loaded, err := db.LoadMarks(); err == nil {
			sim.Marks = loaded
			marks = len(loaded)
		}
		if events, err := db.RecentEvents(200); err == nil {
			sim.Events = events
		}

		slog.Info("world state restored",
			"nations", len(nations),
			"territories", len(territories),
			"fallout_zones", marks,
			"turn", startTurn,
		)
	} else {
		slog.Info("no saved state found, generating new world...")

		genCfg := worldgen.DefaultGenConfig()
		genCfg.Seed = cfg.Seed
		territories, res = worldgen.Generate(genCfg)

		nations = foundingPowers()
		assignTerritories(territories, nations)

		sim = engine.NewSimulation(cfg.Seed, nations, territories, res)

		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	slog.Info("world ready",
		"nations", len(nations),
		"territories", len(territories),
	)

	// ── Turn Loop ─────────────────────────────────────────────────────
	loop := engine.NewLoop(sim)
	loop.Interval = cfg.TurnInterval
	loop.OnTurn = func(turn int) {
		if turn%cfg.AutosaveTurns == 0 {
			if err := db.SaveWorldState(sim); err != nil {
				slog.Error("autosave failed", "error", err, "turn", turn)
			}
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("AFTERMATH_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Loop:     loop,
		DB:       db,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
		Origins:  cfg.CORSOrigins,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		loop.Stop()
	}()

	fmt.Printf("\nAftermath is live: %d nations over %d territories.\n", len(nations), len(territories))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	if startTurn > 0 {
		fmt.Printf("Resuming from turn %d\n", startTurn)
	}
	fmt.Println("Starting turn loop... (Ctrl+C to stop)")

	loop.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Turn loop stopped. World state saved.")
}

// foundingPowers returns the scenario's starting nations.
func foundingPowers() []*nation.Nation {
	return []*nation.Nation{
		{
			ID: "atlantica", Name: "Atlantica", Leader: "President Hale",
			Position: geo.LatLon{Lat: 40, Lon: -98}, Population: 310, FoodSupply: 100,
			Missiles: 40, Warheads: map[int]int{1: 20, 5: 12, 50: 6},
			Defense: 18, Production: 90, Uranium: 60, Intel: 55,
			Morale: 70, Approval: 60, RadiationMitigation: 0.35, TechLevel: 4,
			Council: nation.SeatPermanent,
		},
		{
			ID: "velistan", Name: "Velistan", Leader: "Premier Orlov",
			Position: geo.LatLon{Lat: 56, Lon: 61}, Population: 240, FoodSupply: 85,
			Missiles: 45, Warheads: map[int]int{1: 25, 5: 15, 50: 8},
			Defense: 14, Production: 75, Uranium: 80, Intel: 60,
			Morale: 55, Approval: 50, RadiationMitigation: 0.25, TechLevel: 4,
			Council: nation.SeatPermanent,
		},
		{
			ID: "meridia", Name: "Meridia", Leader: "Chancellor Weiss",
			Position: geo.LatLon{Lat: 51, Lon: 10}, Population: 140, FoodSupply: 95,
			Missiles: 12, Warheads: map[int]int{1: 8, 5: 4},
			Defense: 22, Production: 85, Uranium: 20, Intel: 45,
			Morale: 75, Approval: 65, RadiationMitigation: 0.4, TechLevel: 4,
			Council: nation.SeatElected, Mediating: true,
		},
		{
			ID: "koryndia", Name: "Koryndia", Leader: "Chairman Sun",
			Position: geo.LatLon{Lat: 35, Lon: 104}, Population: 420, FoodSupply: 70,
			Missiles: 30, Warheads: map[int]int{1: 18, 5: 10, 50: 3},
			Defense: 12, Production: 95, Uranium: 45, Intel: 50,
			Morale: 60, Approval: 55, RadiationMitigation: 0.2, TechLevel: 3,
		},
		{
			ID: "sudara", Name: "Sudara", Leader: "Prime Minister Rao",
			Position: geo.LatLon{Lat: 21, Lon: 78}, Population: 380, FoodSupply: 60,
			Missiles: 18, Warheads: map[int]int{1: 12, 5: 6},
			Defense: 8, Production: 65, Uranium: 30, Intel: 35,
			Morale: 65, Approval: 60, RadiationMitigation: 0.1, TechLevel: 3,
		},
	}
}

// assignTerritories hands each generated territory to the nearest founding
// power. Ties break on declaration order, which is fixed.
func assignTerritories(territories []*worldgen.Territory, nations []*nation.Nation) {
	for _, t := range territories {
		best := nation.ID("")
		bestDist := 0.0
		for _, n := range nations {
			d := geo.DistanceKm(t.Position, n.Position)
			if best == "" || d < bestDist {
				best = n.ID
				bestDist = d
			}
		}
		t.Controller = best
	}
}
