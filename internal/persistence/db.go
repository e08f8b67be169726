// Package persistence provides SQLite-based world state storage: nations,
// fallout zones, territories with their deposits, and the event log.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/seberin/aftermath/internal/engine"
	"github.com/seberin/aftermath/internal/fallout"
	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/resources"
	"github.com/seberin/aftermath/internal/worldgen"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		leader TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		population REAL NOT NULL,
		food_supply REAL NOT NULL,
		missiles INTEGER NOT NULL,
		defense REAL NOT NULL,
		production REAL NOT NULL,
		uranium REAL NOT NULL,
		intel REAL NOT NULL,
		morale REAL NOT NULL,
		opinion REAL NOT NULL,
		approval REAL NOT NULL,
		radiation_mitigation REAL NOT NULL,
		council TEXT NOT NULL,
		mediating INTEGER NOT NULL,
		peace_turns INTEGER NOT NULL,
		tech_level INTEGER NOT NULL,
		warheads_json TEXT NOT NULL,
		alliances_json TEXT NOT NULL,
		influence_json TEXT,
		reputation_json TEXT,
		trust_json TEXT,
		fallout_json TEXT
	);

	CREATE TABLE IF NOT EXISTS fallout_marks (
		id TEXT PRIMARY KEY,
		mark_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS territories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		controller TEXT NOT NULL,
		resources_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasWorldState reports whether a saved world exists to resume.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM nations"); err != nil {
		return false
	}
	return count > 0
}

// SaveNations writes all nations to the database (full replace). Nested
// blocks are stored as JSON columns; nil blocks round-trip as NULL.
func (db *DB) SaveNations(nations []*nation.Nation) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM nations"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO nations
		(id, name, leader, lat, lon, population, food_supply, missiles,
		 defense, production, uranium, intel, morale, opinion, approval,
		 radiation_mitigation, council, mediating, peace_turns, tech_level,
		 warheads_json, alliances_json, influence_json, reputation_json,
		 trust_json, fallout_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range nations {
		warheadsJSON, _ := json.Marshal(n.Warheads)
		alliancesJSON, _ := json.Marshal(n.Alliances)

		mediating := 0
		if n.Mediating {
			mediating = 1
		}

		_, err := stmt.Exec(
			n.ID, n.Name, n.Leader, n.Position.Lat, n.Position.Lon,
			n.Population, n.FoodSupply, n.Missiles, n.Defense, n.Production,
			n.Uranium, n.Intel, n.Morale, n.Opinion, n.Approval,
			n.RadiationMitigation, n.Council, mediating, n.PeaceTurns, n.TechLevel,
			string(warheadsJSON), string(alliancesJSON),
			marshalNullable(n.Influence), marshalNullable(n.Reputation),
			marshalNullable(n.Trust), marshalNullable(n.Fallout),
		)
		if err != nil {
			return fmt.Errorf("insert nation %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// marshalNullable JSON-encodes a lazily-initialized block, storing NULL
// for blocks that were never touched.
func marshalNullable(v any) any {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return string(b)
}

type nationRow struct {
	ID                  string          `db:"id"`
	Name                string          `db:"name"`
	Leader              string          `db:"leader"`
	Lat                 float64         `db:"lat"`
	Lon                 float64         `db:"lon"`
	Population          float64         `db:"population"`
	FoodSupply          float64         `db:"food_supply"`
	Missiles            int             `db:"missiles"`
	Defense             float64         `db:"defense"`
	Production          float64         `db:"production"`
	Uranium             float64         `db:"uranium"`
	Intel               float64         `db:"intel"`
	Morale              float64         `db:"morale"`
	Opinion             float64         `db:"opinion"`
	Approval            float64         `db:"approval"`
	RadiationMitigation float64         `db:"radiation_mitigation"`
	Council             string          `db:"council"`
	Mediating           int             `db:"mediating"`
	PeaceTurns          int             `db:"peace_turns"`
	TechLevel           int             `db:"tech_level"`
	WarheadsJSON        string          `db:"warheads_json"`
	AlliancesJSON       string          `db:"alliances_json"`
	InfluenceJSON       sql.NullString  `db:"influence_json"`
	ReputationJSON      sql.NullString  `db:"reputation_json"`
	TrustJSON           sql.NullString  `db:"trust_json"`
	FalloutJSON         sql.NullString  `db:"fallout_json"`
}

// LoadNations restores all nations from the database.
func (db *DB) LoadNations() ([]*nation.Nation, error) {
	var rows []nationRow
	if err := db.conn.Select(&rows, "SELECT * FROM nations"); err != nil {
		return nil, fmt.Errorf("load nations: %w", err)
	}

	nations := make([]*nation.Nation, 0, len(rows))
	for _, r := range rows {
		n := &nation.Nation{
			ID:                  nation.ID(r.ID),
			Name:                r.Name,
			Leader:              r.Leader,
			Position:            geo.LatLon{Lat: r.Lat, Lon: r.Lon},
			Population:          r.Population,
			FoodSupply:          r.FoodSupply,
			Missiles:            r.Missiles,
			Defense:             r.Defense,
			Production:          r.Production,
			Uranium:             r.Uranium,
			Intel:               r.Intel,
			Morale:              r.Morale,
			Opinion:             r.Opinion,
			Approval:            r.Approval,
			RadiationMitigation: r.RadiationMitigation,
			Council:             nation.CouncilSeat(r.Council),
			Mediating:           r.Mediating != 0,
			PeaceTurns:          r.PeaceTurns,
			TechLevel:           r.TechLevel,
		}

		if err := json.Unmarshal([]byte(r.WarheadsJSON), &n.Warheads); err != nil {
			return nil, fmt.Errorf("nation %s warheads: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.AlliancesJSON), &n.Alliances); err != nil {
			return nil, fmt.Errorf("nation %s alliances: %w", r.ID, err)
		}
		if r.InfluenceJSON.Valid {
			if err := json.Unmarshal([]byte(r.InfluenceJSON.String), &n.Influence); err != nil {
				return nil, fmt.Errorf("nation %s influence: %w", r.ID, err)
			}
		}
		if r.ReputationJSON.Valid {
			if err := json.Unmarshal([]byte(r.ReputationJSON.String), &n.Reputation); err != nil {
				return nil, fmt.Errorf("nation %s reputation: %w", r.ID, err)
			}
		}
		if r.TrustJSON.Valid {
			if err := json.Unmarshal([]byte(r.TrustJSON.String), &n.Trust); err != nil {
				return nil, fmt.Errorf("nation %s trust: %w", r.ID, err)
			}
		}
		if r.FalloutJSON.Valid {
			if err := json.Unmarshal([]byte(r.FalloutJSON.String), &n.Fallout); err != nil {
				return nil, fmt.Errorf("nation %s fallout: %w", r.ID, err)
			}
		}

		nations = append(nations, n)
	}

	return nations, nil
}

// SaveMarks writes all fallout marks (full replace).
func (db *DB) SaveMarks(marks []*fallout.Mark) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM fallout_marks"); err != nil {
		return err
	}

	for _, m := range marks {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal mark %s: %w", m.ID, err)
		}
		if _, err := tx.Exec("INSERT INTO fallout_marks (id, mark_json) VALUES (?, ?)", m.ID, string(b)); err != nil {
			return fmt.Errorf("insert mark %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// LoadMarks restores all fallout marks.
func (db *DB) LoadMarks() ([]*fallout.Mark, error) {
	var blobs []string
	if err := db.conn.Select(&blobs, "SELECT mark_json FROM fallout_marks"); err != nil {
		return nil, fmt.Errorf("load marks: %w", err)
	}

	marks := make([]*fallout.Mark, 0, len(blobs))
	for _, b := range blobs {
		var m fallout.Mark
		if err := json.Unmarshal([]byte(b), &m); err != nil {
			return nil, fmt.Errorf("unmarshal mark: %w", err)
		}
		marks = append(marks, &m)
	}
	return marks, nil
}

// SaveTerritories writes territories with their resource deposits (full
// replace).
func (db *DB) SaveTerritories(territories []*worldgen.Territory, res map[string]*resources.TerritoryResources) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM territories"); err != nil {
		return err
	}

	for _, t := range territories {
		b, err := json.Marshal(res[t.ID])
		if err != nil {
			return fmt.Errorf("marshal resources %s: %w", t.ID, err)
		}
		_, err = tx.Exec(
			"INSERT INTO territories (id, name, lat, lon, controller, resources_json) VALUES (?, ?, ?, ?, ?, ?)",
			t.ID, t.Name, t.Position.Lat, t.Position.Lon, t.Controller, string(b),
		)
		if err != nil {
			return fmt.Errorf("insert territory %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// LoadTerritories restores territories and the resource map.
func (db *DB) LoadTerritories() ([]*worldgen.Territory, map[string]*resources.TerritoryResources, error) {
	type row struct {
		ID            string  `db:"id"`
		Name          string  `db:"name"`
		Lat           float64 `db:"lat"`
		Lon           float64 `db:"lon"`
		Controller    string  `db:"controller"`
		ResourcesJSON string  `db:"resources_json"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM territories"); err != nil {
		return nil, nil, fmt.Errorf("load territories: %w", err)
	}

	territories := make([]*worldgen.Territory, 0, len(rows))
	resMap := make(map[string]*resources.TerritoryResources, len(rows))
	for _, r := range rows {
		territories = append(territories, &worldgen.Territory{
			ID:         r.ID,
			Name:       r.Name,
			Position:   geo.LatLon{Lat: r.Lat, Lon: r.Lon},
			Controller: nation.ID(r.Controller),
		})
		var tr resources.TerritoryResources
		if err := json.Unmarshal([]byte(r.ResourcesJSON), &tr); err != nil {
			return nil, nil, fmt.Errorf("unmarshal resources %s: %w", r.ID, err)
		}
		resMap[r.ID] = &tr
	}

	return territories, resMap, nil
}

// SaveEvents writes the event ring (full replace, matching the in-memory
// retention window).
func (db *DB) SaveEvents(events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, oldest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT turn, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys return an empty string
// without error.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SaveWorldState performs a full save of all world state.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	slog.Info("saving world state",
		"nations", len(sim.Nations),
		"territories", len(sim.Territories),
		"fallout_zones", len(sim.Marks),
	)

	if err := db.SaveNations(sim.Nations); err != nil {
		return fmt.Errorf("save nations: %w", err)
	}
	if err := db.SaveMarks(sim.Marks); err != nil {
		return fmt.Errorf("save marks: %w", err)
	}
	if err := db.SaveTerritories(sim.Territories, sim.Resources); err != nil {
		return fmt.Errorf("save territories: %w", err)
	}
	if err := db.SaveEvents(sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_turn", fmt.Sprintf("%d", sim.Turn)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	return nil
}
