package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game     GameConfig     `toml:"game"`
	Planet   PlanetConfig   `toml:"planet"`
	Ship     ShipConfig     `toml:"ship"`
	Savegame SavegameConfig `toml:"savegame"`
	Data     DataConfig     `toml:"data"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type GameConfig struct {
	Name       string        `toml:"name"`
	Seed       uint64        `toml:"seed"` // 0 = derive from the clock on a new game
	TickRate   time.Duration `toml:"tick_rate"`
	MaxTicks   uint64        `toml:"max_ticks"` // 0 = run until signalled
	SaveEvery  int           `toml:"save_every_ticks"`
	IOQueueLen int           `toml:"io_queue_len"`
}

// Dim is a (row, col) pair in TOML: {row = 64, col = 128}.
type Dim struct {
	Row uint64 `toml:"row"`
	Col uint64 `toml:"col"`
}

type PlanetConfig struct {
	PlanetDim      Dim     `toml:"planet_dim"` // in chunks
	ChunkDim       Dim     `toml:"chunk_dim"`  // in tiles
	TileWidth      float64 `toml:"tile_width"`
	TileHeight     float64 `toml:"tile_height"`
	RenderDistance uint64  `toml:"render_distance"` // chunks around the ship kept resident
	Gravity        float64 `toml:"gravity"`         // downward acceleration, world units/s²
}

type ShipConfig struct {
	Name          string  `toml:"name"`
	SpawnX        float64 `toml:"spawn_x"`
	SpawnY        float64 `toml:"spawn_y"`
	Mass          float64 `toml:"mass"`
	Friction      float64 `toml:"friction"`
	MaxForceX     float64 `toml:"max_force_x"`
	MaxForceY     float64 `toml:"max_force_y"`
	Efficiency    float64 `toml:"efficiency"`  // (0,1]
	Consumption   float64 `toml:"consumption"` // fuel per newton-second
	FuelCapacity  float64 `toml:"fuel_capacity"`
	WeightPerUnit float64 `toml:"fuel_weight_per_unit"`
}

type SavegameConfig struct {
	Root     string `toml:"root"`
	Compress bool   `toml:"compress"` // write chunks as .ron.zst
}

type DataConfig struct {
	SpriteTable string `toml:"sprite_table"`
	ScriptsDir  string `toml:"scripts_dir"` // empty disables the Lua tile hook
}

// DatabaseConfig selects the optional savegame catalog. Driver "sqlite"
// treats DSN as a file path; "postgres" as a pgx connection string.
type DatabaseConfig struct {
	Enabled         bool          `toml:"enabled"`
	Driver          string        `toml:"driver"`
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config { return defaults() }

// Validate rejects geometry and physics values the simulation cannot run.
func (c *Config) Validate() error {
	var errs []error
	if c.Game.Name == "" {
		errs = append(errs, errors.New("game.name is empty"))
	}
	if c.Game.TickRate <= 0 {
		errs = append(errs, errors.New("game.tick_rate must be positive"))
	}
	if c.Planet.PlanetDim.Row == 0 || c.Planet.PlanetDim.Col == 0 {
		errs = append(errs, errors.New("planet.planet_dim must be non-zero"))
	}
	if c.Planet.ChunkDim.Row == 0 || c.Planet.ChunkDim.Col == 0 {
		errs = append(errs, errors.New("planet.chunk_dim must be non-zero"))
	}
	if c.Planet.TileWidth <= 0 || c.Planet.TileHeight <= 0 {
		errs = append(errs, errors.New("planet tile size must be positive"))
	}
	if c.Ship.Mass <= 0 {
		errs = append(errs, errors.New("ship.mass must be positive"))
	}
	if c.Ship.Efficiency <= 0 || c.Ship.Efficiency > 1 {
		errs = append(errs, fmt.Errorf("ship.efficiency %v outside (0,1]", c.Ship.Efficiency))
	}
	if c.Database.Enabled {
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required when enabled"))
		}
		if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
			errs = append(errs, fmt.Errorf("database.driver %q must be postgres or sqlite", c.Database.Driver))
		}
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			Name:       "default",
			TickRate:   50 * time.Millisecond,
			SaveEvery:  600,
			IOQueueLen: 64,
		},
		Planet: PlanetConfig{
			PlanetDim:      Dim{Row: 64, Col: 128},
			ChunkDim:       Dim{Row: 16, Col: 16},
			TileWidth:      32,
			TileHeight:     32,
			RenderDistance: 2,
			Gravity:        9.81,
		},
		Ship: ShipConfig{
			Name:          "Drill",
			SpawnX:        256,
			SpawnY:        16,
			Mass:          1000,
			Friction:      150,
			MaxForceX:     12000,
			MaxForceY:     20000,
			Efficiency:    0.8,
			Consumption:   0.0005,
			FuelCapacity:  500,
			WeightPerUnit: 0.75,
		},
		Savegame: SavegameConfig{
			Root: "savegames",
		},
		Data: DataConfig{
			SpriteTable: "data/yaml/sprites.yaml",
			ScriptsDir:  "scripts",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "savegames/catalog.sqlite",
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
