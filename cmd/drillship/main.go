package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepcore/drillship/internal/component"
	"github.com/deepcore/drillship/internal/config"
	"github.com/deepcore/drillship/internal/core/event"
	coresys "github.com/deepcore/drillship/internal/core/system"
	"github.com/deepcore/drillship/internal/data"
	"github.com/deepcore/drillship/internal/persist"
	"github.com/deepcore/drillship/internal/planet"
	"github.com/deepcore/drillship/internal/savegame"
	"github.com/deepcore/drillship/internal/scripting"
	"github.com/deepcore/drillship/internal/system"
	"github.com/deepcore/drillship/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Open the savegame and resume it if a session file exists
	store := savegame.NewStore(savegame.Layout{Root: cfg.Savegame.Root, GameName: cfg.Game.Name}, cfg.Savegame.Compress)
	if err := store.Init(); err != nil {
		return fmt.Errorf("savegame: %w", err)
	}
	session, err := openSession(cfg, store, log)
	if err != nil {
		return err
	}

	p, err := planet.New(planet.Config{
		PlanetDim: session.PlanetDim,
		ChunkDim:  session.ChunkDim,
		TileSize:  session.TileSize,
	}, planet.NewGenerator(session.Seed), log)
	if err != nil {
		return fmt.Errorf("planet: %w", err)
	}

	// 4. Data tables and the optional Lua tile hook
	ws := world.NewState()
	sprites, err := data.LoadSpriteTable(cfg.Data.SpriteTable)
	if err != nil {
		return fmt.Errorf("load sprite table: %w", err)
	}
	lookup := world.SpriteLookup{Table: sprites}
	log.Info("sprite table loaded", zap.Int("sprites", sprites.Count()))

	build := planet.BuildContext{Store: ws, Renders: lookup}
	if cfg.Data.ScriptsDir != "" {
		engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, session.PlanetDim, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		if engine.HasOverride() {
			build.Hook = engine
			log.Info("lua tile override enabled", zap.String("dir", cfg.Data.ScriptsDir))
		}
	}

	// 5. Optional savegame catalog
	var (
		chunkCatalog   system.ChunkCatalog
		sessionCatalog system.SessionCatalog
	)
	if cfg.Database.Enabled {
		cat, closeCatalog, err := openCatalog(cfg.Database, log)
		if err != nil {
			return err
		}
		defer closeCatalog()
		chunkCatalog, sessionCatalog = cat, cat
	}

	// 6. Systems, in phase order
	bus := event.NewBus()
	axes := &system.Axes{}
	chunkIO := system.NewChunkIO(store, chunkCatalog, session.GameName, cfg.Game.IOQueueLen, log)
	streaming := system.NewStreamingSystem(p, build, chunkIO, bus, session.SavedChunks, log)
	persistence := system.NewPersistenceSystem(session, streaming, store, sessionCatalog, log, cfg.Game.SaveEvery)
	worldWidth := float64(session.PlanetDim.Col*session.ChunkDim.Col) * session.TileSize.Width

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(newAutopilot(cfg.Game.TickRate), axes))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewGravitationSystem(ws, cfg.Planet.Gravity))
	runner.Register(system.NewEngineForceSystem(ws, axes))
	runner.Register(system.NewMovementSystem(ws, worldWidth))
	runner.Register(system.NewPositionSystem(ws, p, bus, cfg.Planet.RenderDistance, log))
	runner.Register(streaming)
	runner.Register(persistence)
	runner.Register(system.NewCleanupSystem(ws.ECS, log))

	ship := ws.SpawnShip(shipSpec(cfg.Ship, lookup))
	log.Info("ship spawned",
		zap.String("name", cfg.Ship.Name),
		zap.Uint64("entity", uint64(ship)),
		zap.Float64("x", cfg.Ship.SpawnX), zap.Float64("y", cfg.Ship.SpawnY))

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	log.Info("game loop started",
		zap.String("game", session.GameName),
		zap.Duration("tick", cfg.Game.TickRate),
		zap.Uint64("max_ticks", cfg.Game.MaxTicks))

loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Game.TickRate)
			if cfg.Game.MaxTicks > 0 && runner.Ticks() >= cfg.Game.MaxTicks {
				log.Info("tick limit reached", zap.Uint64("ticks", runner.Ticks()))
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			break loop
		}
	}

	return shutdown(streaming, persistence, store, ws, log)
}

// shutdown saves every resident chunk, then the session file listing them,
// then clears the session's entities.
func shutdown(streaming *system.StreamingSystem, persistence *system.PersistenceSystem, store *savegame.Store, ws *world.State, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	if err := streaming.Shutdown(ctx, store); err != nil {
		errs = append(errs, fmt.Errorf("save chunks: %w", err))
	}
	if err := persistence.Save(); err != nil {
		errs = append(errs, fmt.Errorf("save session: %w", err))
	}
	queued := ws.ClearSession()
	destroyed := ws.ECS.FlushDestroyQueue()
	log.Info("game stopped",
		zap.Int("session_entities", queued),
		zap.Int("destroyed", destroyed),
		zap.Int("live", ws.ECS.Live()))
	return errors.Join(errs...)
}

type catalog interface {
	system.ChunkCatalog
	system.SessionCatalog
}

// openCatalog connects the configured catalog backend.
func openCatalog(cfg config.DatabaseConfig, log *zap.Logger) (catalog, func(), error) {
	if cfg.Driver == "sqlite" {
		c, err := persist.OpenSQLiteCatalog(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog: %w", err)
		}
		log.Info("savegame catalog opened", zap.String("driver", cfg.Driver), zap.String("path", cfg.DSN))
		return c, func() { c.Close() }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if _, err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return persist.NewCatalogRepo(db), db.Close, nil
}

func loadConfig() (*config.Config, error) {
	path := "config/drillship.toml"
	if p := os.Getenv("DRILLSHIP_CONFIG"); p != "" {
		return config.Load(p)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openSession resumes the stored session, or starts a new one from config.
// A resumed game keeps its stored geometry and seed.
func openSession(cfg *config.Config, store *savegame.Store, log *zap.Logger) (savegame.Session, error) {
	sess, err := store.ReadSession()
	switch {
	case err == nil:
		log.Info("session resumed",
			zap.String("game", sess.GameName),
			zap.Uint64("seed", sess.Seed),
			zap.Int("saved_chunks", len(sess.SavedChunks)))
		if sess.PlanetDim != dim(cfg.Planet.PlanetDim) || sess.ChunkDim != dim(cfg.Planet.ChunkDim) {
			log.Warn("config geometry differs from the saved game; using the saved one")
		}
		return sess, nil
	case errors.Is(err, fs.ErrNotExist):
	default:
		return savegame.Session{}, err
	}

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	sess = savegame.Session{
		GameName:  cfg.Game.Name,
		PlanetDim: dim(cfg.Planet.PlanetDim),
		ChunkDim:  dim(cfg.Planet.ChunkDim),
		TileSize:  planet.TileSize{Width: cfg.Planet.TileWidth, Height: cfg.Planet.TileHeight},
		Seed:      seed,
	}
	if err := store.WriteSession(sess); err != nil {
		return savegame.Session{}, err
	}
	log.Info("new session", zap.String("game", sess.GameName), zap.Uint64("seed", seed))
	return sess, nil
}

func dim(d config.Dim) planet.Dim { return planet.Dim{Row: d.Row, Col: d.Col} }

func shipSpec(cfg config.ShipConfig, lookup world.SpriteLookup) world.ShipSpec {
	render, _ := lookup.Render("ship", cfg.Name)
	return world.ShipSpec{
		Name:   cfg.Name,
		Spawn:  mgl64.Vec2{cfg.SpawnX, cfg.SpawnY},
		Render: component.SpriteRender{Handle: render},
		Physical: component.PhysicalProperties{
			Mass:     cfg.Mass,
			Friction: cfg.Friction,
		},
		Engine: component.Engine{
			MaxForce:    mgl64.Vec2{cfg.MaxForceX, cfg.MaxForceY},
			Efficiency:  cfg.Efficiency,
			Consumption: cfg.Consumption,
		},
		Fuel: component.FuelTank{
			Level:         cfg.FuelCapacity,
			Capacity:      cfg.FuelCapacity,
			WeightPerUnit: cfg.WeightPerUnit,
		},
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
