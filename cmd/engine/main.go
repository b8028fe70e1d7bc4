package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/config"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/gen"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/storage"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/texture"
)

// walkCamera moves at a constant velocity from a start point. It stands in
// for a player when the engine runs headless.
type walkCamera struct {
	start    mgl32.Vec3
	velocity mgl32.Vec3 // blocks per second
	began    time.Time
}

func (c *walkCamera) Position() mgl32.Vec3 {
	return c.start.Add(c.velocity.Mul(float32(time.Since(c.began).Seconds())))
}

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "engine.yaml", "YAML config file")
	flag.IntVar(&cfg.Radius, "radius", cfg.Radius, "chunk radius kept loaded around the camera")
	flag.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "chunk edge length in blocks")
	flag.BoolVar(&cfg.EnableSaving, "saving", cfg.EnableSaving, "save chunks when they are unloaded")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, "terrain generator (default or flat)")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "scheduler ticks per second")
	flag.StringVar(&cfg.Storage.Backend, "backend", cfg.Storage.Backend, "chunk storage (file, leveldb or memory)")
	flag.StringVar(&cfg.Storage.Dir, "save-dir", cfg.Storage.Dir, "world save directory")
	flag.IntVar(&cfg.Storage.SaveWorkers, "save-workers", cfg.Storage.SaveWorkers, "concurrent chunk save tasks")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	speed := flag.Float64("walk-speed", 4, "camera speed along +x in blocks per second")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	writeConfig := flag.Bool("write-config", false, "write the merged config to -config and exit")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fromFile, explicit)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if *writeConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Error("write config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		log.Info("config written", "path", *configPath)
		return
	}

	if cfg.Storage.Backend != config.BackendMemory {
		meta, err := storage.OpenWorld(cfg.Storage.Dir, storage.WorldMeta{
			Seed:      cfg.Seed,
			ChunkSize: cfg.ChunkSize,
			Generator: cfg.GeneratorType,
		}, log)
		if err != nil {
			log.Error("open world", "dir", cfg.Storage.Dir, "error", err)
			os.Exit(1)
		}
		cfg.Seed = meta.Seed
		cfg.GeneratorType = meta.Generator
	}

	store, err := storage.Open(cfg.Storage, log)
	if err != nil {
		log.Error("open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	generator, err := gen.New(cfg.GeneratorType, cfg.Seed)
	if err != nil {
		log.Error("create generator", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(cfg, engine.Deps{
		Store:     store,
		Generator: generator,
		Textures:  texture.NewGridAtlas(block.Default(), 16, 16),
		Camera: &walkCamera{
			start:    mgl32.Vec3{0, 64, 0},
			velocity: mgl32.Vec3{float32(*speed), 0, 0},
			began:    time.Now(),
		},
	}, log)
	if err != nil {
		store.Close()
		log.Error("create engine", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *duration)
		defer stop()
	}

	if err := eng.Run(ctx); err != nil {
		log.Error("engine error", "error", err)
		os.Exit(1)
	}
	log.Info("final chunk stats", "stats", eng.Stats())
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
