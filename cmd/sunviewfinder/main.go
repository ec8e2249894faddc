package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/aurel42/sunviewfinder/pkg/cache"
	"github.com/aurel42/sunviewfinder/pkg/config"
	"github.com/aurel42/sunviewfinder/pkg/db"
	"github.com/aurel42/sunviewfinder/pkg/elevation"
	"github.com/aurel42/sunviewfinder/pkg/geo"
	"github.com/aurel42/sunviewfinder/pkg/logging"
	"github.com/aurel42/sunviewfinder/pkg/pipeline"
	"github.com/aurel42/sunviewfinder/pkg/request"
	"github.com/aurel42/sunviewfinder/pkg/sun"
	"github.com/aurel42/sunviewfinder/pkg/tracker"
	"github.com/aurel42/sunviewfinder/pkg/version"
	"github.com/aurel42/sunviewfinder/pkg/viewshed"
	"github.com/aurel42/sunviewfinder/pkg/workerpool"
)

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	lat := flag.Float64("lat", 0, "Center latitude")
	lon := flag.Float64("lon", 0, "Center longitude")
	radiusM := flag.Float64("radius", 10000, "Search radius in meters")
	spacingM := flag.Float64("spacing", 0, "Candidate grid spacing in meters (0 uses the configured default)")
	dateStr := flag.String("date", "", "Target date, YYYY-MM-DD (default: today)")
	mode := flag.String("mode", "sunset", "sunset or sunrise")
	cfgPath := flag.String("config", "configs/sunviewfinder.yaml", "Path to config file")
	geojsonPath := flag.String("geojson", "", "Write ranked candidates as GeoJSON to this path (optional)")
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *cfgPath)
		return
	}

	opts := runOptions{
		center:      geo.Point{Lat: *lat, Lon: *lon},
		radiusM:     *radiusM,
		spacingM:    *spacingM,
		dateStr:     *dateStr,
		mode:        *mode,
		cfgPath:     *cfgPath,
		geojsonPath: *geojsonPath,
	}
	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	center      geo.Point
	radiusM     float64
	spacingM    float64
	dateStr     string
	mode        string
	cfgPath     string
	geojsonPath string
}

func run(ctx context.Context, opts runOptions) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	appCfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("sunviewfinder started", "version", version.Version)

	date := time.Now()
	if opts.dateStr != "" {
		date, err = time.Parse("2006-01-02", opts.dateStr)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", opts.dateStr, err)
		}
	}

	mode := sun.Mode(opts.mode)
	if mode != sun.ModeSunset && mode != sun.ModeSunrise {
		return fmt.Errorf("invalid -mode %q: must be sunset or sunrise", opts.mode)
	}

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dbConn.Close()

	p := buildPipeline(dbConn, appCfg)

	spacingM := opts.spacingM
	if spacingM == 0 {
		spacingM = float64(appCfg.Grid.SpacingM)
	}

	input := pipeline.Input{
		Center:   opts.center,
		RadiusM:  opts.radiusM,
		SpacingM: spacingM,
		Date:     date,
		Mode:     mode,
	}

	out, err := p.Run(ctx, input, func(percent int) {
		slog.Debug("pipeline progress", "percent", percent)
	})
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Println(out.Summary())

	if opts.geojsonPath != "" {
		if err := writeGeoJSON(out, opts.geojsonPath); err != nil {
			return fmt.Errorf("failed to write geojson: %w", err)
		}
		fmt.Printf("Wrote %d candidates to %s\n", len(out.Candidates), opts.geojsonPath)
	}

	return nil
}

// buildPipeline wires one elevation.Service and one viewshed.Engine per
// the loaded config and hands them to a fresh Pipeline.
func buildPipeline(dbConn *db.DB, appCfg *config.Config) *pipeline.Pipeline {
	sqliteCache := cache.NewSQLiteCache(dbConn)
	tr := tracker.New()

	reqClient := request.New(sqliteCache, tr, request.WithRequestConfig(appCfg.Request))

	tileProvider := elevation.NewTileProvider(reqClient, appCfg.Elevation.TileBaseURL)
	httpProvider := elevation.NewProvider(reqClient, appCfg.Elevation.ProviderPrimaryURL, appCfg.Elevation.ProviderFallbackURL, os.Getenv("OPENTOPODATA_API_KEY"))
	pointCache := elevation.NewPointCache(sqliteCache)

	elevationSvc := elevation.NewService(pointCache, tileProvider, httpProvider, elevation.Strategy(appCfg.Elevation.Strategy)).
		WithConcurrency(appCfg.Elevation.Concurrency)

	pool := workerpool.New(appCfg.Viewshed.WorkerPoolSize)
	engine := viewshed.NewEngine(elevationSvc, pool).WithConstants(
		float64(appCfg.Viewshed.RaySampleSpacingM),
		float64(appCfg.Viewshed.RayMaxDistanceM),
		float64(appCfg.Viewshed.CurvatureThresholdM),
		appCfg.Viewshed.HorizonMarginDeg,
	)

	return pipeline.New(elevationSvc, engine)
}

func writeGeoJSON(out *pipeline.Output, path string) error {
	fc := out.ToFeatureCollection()
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
