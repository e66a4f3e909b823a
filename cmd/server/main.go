package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"lostfound-server/internal/app"
	"lostfound-server/internal/config"
	"lostfound-server/internal/httpapi"
	"lostfound-server/internal/model"
	"lostfound-server/internal/snapshot"
	"lostfound-server/internal/version"
	"lostfound-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	var (
		tickPeriodMs        int
		configFile          string
		wwwRoot             string
		randomizeSpawnPoint bool
		stateFile           string
		saveStatePeriodMs   int
	)

	pflag.IntVar(&tickPeriodMs, "tick-period", 100, "tick period in ms (0 disables auto-tick, enabling the /api/v1/game/tick endpoint)")
	pflag.StringVar(&configFile, "config-file", "", "path to the map configuration JSON file")
	pflag.StringVar(&wwwRoot, "www-root", "", "path to static files to serve at / (optional)")
	pflag.BoolVar(&randomizeSpawnPoint, "randomize-spawn-points", false, "spawn dogs at random points instead of road 0's start")
	pflag.StringVar(&stateFile, "state-file", "", "path to persist game state across restarts (optional)")
	pflag.IntVar(&saveStatePeriodMs, "save-state-period", 0, "periodic autosave interval in ms (0 disables periodic autosave)")
	pflag.Parse()

	logger.Log.Info(version.String())

	if configFile == "" {
		logger.Log.Fatal("--config-file is required")
	}

	maps, err := config.Load(configFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load config file")
	}

	game := model.NewGame(randomizeSpawnPoint)
	for _, m := range maps {
		if err := game.AddMap(m); err != nil {
			logger.Log.WithError(err).Fatal("failed to register map")
		}
	}

	simRng := newSeededRand()
	tokenRngA := newSeededRand()
	tokenRngB := newSeededRand()
	application := app.New(game, simRng, tokenRngA, tokenRngB)

	stateFileConfigured := stateFile != ""
	if stateFileConfigured {
		restoreState(application, stateFile)
	}

	autoTick := tickPeriodMs > 0
	server := httpapi.New(application, "0.0.0.0:8080", autoTick)
	mux := server.Mux()
	if wwwRoot != "" {
		mux.Handle("/", http.FileServer(http.Dir(wwwRoot)))
	}

	httpServer := &http.Server{
		Addr:         server.Addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Log.Infof("lost-and-found server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if autoTick {
		group.Go(func() error {
			runTickLoop(groupCtx, application, time.Duration(tickPeriodMs)*time.Millisecond)
			return nil
		})
	}

	if stateFileConfigured && saveStatePeriodMs > 0 {
		group.Go(func() error {
			runAutosaveLoop(groupCtx, application, stateFile, time.Duration(saveStatePeriodMs)*time.Millisecond)
			return nil
		})
	}

	<-ctx.Done()
	logger.Log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	if err := group.Wait(); err != nil {
		logger.Log.WithError(err).Fatal("server error")
	}

	if stateFileConfigured {
		if err := snapshot.Save(stateFile, application.Export()); err != nil {
			logger.Log.WithError(err).Error("failed to write final snapshot")
		}
	}

	application.Close()
	logger.Log.Info("done.")
}

func runTickLoop(ctx context.Context, application *app.Application, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			application.Tick(float64(now.Sub(last).Milliseconds()))
			last = now
		}
	}
}

func runAutosaveLoop(ctx context.Context, application *app.Application, path string, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := snapshot.Save(path, application.Export()); err != nil {
				logger.Log.WithError(err).Error("periodic snapshot save failed")
			}
		}
	}
}

func restoreState(application *app.Application, path string) {
	state, err := snapshot.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Log.Info("no existing state file found, starting fresh")
			return
		}
		logger.Log.WithError(err).Error("failed to load state file, starting fresh")
		return
	}
	if appErr := application.Import(state); appErr != nil {
		logger.Log.WithError(appErr).Error("failed to restore state")
	}
}

// newSeededRand seeds from crypto/rand-backed entropy at process start
// rather than reaching for math/rand's package-level default source (§5,
// §9): each call produces an independently seeded generator.
func newSeededRand() *rand.Rand {
	var seed int64
	b := make([]byte, 8)
	if _, err := crand.Read(b); err == nil {
		seed = int64(binary.LittleEndian.Uint64(b))
	} else {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
