package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"statelearn/automata"
	"statelearn/db"
	qhttp "statelearn/http"
	"statelearn/logging"
	"statelearn/monitoring"
	"statelearn/vending"
	"statelearn/workflow"
)

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	if err := logging.Init(config.Log.Level, config.Log.File); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	// 3. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	logging.L().Info("database initialized", zap.String("path", config.Database.Path))

	// 4. Monitoring hub and metrics
	hub := monitoring.NewHub()
	go hub.Run()
	metrics := monitoring.NewMetrics()

	runner := workflow.NewRunner(workflow.Options{
		Seed:        config.Learning.Seed,
		Oracle:      config.Learning.Oracle,
		OracleWords: config.Learning.OracleWords,
		OracleSteps: config.Learning.OracleSteps,
		MaxWordLen:  config.Learning.MaxWordLen,
		ResetProb:   config.Learning.ResetProb,
		CacheSize:   config.Learning.CacheSize,
		Reference:   config.Learning.Reference,
		OutputDir:   config.Learning.OutputDir,
		Persist:     true,
	}, hub, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Import serialized models and keep watching the directory
	if config.Models.Dir != "" {
		if models, err := vending.LoadModels(config.Models.Dir); err != nil {
			logging.L().Warn("model directory unreadable", zap.String("dir", config.Models.Dir), zap.Error(err))
		} else {
			storeModels(models)
		}
		if config.Models.Watch {
			watcher := vending.NewWatcher(config.Models.Dir, storeModels)
			go func() {
				if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
					logging.L().Error("model watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	// 6. Start HTTP server
	server := qhttp.NewServer(config.Http.Port, hub, metrics, func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	})
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 7. Initial learn-and-compare run
	go func() {
		if _, err := runner.Run(ctx); err != nil {
			logging.L().Error("initial run failed", zap.Error(err))
		}
	}()

	// 8. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.L().Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logging.L().Warn("server forced to shutdown", zap.Error(err))
	}
	hub.Stop()
}

// storeModels persists externally supplied machines so they show up in
// the models API next to learned ones.
func storeModels(models map[string]*automata.Machine) {
	for _, name := range vending.ModelNames(models) {
		if err := db.SaveModel(name, models[name]); err != nil {
			logging.L().Error("storing imported model failed", zap.String("model", name), zap.Error(err))
		}
	}
}
