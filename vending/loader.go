package vending

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"statelearn/automata"
	"statelearn/logging"
)

// LoadModels reads every *.json machine in dir, keyed by file basename.
// This is the serialized-model folder of the exercise; files that fail
// to parse are skipped with a log line so one bad model does not sink
// the whole run.
func LoadModels(dir string) (map[string]*automata.Machine, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	models := make(map[string]*automata.Machine)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		m, err := automata.Load(path)
		if err != nil {
			logging.L().Warn("skipping unreadable model", zap.String("path", path), zap.Error(err))
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		if m.Name == "" {
			m.Name = name
		}
		models[name] = m
	}
	return models, nil
}

// ModelNames returns the loaded model names in stable order.
func ModelNames(models map[string]*automata.Machine) []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Watcher reloads the model directory when files are added or changed.
type Watcher struct {
	dir      string
	onChange func(map[string]*automata.Machine)
}

func NewWatcher(dir string, onChange func(map[string]*automata.Machine)) *Watcher {
	return &Watcher{dir: dir, onChange: onChange}
}

// Run blocks until ctx is cancelled, invoking the callback with a fresh
// load after every relevant filesystem event.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	logging.L().Info("watching model directory", zap.String("dir", w.dir))

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			logging.L().Info("model directory changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			models, err := LoadModels(w.dir)
			if err != nil {
				logging.L().Error("reload failed", zap.Error(err))
				continue
			}
			w.onChange(models)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.L().Error("watch error", zap.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
