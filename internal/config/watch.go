package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// fleetWatcher tracks the last delivered fleet seed. A newer mtime alone is
// not a change; the content digest must differ too.
type fleetWatcher struct {
	path     string
	lastMod  time.Time
	digest   [sha256.Size]byte
	logger   *zerolog.Logger
	onUpdate func(*FleetConfig)
}

// WatchFleet loads the fleet seed, calls onUpdate with it and then polls the
// file every interval. An invalid initial file is an error; later invalid
// edits are logged and the last good fleet stays in place.
func WatchFleet(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, onUpdate func(*FleetConfig)) error {
	if path == "" {
		path = "configs/fleet.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	w := &fleetWatcher{path: path, logger: logger, onUpdate: onUpdate}
	if _, err := w.poll(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.poll(); err != nil {
					w.logger.Error().Err(err).Str("path", w.path).Msg("Fleet config reload failed")
				}
			}
		}
	}()
	return nil
}

// poll reloads the file when both its mtime and its content changed and
// reports whether onUpdate was called.
func (w *fleetWatcher) poll() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, fmt.Errorf("stat fleet config: %w", err)
	}
	if !w.lastMod.IsZero() && !info.ModTime().After(w.lastMod) {
		return false, nil
	}
	w.lastMod = info.ModTime()

	data, err := os.ReadFile(w.path)
	if err != nil {
		return false, fmt.Errorf("read fleet config: %w", err)
	}
	sum := sha256.Sum256(data)
	if sum == w.digest {
		w.logger.Debug().Str("path", w.path).Msg("Fleet config touched, content unchanged")
		return false, nil
	}

	cfg, err := ParseFleetConfig(data)
	if err != nil {
		return false, err
	}
	w.digest = sum
	w.logger.Info().Int("cars", len(cfg.Cars)).Str("digest", fmt.Sprintf("%x", sum[:6])).Msg("Fleet config loaded")
	if w.onUpdate != nil {
		w.onUpdate(cfg)
	}
	return true, nil
}
