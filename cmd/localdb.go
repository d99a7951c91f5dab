package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/storage"
)

// withDB opens the local database for the duration of fn. Writers hold the
// file lock so concurrent invocations do not interleave draft updates.
func withDB(ctx context.Context, write bool, fn func(db *storage.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := utils.GetAbsDBPath(viper.GetString("db.path"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	if write {
		lock, err := utils.NewDBLock(path, viper.GetDuration("db.lock_wait"))
		if err != nil {
			return err
		}
		if err := lock.Lock(ctx); err != nil {
			if errors.Is(err, utils.ErrLockBusy) {
				return fmt.Errorf("%w (raise db.lock_wait or remove %s if no other process is running)", err, lock.Path())
			}
			return err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				utils.Log.Warnf("Could not release database lock: %v", err)
			}
		}()
	}

	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", path, err)
	}
	defer db.Close()
	return fn(db)
}
