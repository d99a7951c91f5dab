// Package mirror copies suppliers and their compliance history from the
// backend into the local database and reports what changed.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/storage"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Source is the part of the backend client a sync reads from.
type Source interface {
	ListSuppliers(ctx context.Context) ([]supplier.Supplier, error)
	GetComplianceRecords(ctx context.Context, supplierID int) ([]compliance.Record, error)
}

// Config holds everything Sync needs.
type Config struct {
	Source      Source
	DB          *storage.DB
	Concurrency int    // defaults to 5 if <= 0
	Log         Logger // optional; nil = no logging

	// OnSupplierDone is called per supplier after its records are stored
	// (from worker goroutines). Nil = no callback.
	OnSupplierDone func(s supplier.Supplier, changes []storage.Change, isFirstRun bool)
}

// Result holds the outcome of one sync.
type Result struct {
	SyncedSupplierIDs []int
	SupplierChanges   []storage.Change
	RecordChanges     []storage.Change
	IsFirstRun        bool
	Errors            []error // non-fatal, one per supplier that failed
}

// Sync lists suppliers, fetches every supplier's records concurrently and
// stores them. Changes are logged unless this is the first sync, which only
// populates the database.
func Sync(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Source == nil || cfg.DB == nil {
		return nil, errors.New("mirror: source and database are required")
	}
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	db := cfg.DB
	result := &Result{}

	count, err := db.GetSupplierCount(ctx)
	if err != nil {
		log.Warnf("Could not get supplier count: %v", err)
	} else {
		result.IsFirstRun = count == 0
	}

	suppliers, err := cfg.Source.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}

	if result.IsFirstRun && len(suppliers) > 0 {
		log.Infof("First sync, populating database with %d supplier(s)...", len(suppliers))
	}

	// An empty list against a populated mirror is more likely a backend
	// problem than every supplier being deleted.
	if len(suppliers) == 0 && count > 10 {
		log.Errorf("Backend returned 0 suppliers, but database has %d. Aborting sync to prevent data loss.", count)
		return result, nil
	}

	supplierChanges, err := db.UpsertSuppliers(ctx, suppliers)
	if err != nil {
		return nil, fmt.Errorf("storing suppliers: %w", err)
	}
	result.SupplierChanges = supplierChanges
	if !result.IsFirstRun {
		if err := db.LogChanges(ctx, supplierChanges); err != nil {
			log.Warnf("Could not log supplier changes: %v", err)
		}
	}

	ids, changes, errs := syncConcurrently(ctx, cfg, suppliers, result.IsFirstRun, concurrency, log)
	result.SyncedSupplierIDs = ids
	result.RecordChanges = changes
	result.Errors = errs
	return result, nil
}

// syncConcurrently fetches and stores records using a worker pool.
func syncConcurrently(ctx context.Context, cfg Config, suppliers []supplier.Supplier, isFirstRun bool, concurrency int, log Logger) ([]int, []storage.Change, []error) {
	if len(suppliers) == 0 {
		return []int{}, nil, nil
	}

	jobs := make(chan supplier.Supplier, len(suppliers))

	var mu sync.Mutex
	synced := make([]int, 0, len(suppliers))
	var allChanges []storage.Change
	var allErrors []error

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				changes, err := syncOne(ctx, cfg, s, isFirstRun, log)
				if err != nil {
					mu.Lock()
					allErrors = append(allErrors, err)
					mu.Unlock()
					continue
				}

				mu.Lock()
				synced = append(synced, s.ID)
				allChanges = append(allChanges, changes...)
				mu.Unlock()

				if cfg.OnSupplierDone != nil {
					cfg.OnSupplierDone(s, changes, isFirstRun)
				}
			}
		}()
	}

	for _, s := range suppliers {
		jobs <- s
	}
	close(jobs)
	wg.Wait()

	return synced, allChanges, allErrors
}

// syncOne mirrors a single supplier's records.
func syncOne(ctx context.Context, cfg Config, s supplier.Supplier, isFirstRun bool, log Logger) ([]storage.Change, error) {
	records, err := cfg.Source.GetComplianceRecords(ctx, s.ID)
	if err != nil {
		log.Warnf("Failed to fetch compliance records for supplier %d: %v", s.ID, err)
		return nil, fmt.Errorf("supplier %d: %w", s.ID, err)
	}

	changes, err := cfg.DB.UpsertSupplierRecords(ctx, s.ID, s.Name, records)
	if err != nil {
		if errors.Is(err, storage.ErrAbortingRecordWipe) {
			log.Warnf("Backend returned no records for supplier %d but the mirror has some. Skipping update.", s.ID)
			return nil, nil
		}
		log.Warnf("Database error for supplier %d: %v", s.ID, err)
		return nil, fmt.Errorf("supplier %d: %w", s.ID, err)
	}

	if !isFirstRun {
		if err := cfg.DB.LogChanges(ctx, changes); err != nil {
			log.Warnf("Could not log changes for supplier %d: %v", s.ID, err)
		}
	}
	return changes, nil
}
