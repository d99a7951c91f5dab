package utils

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"5", 5, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"   ", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"7.5", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseID(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidID) {
				t.Fatalf("ParseID(%q): expected ErrInvalidID, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseID(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("WARN"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Log.GetLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", Log.GetLevel())
	}
	if err := SetLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	_ = SetLogLevel("info")
}

func TestDBLockRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "supplyscope.sqlite")
	l, err := NewDBLock(dbPath, 0)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	if l.Path() != dbPath+".lock" {
		t.Fatalf("unexpected lock path %q", l.Path())
	}
	if err := l.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestDBLockBusy(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "supplyscope.sqlite")
	holder, err := NewDBLock(dbPath, 0)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	if err := holder.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer holder.Unlock()

	waiter, err := NewDBLock(dbPath, 300*time.Millisecond)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	err = waiter.Lock(context.Background())
	if !errors.Is(err, ErrLockBusy) {
		t.Fatalf("expected ErrLockBusy, got %v", err)
	}
	var lockErr *LockError
	if !errors.As(err, &lockErr) || lockErr.Op != "acquire" || lockErr.Path != waiter.Path() {
		t.Fatalf("expected acquire LockError on %s, got %#v", waiter.Path(), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waiter, _ = NewDBLock(dbPath, time.Minute)
	if err := waiter.Lock(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := waiter.Lock(context.Background()); err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	waiter.Unlock()
}
