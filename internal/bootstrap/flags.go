// ABOUTME: Badger-backed key/value store for install-lifetime flags.
// ABOUTME: Lives outside the relational store so dropping the schema never clears it.
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

const (
	// FirstLaunchKey is set once schema creation and seeding have succeeded.
	FirstLaunchKey = "first_launch_done"
	// InstallIDKey holds a random id generated on first launch.
	InstallIDKey = "install_id"
)

// FlagStore persists small string flags.
type FlagStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// BadgerFlags is a FlagStore over an embedded badger database.
type BadgerFlags struct {
	kv *badger.DB
	mu sync.RWMutex
}

// FlagsDir returns the flag store directory under a data directory.
func FlagsDir(dataDir string) string {
	return filepath.Join(dataDir, "flags")
}

// OpenFlags opens or creates a flag store in dir.
func OpenFlags(dir string) (*BadgerFlags, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create flags directory: %w", err)
	}
	kv, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open flag store: %w", err)
	}
	return &BadgerFlags{kv: kv}, nil
}

// OpenMemoryFlags opens a flag store that lives only as long as the process.
func OpenMemoryFlags() (*BadgerFlags, error) {
	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open memory flag store: %w", err)
	}
	return &BadgerFlags{kv: kv}, nil
}

// Get returns the value for key and whether it was present.
func (f *BadgerFlags) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var value []byte
	err := f.kv.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get flag %s: %w", key, err)
	}
	return string(value), true, nil
}

// Set stores a value with the given key.
func (f *BadgerFlags) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.kv.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set flag %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (f *BadgerFlags) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.kv.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete flag %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (f *BadgerFlags) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.kv != nil {
		return f.kv.Close()
	}
	return nil
}
