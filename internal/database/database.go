package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// Keys of the two slots the storefront keeps per session.
const (
	CartKey      = "luxebitesCart"
	LastOrderKey = "lastOrder"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is the string-valued key-value port the cart and checkout persist through.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// JSONDatabase keeps every key in one JSON file, rewritten on each write.
type JSONDatabase struct {
	mu       sync.RWMutex
	data     map[string]string
	filePath string
}

// NewJSONDatabase opens (or creates) the data file at filePath.
func NewJSONDatabase(filePath string) (*JSONDatabase, error) {
	db := &JSONDatabase{
		data:     map[string]string{},
		filePath: filePath,
	}
	if err := db.loadData(); err != nil {
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return nil, err
		}
		// A corrupt file starts over empty.
		db.data = map[string]string{}
		if saveErr := db.saveData(); saveErr != nil {
			return nil, saveErr
		}
	}
	return db, nil
}

func (db *JSONDatabase) loadData() error {
	if _, err := os.Stat(db.filePath); os.IsNotExist(err) {
		return db.saveData()
	}

	fileData, err := os.ReadFile(db.filePath)
	if err != nil {
		return err
	}
	if len(fileData) == 0 {
		return nil
	}

	return json.Unmarshal(fileData, &db.data)
}

func (db *JSONDatabase) saveData() error {
	data, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(db.filePath, data, 0644)
}

// Get returns the value of key or ErrNotFound.
func (db *JSONDatabase) Get(_ context.Context, key string) (string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key and rewrites the file.
func (db *JSONDatabase) Set(_ context.Context, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[key] = value
	return db.saveData()
}

// Remove deletes key and rewrites the file.
func (db *JSONDatabase) Remove(_ context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.data[key]; !ok {
		return nil
	}
	delete(db.data, key)
	return db.saveData()
}
