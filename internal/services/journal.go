package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"luxebites/internal/models"
)

// OrderJournal appends every placed order to a file, one JSON object per line,
// for manual inspection. The store only ever keeps the last order.
type OrderJournal struct {
	mu   sync.Mutex
	file *os.File
}

// NewOrderJournal opens path for appending.
func NewOrderJournal(path string) (*OrderJournal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open order journal: %w", err)
	}
	return &OrderJournal{file: file}, nil
}

type journalEntry struct {
	LoggedAt time.Time     `json:"loggedAt"`
	Order    *models.Order `json:"order"`
}

// OrderPlaced appends order to the journal.
func (j *OrderJournal) OrderPlaced(_ context.Context, order *models.Order) error {
	data, err := json.Marshal(journalEntry{LoggedAt: time.Now().UTC(), Order: order})
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.file.Write(append(data, '\n'))
	return err
}

// Close closes the journal file.
func (j *OrderJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
