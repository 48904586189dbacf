// Package store persists template records and hands decoded documents to the
// engine. The engine itself only ever consumes the Store interface; the
// file-backed implementation is the concrete collaborator wired by the server.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// Record is the persisted template shape.
type Record struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	ReceiptKind           string          `json:"receiptKind"`
	PaperWidthMillimeters int             `json:"paperWidthMillimeters"`
	IsDefault             bool            `json:"isDefault,omitempty"`
	Configuration         json.RawMessage `json:"configuration"`
}

// Document decodes the record's configuration into a template document.
func (r *Record) Document() (*templateformat.Document, error) {
	return templateformat.Parse(r.Configuration)
}

// Store is the template-storage collaborator consumed by the engine.
type Store interface {
	List() []*Record
	Get(id string) *Record
	Default(receiptKind string) *Record
	Save(record *Record) (string, error)
	Delete(id string) bool
}

// FileStore keeps template records in a single JSON file.
type FileStore struct {
	filePath string
	data     map[string]*Record
	order    []string // insertion order, so List stays stable
	mu       sync.RWMutex
}

// NewFileStore creates a file store. A missing file is fine; it is created on
// first save.
func NewFileStore(filePath string) (*FileStore, error) {
	s := &FileStore{
		filePath: filePath,
		data:     make(map[string]*Record),
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load template store: %w", err)
		}
	}

	return s, nil
}

// List returns all records in insertion order.
func (s *FileStore) List() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Record, 0, len(s.order))
	for _, id := range s.order {
		recordCopy := *s.data[id]
		result = append(result, &recordCopy)
	}
	return result
}

// Get returns a record by ID, or nil.
func (s *FileStore) Get(id string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.data[id]
	if !exists {
		return nil
	}

	recordCopy := *record
	return &recordCopy
}

// Default returns the default record for a receipt kind, or nil when none is
// marked; callers fall back to the built-in document.
func (s *FileStore) Default(receiptKind string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		record := s.data[id]
		if record.ReceiptKind == receiptKind && record.IsDefault {
			recordCopy := *record
			return &recordCopy
		}
	}
	return nil
}

// Save inserts or updates a record, minting an ID for new records, and
// persists the store. Returns the record's ID.
func (s *FileStore) Save(record *Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	if _, exists := s.data[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}

	recordCopy := *record
	s.data[record.ID] = &recordCopy

	if err := s.save(); err != nil {
		return "", fmt.Errorf("failed to save template store: %w", err)
	}

	return record.ID, nil
}

// Delete removes a record and persists the store.
func (s *FileStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return false
	}

	delete(s.data, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if err := s.save(); err != nil {
		// Non-critical: the in-memory state is already consistent and the
		// next successful save rewrites the file.
	}
	return true
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	for _, record := range records {
		s.data[record.ID] = record
		s.order = append(s.order, record.ID)
	}
	return nil
}

func (s *FileStore) save() error {
	records := make([]*Record, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.data[id])
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0644)
}
