package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"sitesearch/internal/domain"
)

// historySchema accepts any list of objects that carry the mandatory fields.
// Unknown engine or filter values are allowed and fall back at query time.
const historySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["domain", "searchTerm", "timestamp"],
    "properties": {
      "domain":       {"type": "string", "minLength": 1},
      "searchTerm":   {"type": "string", "minLength": 1},
      "timestamp":    {"type": "number"},
      "searchEngine": {"type": "string"},
      "timeFilter":   {"type": "string"},
      "fileType":     {"type": "string"},
      "exactMatch":   {"type": "boolean"}
    }
  }
}`

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func historyJSONSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiledSchema, compiledSchemaErr = jsonschema.NewCompiler().Compile([]byte(historySchema))
	})
	return compiledSchema, compiledSchemaErr
}

// HistoryRepo reads and writes the history list through a KVStore.
type HistoryRepo struct {
	store domain.KVStore
}

// NewHistoryRepo creates a HistoryRepo over store.
func NewHistoryRepo(store domain.KVStore) *HistoryRepo {
	return &HistoryRepo{store: store}
}

// Load returns the stored history. A missing key is an empty history.
// Unreadable or invalid documents return ErrPersistence.
func (r *HistoryRepo) Load(ctx context.Context) ([]domain.SearchHistoryEntry, error) {
	data, err := r.store.Get(ctx, domain.HistoryKey)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.SearchHistoryEntry{}, nil
	}
	if err != nil {
		return nil, domain.NewDomainError("HistoryRepo.Load", domain.ErrPersistence, err.Error())
	}
	return decodeHistory(data)
}

// Save replaces the stored history with entries.
func (r *HistoryRepo) Save(ctx context.Context, entries []domain.SearchHistoryEntry) error {
	if entries == nil {
		entries = []domain.SearchHistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return domain.NewDomainError("HistoryRepo.Save", domain.ErrPersistence, err.Error())
	}
	if err := r.store.Put(ctx, domain.HistoryKey, data); err != nil {
		return domain.NewDomainError("HistoryRepo.Save", domain.ErrPersistence, err.Error())
	}
	return nil
}

func decodeHistory(data []byte) ([]domain.SearchHistoryEntry, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domain.NewDomainError("HistoryRepo.Load", domain.ErrPersistence, "decode: "+err.Error())
	}
	schema, err := historyJSONSchema()
	if err != nil {
		return nil, fmt.Errorf("compile history schema: %w", err)
	}
	if result := schema.Validate(raw); !result.IsValid() {
		return nil, domain.NewDomainError("HistoryRepo.Load", domain.ErrPersistence, fmt.Sprintf("schema: %s", result.Error()))
	}

	var entries []domain.SearchHistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, domain.NewDomainError("HistoryRepo.Load", domain.ErrPersistence, "decode: "+err.Error())
	}
	if len(entries) > domain.MaxHistoryEntries {
		entries = entries[:domain.MaxHistoryEntries]
	}
	return entries, nil
}
