// Package catalog loads the plant catalog from JSON and syncs it into storage.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/repository"
	"github.com/osse101/idlegarden/internal/validation"
)

var (
	ErrDuplicatePlantType = errors.New("duplicate plant type id")

	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Config is the JSON plant catalog
type Config struct {
	Version     string `json:"version"`
	Description string `json:"description"`

	Plants []domain.PlantTypeDef `json:"plants"`
}

// Loader reads, checks and syncs plant catalogs
type Loader interface {
	Load(path string) (*Config, error)
	Parse(data []byte, source string) (*Config, error)
	Validate(cfg *Config) error
	SyncToDatabase(ctx context.Context, cfg *Config, repo repository.GardenRepository) (*SyncResult, error)
}

// SyncResult counts what a sync changed
type SyncResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

type catalogLoader struct {
	schemaValidator validation.SchemaValidator
}

// NewLoader creates a Loader using the built-in catalog schema
func NewLoader() Loader {
	return &catalogLoader{schemaValidator: validation.NewSchemaValidator()}
}

// Load reads and parses a catalog file
func (l *catalogLoader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadCatalogFailed, err)
	}
	return l.Parse(data, path)
}

// Parse schema-checks and decodes catalog JSON
func (l *catalogLoader) Parse(data []byte, source string) (*Config, error) {
	if err := l.schemaValidator.ValidateBytes(data, validation.PlantCatalogSchema); err != nil {
		return nil, fmt.Errorf(ErrMsgSchemaFailed, source, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(ErrMsgParseCatalogFailed, err)
	}
	return &cfg, nil
}

// Validate checks rules the schema cannot express, such as unique ids
func (l *catalogLoader) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, ErrMsgCatalogNil)
	}
	if len(cfg.Plants) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, ErrMsgNoPlantsDefined)
	}

	seen := make(map[string]bool, len(cfg.Plants))
	for i := range cfg.Plants {
		if err := validatePlant(i, &cfg.Plants[i], seen); err != nil {
			return err
		}
	}
	return nil
}

func validatePlant(index int, p *domain.PlantTypeDef, seen map[string]bool) error {
	if p.ID == "" {
		return fmt.Errorf(ErrFmtPlantAtIndexEmpty, ErrInvalidCatalog, index)
	}
	if seen[p.ID] {
		return fmt.Errorf(ErrFmtDuplicatePlantTypeID, ErrDuplicatePlantType, p.ID)
	}
	seen[p.ID] = true

	if p.Name == "" {
		return fmt.Errorf(ErrFmtPlantEmptyName, ErrInvalidCatalog, p.ID)
	}
	if p.LevelRequired < 1 {
		return fmt.Errorf(ErrFmtPlantBadLevel, ErrInvalidCatalog, p.ID)
	}
	if p.BaseGrowthSeconds <= 0 {
		return fmt.Errorf(ErrFmtPlantBadGrowth, ErrInvalidCatalog, p.ID)
	}
	switch p.Rarity {
	case domain.RarityCommon, domain.RarityUncommon, domain.RarityRare, domain.RarityEpic, domain.RarityLegendary:
	default:
		return fmt.Errorf(ErrFmtPlantUnknownRarity, ErrInvalidCatalog, p.ID, p.Rarity)
	}
	return nil
}

// SyncToDatabase writes new and changed plant types. Plant types missing
// from the catalog are left alone since planted plots may still reference them.
func (l *catalogLoader) SyncToDatabase(ctx context.Context, cfg *Config, repo repository.GardenRepository) (*SyncResult, error) {
	log := logger.FromContext(ctx)

	existing, err := repo.ListPlantTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetExistingFailed, err)
	}
	byID := make(map[string]domain.PlantTypeDef, len(existing))
	for _, pt := range existing {
		byID[pt.ID] = pt
	}

	result := &SyncResult{}
	changed := make([]domain.PlantTypeDef, 0, len(cfg.Plants))
	for _, def := range cfg.Plants {
		cur, ok := byID[def.ID]
		switch {
		case !ok:
			result.Inserted++
		case cur != def:
			result.Updated++
		default:
			result.Skipped++
			continue
		}
		changed = append(changed, def)
	}

	if len(changed) == 0 {
		log.Info(LogMsgCatalogUnchanged, "plants", len(cfg.Plants))
		return result, nil
	}

	if _, err := repo.UpsertPlantTypes(ctx, changed); err != nil {
		return nil, fmt.Errorf(ErrMsgUpsertFailed, err)
	}

	log.Info(LogMsgSyncCompleted,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped)
	return result, nil
}
