package catalog

// DefaultPath is where the plant catalog lives relative to the repo root
const DefaultPath = "configs/plant_catalog.json"

// File operation error messages
const (
	ErrMsgReadCatalogFailed  = "failed to read plant catalog: %w"
	ErrMsgParseCatalogFailed = "failed to parse plant catalog: %w"
	ErrMsgSchemaFailed       = "schema validation failed for %s: %w"
)

// Validation error messages
const (
	ErrMsgCatalogNil      = "catalog is nil"
	ErrMsgNoPlantsDefined = "no plants defined"
)

// Database operation error messages
const (
	ErrMsgGetExistingFailed = "failed to get existing plant types: %w"
	ErrMsgUpsertFailed      = "failed to upsert plant types: %w"
)

// Sync log messages
const (
	LogMsgCatalogUnchanged = "Plant catalog unchanged, skipping sync"
	LogMsgSyncCompleted    = "Plant catalog sync completed"
)

// Format strings for validation errors
const (
	ErrFmtPlantAtIndexEmpty    = "%w: plant at index %d has empty id"
	ErrFmtPlantEmptyName       = "%w: plant '%s' has empty name"
	ErrFmtPlantBadLevel        = "%w: plant '%s' has level_required below 1"
	ErrFmtPlantBadGrowth       = "%w: plant '%s' has non-positive base_growth_seconds"
	ErrFmtPlantUnknownRarity   = "%w: plant '%s' has unknown rarity '%s'"
	ErrFmtDuplicatePlantTypeID = "%w: '%s'"
)
