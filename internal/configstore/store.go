// Package configstore persists named filter presets as JSON, with atomic
// temp-file-and-rename writes so a crashed process never leaves a torn file.
package configstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"card-price-index/internal/coverage"
	"card-price-index/internal/filter"
)

const schemaVersion = "1.0"

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// UsageStatistics tracks how a preset has been exercised.
type UsageStatistics struct {
	CreatedAt     string `json:"created_at"`
	LastUsed      string `json:"last_used,omitempty"`
	UseCount      int    `json:"use_count"`
	LastValidated string `json:"last_validated,omitempty"`
}

// SystemMetadata records provenance of the stored entry.
type SystemMetadata struct {
	Version     string `json:"version"`
	DatasetSize int    `json:"dataset_size"`
}

// FilterConfiguration is one saved preset.
type FilterConfiguration struct {
	Name               string          `json:"name"`
	DisplayName        string          `json:"display_name"`
	Description        string          `json:"description,omitempty"`
	Filters            filter.Spec     `json:"filters"`
	ValidationMetadata coverage.Result `json:"validation_metadata"`
	UsageStatistics    UsageStatistics `json:"usage_statistics"`
	SystemMetadata     SystemMetadata  `json:"system_metadata"`
}

type storeFile struct {
	SchemaVersion  string                         `json:"schema_version"`
	CreatedAt      string                         `json:"created_at"`
	LastModified   string                         `json:"last_modified"`
	Configurations map[string]FilterConfiguration `json:"configurations"`
}

// Store reads and writes the preset file.
type Store struct {
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore constructs a Store for the given file path.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With().Str("component", "config_store").Logger(),
		now:    time.Now,
	}
}

// ValidateName checks the preset naming rules: letters, digits, underscores
// and hyphens, at most 50 characters.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid preset name %q: must match %s", name, namePattern.String())
	}
	return nil
}

// Save inserts or updates a preset. Updates keep the original creation time
// and use count.
func (s *Store) Save(preset FilterConfiguration) error {
	if err := ValidateName(preset.Name); err != nil {
		return err
	}
	if err := preset.Filters.Validate(); err != nil {
		return fmt.Errorf("preset %s: %w", preset.Name, err)
	}

	data, err := s.load()
	if err != nil {
		return err
	}

	now := s.timestamp()
	if existing, ok := data.Configurations[preset.Name]; ok {
		preset.UsageStatistics.CreatedAt = existing.UsageStatistics.CreatedAt
		preset.UsageStatistics.UseCount = existing.UsageStatistics.UseCount
		if preset.UsageStatistics.LastUsed == "" {
			preset.UsageStatistics.LastUsed = existing.UsageStatistics.LastUsed
		}
	} else if preset.UsageStatistics.CreatedAt == "" {
		preset.UsageStatistics.CreatedAt = now
	}
	preset.UsageStatistics.LastValidated = now

	data.Configurations[preset.Name] = preset
	data.LastModified = now

	if err := s.write(data); err != nil {
		return err
	}
	s.logger.Info().Str("preset", preset.Name).Msg("preset saved")
	return nil
}

// Load returns one preset by name.
func (s *Store) Load(name string) (FilterConfiguration, error) {
	data, err := s.load()
	if err != nil {
		return FilterConfiguration{}, err
	}
	preset, ok := data.Configurations[name]
	if !ok {
		return FilterConfiguration{}, fmt.Errorf("preset %q not found", name)
	}
	return preset, nil
}

// List returns all presets, most recently used first, then most recently
// created.
func (s *Store) List() ([]FilterConfiguration, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}

	presets := make([]FilterConfiguration, 0, len(data.Configurations))
	for _, preset := range data.Configurations {
		presets = append(presets, preset)
	}
	sort.Slice(presets, func(i, j int) bool {
		a, b := presets[i].UsageStatistics, presets[j].UsageStatistics
		if a.LastUsed != b.LastUsed {
			return a.LastUsed > b.LastUsed
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return presets[i].Name < presets[j].Name
	})
	return presets, nil
}

// Delete removes a preset by name.
func (s *Store) Delete(name string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data.Configurations[name]; !ok {
		return fmt.Errorf("preset %q not found", name)
	}

	delete(data.Configurations, name)
	data.LastModified = s.timestamp()

	if err := s.write(data); err != nil {
		return err
	}
	s.logger.Info().Str("preset", name).Msg("preset deleted")
	return nil
}

// UpdateUsage bumps the use counter and last-used timestamp of a preset.
func (s *Store) UpdateUsage(name string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	preset, ok := data.Configurations[name]
	if !ok {
		return fmt.Errorf("preset %q not found", name)
	}

	now := s.timestamp()
	preset.UsageStatistics.UseCount++
	preset.UsageStatistics.LastUsed = now
	data.Configurations[name] = preset
	data.LastModified = now

	return s.write(data)
}

// RefreshValidation replaces a preset's stored coverage metadata with a
// fresh analysis result.
func (s *Store) RefreshValidation(name string, result coverage.Result, datasetSize int) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	preset, ok := data.Configurations[name]
	if !ok {
		return fmt.Errorf("preset %q not found", name)
	}

	now := s.timestamp()
	preset.ValidationMetadata = result
	preset.UsageStatistics.LastValidated = now
	preset.SystemMetadata.DatasetSize = datasetSize
	data.Configurations[name] = preset
	data.LastModified = now

	if err := s.write(data); err != nil {
		return err
	}
	s.logger.Info().Str("preset", name).Msg("validation metadata refreshed")
	return nil
}

// Backup writes a copy of the current store to backupPath.
func (s *Store) Backup(backupPath string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	if err := writeAtomic(backupPath, data); err != nil {
		return err
	}
	s.logger.Info().Str("path", backupPath).Msg("preset backup written")
	return nil
}

func (s *Store) load() (storeFile, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			now := s.timestamp()
			return storeFile{
				SchemaVersion:  schemaVersion,
				CreatedAt:      now,
				LastModified:   now,
				Configurations: map[string]FilterConfiguration{},
			}, nil
		}
		return storeFile{}, fmt.Errorf("read preset store: %w", err)
	}

	var data storeFile
	if err := json.Unmarshal(payload, &data); err != nil {
		return storeFile{}, fmt.Errorf("parse preset store %s: %w", s.path, err)
	}
	if data.Configurations == nil {
		data.Configurations = map[string]FilterConfiguration{}
	}
	if data.SchemaVersion == "" {
		data.SchemaVersion = schemaVersion
	}
	return data, nil
}

func (s *Store) write(data storeFile) error {
	return writeAtomic(s.path, data)
}

// writeAtomic serialises to a temp file in the target directory and renames
// it over the destination.
func writeAtomic(path string, data storeFile) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preset dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp preset file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("encode preset store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp preset file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace preset store: %w", err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
