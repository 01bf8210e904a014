package configstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"card-price-index/internal/coverage"
	"card-price-index/internal/filter"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.json")
	return NewStore(path, zerolog.Nop())
}

func testPreset(name string) FilterConfiguration {
	start := "2025-01-03"
	return FilterConfiguration{
		Name:        name,
		DisplayName: "Test Preset",
		Description: "covers the SV generation",
		Filters:     filter.Spec{Sets: "SV*", Types: "Card", Period: "3M"},
		ValidationMetadata: coverage.Result{
			FilterSpec:         filter.Spec{Sets: "SV*", Types: "Card", Period: "3M"},
			CoveragePercentage: 1.0,
			SignaturesFound:    3,
			SignaturesTotal:    3,
			OptimalStartDate:   &start,
			RecordsAligned:     12,
			TimeSeriesPoints:   4,
			MissingSignatures:  []string{},
			QualityScore:       1.0,
		},
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(testPreset("sv_cards")); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("sv_cards")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Filters != (filter.Spec{Sets: "SV*", Types: "Card", Period: "3M"}) {
		t.Fatalf("filters did not roundtrip: %+v", loaded.Filters)
	}
	if loaded.ValidationMetadata.CoveragePercentage != 1.0 {
		t.Fatalf("validation metadata did not roundtrip: %+v", loaded.ValidationMetadata)
	}
	if loaded.ValidationMetadata.OptimalStartDate == nil || *loaded.ValidationMetadata.OptimalStartDate != "2025-01-03" {
		t.Fatalf("start date did not roundtrip: %v", loaded.ValidationMetadata.OptimalStartDate)
	}
	if loaded.UsageStatistics.CreatedAt == "" {
		t.Fatal("created_at must be stamped on first save")
	}
}

func TestSaveRejectsInvalidNames(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"", "has space", "slash/name", "x1234567890123456789012345678901234567890123456789012345"} {
		preset := testPreset("valid")
		preset.Name = name
		if err := store.Save(preset); err == nil {
			t.Fatalf("expected name %q to be rejected", name)
		}
	}
}

func TestSaveRejectsInvalidFilters(t *testing.T) {
	store := newTestStore(t)
	preset := testPreset("bad_filters")
	preset.Filters = filter.Spec{Sets: "XYZ", Types: "Card", Period: "3M"}
	if err := store.Save(preset); err == nil {
		t.Fatal("expected unmatched sets pattern to be rejected")
	}
}

func TestUpdateKeepsCreationAndUsage(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := store.Save(testPreset("sv_cards")); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateUsage("sv_cards"); err != nil {
		t.Fatal(err)
	}

	store.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	updated := testPreset("sv_cards")
	updated.Description = "updated"
	if err := store.Save(updated); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("sv_cards")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.UsageStatistics.CreatedAt != "2025-01-01T00:00:00Z" {
		t.Fatalf("creation time not preserved: %s", loaded.UsageStatistics.CreatedAt)
	}
	if loaded.UsageStatistics.UseCount != 1 {
		t.Fatalf("use count not preserved: %d", loaded.UsageStatistics.UseCount)
	}
	if loaded.Description != "updated" {
		t.Fatalf("description not updated: %s", loaded.Description)
	}
}

func TestListOrdersByRecency(t *testing.T) {
	store := newTestStore(t)
	stamp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return stamp }

	for _, name := range []string{"first", "second", "third"} {
		if err := store.Save(testPreset(name)); err != nil {
			t.Fatal(err)
		}
		stamp = stamp.Add(time.Hour)
	}

	stamp = stamp.Add(time.Hour)
	if err := store.UpdateUsage("first"); err != nil {
		t.Fatal(err)
	}

	presets, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(presets))
	}
	if presets[0].Name != "first" {
		t.Fatalf("most recently used preset must sort first, got %s", presets[0].Name)
	}
}

func TestDeleteMissingPreset(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete("absent"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestRefreshValidation(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(testPreset("sv_cards")); err != nil {
		t.Fatal(err)
	}

	refreshed := testPreset("sv_cards").ValidationMetadata
	refreshed.CoveragePercentage = 0.5
	refreshed.QualityScore = 0.45
	if err := store.RefreshValidation("sv_cards", refreshed, 321); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("sv_cards")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ValidationMetadata.CoveragePercentage != 0.5 {
		t.Fatalf("validation metadata not refreshed: %+v", loaded.ValidationMetadata)
	}
	if loaded.SystemMetadata.DatasetSize != 321 {
		t.Fatalf("dataset size not recorded: %d", loaded.SystemMetadata.DatasetSize)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "presets.json"), zerolog.Nop())
	if err := store.Save(testPreset("sv_cards")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "presets.json" {
		t.Fatalf("expected only presets.json, got %v", entries)
	}

	payload, err := os.ReadFile(filepath.Join(dir, "presets.json"))
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		t.Fatalf("store file is not valid JSON: %v", err)
	}
	if data["schema_version"] != "1.0" {
		t.Fatalf("unexpected schema version: %v", data["schema_version"])
	}
}
