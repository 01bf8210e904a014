package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"card-price-index/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(set, name, end string, price string, collected string) model.Record {
	endDate := day(end)
	collectedAt, err := time.Parse(model.TimestampLayout, collected)
	if err != nil {
		panic(err)
	}
	return model.Record{
		GroupSet:    set,
		ProductType: "Card",
		PeriodLabel: "3M",
		ProductName: name,
		PeriodStart: endDate.AddDate(0, 0, -2),
		PeriodEnd:   endDate,
		Price:       decimal.RequireFromString(price),
		Volume:      5,
		CollectedAt: collectedAt,
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	records := []model.Record{
		record("SV01", "Card A", "2025-01-03", "100.50", "2025-07-24 15:00:00"),
		record("SWSH09", "Card B", "2025-01-05", "200.00", "2025-07-24 15:00:00"),
	}
	if err := WriteRecords(path, records); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded))
	}
	got, want := loaded[0], records[0]
	if got.Signature() != want.Signature() {
		t.Fatalf("signature changed on roundtrip: %+v vs %+v", got, want)
	}
	if !got.PeriodStart.Equal(want.PeriodStart) || !got.PeriodEnd.Equal(want.PeriodEnd) {
		t.Fatalf("period dates changed on roundtrip: %+v", got)
	}
	if !got.Price.Equal(want.Price) || got.Volume != want.Volume {
		t.Fatalf("price or volume changed on roundtrip: %+v", got)
	}
	if !got.CollectedAt.Equal(want.CollectedAt) {
		t.Fatalf("timestamp changed on roundtrip: %s", got.CollectedAt)
	}
}

func TestReadRecordsRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "set,type,period,name,start,end,price,volume,timestamp\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadRecords(path); err == nil || !strings.Contains(err.Error(), "header") {
		t.Fatalf("expected header error, got %v", err)
	}
}

func TestReadRecordsRejectsNegativeValues(t *testing.T) {
	dir := t.TempDir()
	header := strings.Join(Header, ",")

	cases := map[string]string{
		"negative_price.csv":  header + "\nSV01,Card,3M,Card A,2025-01-01,2025-01-03,-1.00,5,\n",
		"negative_volume.csv": header + "\nSV01,Card,3M,Card A,2025-01-01,2025-01-03,1.00,-5,\n",
		"bad_date.csv":        header + "\nSV01,Card,3M,Card A,01/01/2025,2025-01-03,1.00,5,\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadRecords(path); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestReadRecordsEmptyOptionalColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optional.csv")
	content := strings.Join(Header, ",") + "\nSV01,Card,3M,Card A,2025-01-01,2025-01-03,1.00,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := ReadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Volume != 0 {
		t.Fatalf("empty volume must read as zero, got %d", records[0].Volume)
	}
	if !records[0].CollectedAt.IsZero() {
		t.Fatalf("empty timestamp must read as zero time, got %s", records[0].CollectedAt)
	}
}

func TestMergeUniqueNewerCollectionWins(t *testing.T) {
	old := record("SV01", "Card A", "2025-01-03", "100.00", "2025-07-20 10:00:00")
	fresh := record("SV01", "Card A", "2025-01-03", "105.00", "2025-07-24 10:00:00")
	other := record("SV02", "Card B", "2025-01-03", "200.00", "2025-07-24 10:00:00")

	merged := MergeUnique([]model.Record{old, other}, []model.Record{fresh})
	if len(merged) != 2 {
		t.Fatalf("expected 2 records after merge, got %d", len(merged))
	}
	for _, r := range merged {
		if r.ProductName == "Card A" && !r.Price.Equal(fresh.Price) {
			t.Fatalf("newer collection must win, got price %s", r.Price)
		}
	}
}

func TestMergeUniqueKeepsExistingWhenIncomingOlder(t *testing.T) {
	current := record("SV01", "Card A", "2025-01-03", "105.00", "2025-07-24 10:00:00")
	stale := record("SV01", "Card A", "2025-01-03", "100.00", "2025-07-20 10:00:00")

	merged := MergeUnique([]model.Record{current}, []model.Record{stale})
	if len(merged) != 1 {
		t.Fatalf("expected 1 record, got %d", len(merged))
	}
	if !merged[0].Price.Equal(current.Price) {
		t.Fatalf("stale incoming record replaced a newer one: %s", merged[0].Price)
	}
}

func TestReadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	content := "set,type,period,name,url\nSV01,Card,3M,Charizard ex,https://example.com/charizard\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := ReadSources(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	want := Source{GroupSet: "SV01", ProductType: "Card", PeriodLabel: "3M", ProductName: "Charizard ex", URL: "https://example.com/charizard"}
	if sources[0] != want {
		t.Fatalf("unexpected source: %+v", sources[0])
	}
}

func TestReadSourcesRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte("set,type,name,url\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSources(path); err == nil {
		t.Fatal("expected header error")
	}
}
