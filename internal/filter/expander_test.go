package filter

import (
	"reflect"
	"testing"
)

func TestExpandSetsWildcard(t *testing.T) {
	sets := ExpandSets("*")
	if len(sets) != len(ValidSets) {
		t.Fatalf("expected all %d sets, got %d", len(ValidSets), len(sets))
	}
}

func TestExpandSetsGlobFamily(t *testing.T) {
	sets := ExpandSets("SV*")
	if len(sets) != 14 {
		t.Fatalf("expected 14 SV sets, got %d", len(sets))
	}
	for s := range sets {
		if s[:2] != "SV" {
			t.Fatalf("non-SV set matched: %s", s)
		}
	}
}

func TestExpandSetsCommaList(t *testing.T) {
	sets := ExpandSets("SV01, SV02 ,SWSH09")
	want := map[string]struct{}{"SV01": {}, "SV02": {}, "SWSH09": {}}
	if !reflect.DeepEqual(sets, want) {
		t.Fatalf("expected %v, got %v", want, sets)
	}
}

func TestExpandSetsDropsUnknownLiterals(t *testing.T) {
	sets := ExpandSets("SV01,BOGUS")
	if len(sets) != 1 {
		t.Fatalf("expected only the valid literal, got %v", sets)
	}
	if _, ok := sets["SV01"]; !ok {
		t.Fatalf("SV01 missing from %v", sets)
	}
}

func TestExpandSetsNothingMatches(t *testing.T) {
	if sets := ExpandSets("XYZ*"); len(sets) != 0 {
		t.Fatalf("expected empty expansion, got %v", sets)
	}
}

func TestExpandTypesGlob(t *testing.T) {
	types := ExpandTypes("*Box")
	want := map[string]struct{}{"Booster Box": {}, "Elite Trainer Box": {}}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
}

func TestExpandTypesLiteral(t *testing.T) {
	types := ExpandTypes("Card")
	if len(types) != 1 {
		t.Fatalf("expected exactly Card, got %v", types)
	}
}

func TestFamilies(t *testing.T) {
	families := Families()
	if !reflect.DeepEqual(families, []string{"SV", "SWSH"}) {
		t.Fatalf("expected [SV SWSH], got %v", families)
	}
}

func TestValidPeriod(t *testing.T) {
	if !ValidPeriod("3M") {
		t.Fatal("3M must be valid")
	}
	if ValidPeriod("6M") {
		t.Fatal("6M must be invalid")
	}
}

func TestNormalizeInvalidPeriod(t *testing.T) {
	norm, adjustments := Normalize(Spec{Sets: "*", Types: "*", Period: "1Y"})
	if norm.Period != DefaultPeriod {
		t.Fatalf("expected default period, got %q", norm.Period)
	}
	if len(adjustments) != 1 {
		t.Fatalf("expected one adjustment, got %v", adjustments)
	}
}

func TestNormalizeValidSpecUnchanged(t *testing.T) {
	norm, adjustments := Normalize(Spec{Sets: "SV01", Types: "Card", Period: "3M"})
	if len(adjustments) != 0 {
		t.Fatalf("unexpected adjustments: %v", adjustments)
	}
	if len(norm.SetIn) != 1 || len(norm.TypeIn) != 1 {
		t.Fatalf("unexpected expansions: %v %v", norm.SetIn, norm.TypeIn)
	}
}

func TestSpecValidate(t *testing.T) {
	valid := Spec{Sets: "SV*", Types: "*", Period: "3M"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid spec, got %v", err)
	}

	cases := []Spec{
		{Sets: "XYZ", Types: "*", Period: "3M"},
		{Sets: "*", Types: "Sticker", Period: "3M"},
		{Sets: "*", Types: "*", Period: "6M"},
	}
	for _, spec := range cases {
		if err := spec.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", spec)
		}
	}
}
