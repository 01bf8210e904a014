package filter

import "fmt"

// Spec is a raw, user-supplied filter combination.
type Spec struct {
	Sets   string `json:"sets" mapstructure:"sets"`
	Types  string `json:"types" mapstructure:"types"`
	Period string `json:"period" mapstructure:"period"`
}

// String renders the spec in CLI flag form.
func (s Spec) String() string {
	return fmt.Sprintf(`--sets %q --types %q --period %q`, s.Sets, s.Types, s.Period)
}

// Validate checks that the spec expands to at least one set and one type
// and names a known period. Used by the preset store before persisting.
func (s Spec) Validate() error {
	if len(ExpandSets(s.Sets)) == 0 {
		return fmt.Errorf("sets pattern %q matches nothing", s.Sets)
	}
	if len(ExpandTypes(s.Types)) == 0 {
		return fmt.Errorf("types pattern %q matches nothing", s.Types)
	}
	if !ValidPeriod(s.Period) {
		return fmt.Errorf("unknown period %q", s.Period)
	}
	return nil
}

// Normalized is a spec resolved against the vocabularies.
type Normalized struct {
	Spec   Spec
	SetIn  map[string]struct{}
	TypeIn map[string]struct{}
	Period string
}

// Normalize expands a spec's patterns and substitutes the default period
// for an invalid one. Every substitution is reported in the adjustments
// list so callers can surface "corrected X to Y" without re-deriving it.
// Empty expansions are not adjusted here; detecting them is the caller's
// contract.
func Normalize(spec Spec) (Normalized, []string) {
	var adjustments []string

	period := spec.Period
	if !ValidPeriod(period) {
		adjustments = append(adjustments,
			fmt.Sprintf("invalid period %q replaced with %q", period, DefaultPeriod))
		period = DefaultPeriod
	}

	norm := Normalized{
		Spec:   Spec{Sets: spec.Sets, Types: spec.Types, Period: period},
		SetIn:  ExpandSets(spec.Sets),
		TypeIn: ExpandTypes(spec.Types),
		Period: period,
	}
	return norm, adjustments
}
