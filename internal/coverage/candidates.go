package coverage

import (
	"fmt"
	"strings"

	"card-price-index/internal/filter"
)

// candidateSpecs builds the priority-ordered discovery list: per-family
// wildcards crossed with each product type first, then each concrete set
// against all types, then a few broad catch-alls. Heuristic ordering meant
// to surface broad, high-value filters before narrow ones.
func candidateSpecs() []filter.Spec {
	specs := make([]filter.Spec, 0, 64)

	typePatterns := []string{"Card", "*Box", "Booster Box", "Elite Trainer Box"}
	for _, family := range filter.Families() {
		for _, types := range typePatterns {
			specs = append(specs, filter.Spec{
				Sets:   family + "*",
				Types:  types,
				Period: filter.DefaultPeriod,
			})
		}
	}

	for _, set := range filter.Sorted(filter.ValidSets) {
		specs = append(specs, filter.Spec{
			Sets:   set,
			Types:  "*",
			Period: filter.DefaultPeriod,
		})
	}

	specs = append(specs,
		filter.Spec{Sets: "*", Types: "Card", Period: filter.DefaultPeriod},
		filter.Spec{Sets: "*", Types: "*Box", Period: filter.DefaultPeriod},
		filter.Spec{Sets: "SV01,SV02,SV03", Types: "*", Period: filter.DefaultPeriod},
	)
	return specs
}

type defaultSpec struct {
	spec        filter.Spec
	description string
}

// defaultSpecs are the safe configurations offered when no targeted
// alternative qualifies. They pair one product family with one concrete
// type, the combinations that historically align cleanly.
func defaultSpecs() []defaultSpec {
	return []defaultSpec{
		{
			spec:        filter.Spec{Sets: "SV*", Types: "Card", Period: filter.DefaultPeriod},
			description: "Scarlet & Violet cards",
		},
		{
			spec:        filter.Spec{Sets: "SWSH*", Types: "Card", Period: filter.DefaultPeriod},
			description: "Sword & Shield cards",
		},
		{
			spec:        filter.Spec{Sets: "SV*", Types: "*Box", Period: filter.DefaultPeriod},
			description: "Scarlet & Violet sealed products",
		},
	}
}

func describe(spec filter.Spec, coverage float64) string {
	subject := spec.Sets
	if strings.HasSuffix(subject, "*") && subject != "*" {
		subject = strings.TrimSuffix(subject, "*") + " generation"
	} else if subject == "*" {
		subject = "all sets"
	}

	types := spec.Types
	switch types {
	case "*":
		types = "all products"
	case "*Box":
		types = "sealed products"
	}

	return fmt.Sprintf("%s, %s (%.0f%% coverage)", subject, types, coverage*100)
}
