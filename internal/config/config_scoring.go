package config

import (
	"fmt"

	"atscore/internal/scoring"
	"atscore/internal/types"
)

// ToScoring converts the scoring section into an engine configuration.
// Unset values keep the engine defaults; the result is validated.
func (c *Config) ToScoring() (scoring.Config, error) {
	sc := c.Scoring
	out := scoring.DefaultConfig()

	if w := sc.Weights; w != (WeightsConfig{}) {
		out.Weights = scoring.Weights{Sections: w.Sections, Keywords: w.Keywords, Format: w.Format}
	}
	for key, weight := range sc.SectionWeights {
		kind, ok := types.ParseSectionKind(key)
		if !ok || kind > types.SectionProjects {
			return scoring.Config{}, fmt.Errorf("unknown section %q in sectionWeights", key)
		}
		out.SectionWeights[kind] = weight
	}
	if len(sc.Grades) > 0 {
		out.Grades = make([]scoring.GradeBand, len(sc.Grades))
		for i, g := range sc.Grades {
			out.Grades[i] = scoring.GradeBand{Grade: g.Grade, Min: g.Min}
		}
	}

	setInt(&out.TopN, sc.TopN)
	setFloat(&out.CommendableThreshold, sc.CommendableThreshold)
	setInt(&out.DiminishAfter, sc.DiminishAfter)
	setInt(&out.MaxFutureYears, sc.MaxFutureYears)
	setInt(&out.MinJDFrequency, sc.MinJDFrequency)
	setInt(&out.MaxJobKeywords, sc.MaxJobKeywords)
	setFloat(&out.MandatoryMultiplier, sc.MandatoryMultiplier)
	setFloat(&out.PreferredMultiplier, sc.PreferredMultiplier)
	out.ReferenceYear = sc.ReferenceYear

	if err := out.Validate(); err != nil {
		return scoring.Config{}, err
	}
	return out, nil
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
