package scoring

import (
	"fmt"
	"math"

	"atscore/internal/types"
)

// Weights blends the three report components into the overall score.
type Weights struct {
	Sections float64
	Keywords float64
	Format   float64
}

// GradeBand maps scores at or above Min to Grade.
type GradeBand struct {
	Grade string
	Min   float64
}

// Config holds every tunable constant of the engine.
type Config struct {
	Weights        Weights
	SectionWeights map[types.SectionKind]float64
	// Grades must be ordered by strictly descending Min and end with a band
	// whose Min is 0, so every score maps to exactly one grade.
	Grades []GradeBand

	TopN                 int
	CommendableThreshold float64

	// DiminishAfter entries count fully; each further entry counts half as
	// much as the one before it.
	DiminishAfter int
	// MaxFutureYears bounds how far past ReferenceYear a graduation date may lie.
	MaxFutureYears int
	// ReferenceYear anchors date plausibility checks. Zero means the year the
	// engine is built.
	ReferenceYear int

	MinJDFrequency int
	MaxJobKeywords int

	MandatoryMultiplier float64
	PreferredMultiplier float64
}

// DefaultGrades is the standard letter-grade table.
func DefaultGrades() []GradeBand {
	return []GradeBand{
		{"A+", 95}, {"A", 90}, {"A-", 85},
		{"B+", 80}, {"B", 75}, {"B-", 70},
		{"C+", 65}, {"C", 60}, {"C-", 55},
		{"D", 50}, {"F", 0},
	}
}

// DefaultSectionWeights returns the per-section weights.
func DefaultSectionWeights() map[types.SectionKind]float64 {
	return map[types.SectionKind]float64{
		types.SectionPersonalInfo: 0.10,
		types.SectionSummary:      0.10,
		types.SectionExperience:   0.35,
		types.SectionEducation:    0.15,
		types.SectionSkills:       0.20,
		types.SectionProjects:     0.10,
	}
}

func DefaultConfig() Config {
	return Config{
		Weights:              Weights{Sections: 0.60, Keywords: 0.25, Format: 0.15},
		SectionWeights:       DefaultSectionWeights(),
		Grades:               DefaultGrades(),
		TopN:                 10,
		CommendableThreshold: 80,
		DiminishAfter:        5,
		MaxFutureYears:       6,
		MinJDFrequency:       2,
		MaxJobKeywords:       40,
		MandatoryMultiplier:  1.6,
		PreferredMultiplier:  1.2,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.Weights.Sections < 0 || c.Weights.Keywords < 0 || c.Weights.Format < 0 {
		return fmt.Errorf("component weights must not be negative")
	}
	if c.Weights.Sections+c.Weights.Format <= 0 {
		return fmt.Errorf("sections and format weights cannot both be zero")
	}
	for _, kind := range types.ResumeSections() {
		w, ok := c.SectionWeights[kind]
		if !ok {
			return fmt.Errorf("missing weight for section %s", kind)
		}
		if w <= 0 {
			return fmt.Errorf("weight for section %s must be positive", kind)
		}
	}
	if err := validateGrades(c.Grades); err != nil {
		return err
	}
	if c.TopN <= 0 {
		return fmt.Errorf("topN must be positive")
	}
	if c.CommendableThreshold < 0 || c.CommendableThreshold > 100 {
		return fmt.Errorf("commendable threshold must be within 0..100")
	}
	if c.DiminishAfter <= 0 {
		return fmt.Errorf("diminishAfter must be positive")
	}
	if c.MaxFutureYears < 0 {
		return fmt.Errorf("maxFutureYears must not be negative")
	}
	if c.MinJDFrequency <= 0 || c.MaxJobKeywords <= 0 {
		return fmt.Errorf("minJDFrequency and maxJobKeywords must be positive")
	}
	if c.MandatoryMultiplier < 1 || c.PreferredMultiplier < 1 {
		return fmt.Errorf("requirement multipliers must be at least 1")
	}
	return nil
}

func validateGrades(grades []GradeBand) error {
	if len(grades) == 0 {
		return fmt.Errorf("grade table is empty")
	}
	seen := make(map[string]bool, len(grades))
	prev := math.Inf(1)
	for _, band := range grades {
		if band.Grade == "" {
			return fmt.Errorf("grade band with min %.0f has no label", band.Min)
		}
		if seen[band.Grade] {
			return fmt.Errorf("grade %q appears twice", band.Grade)
		}
		seen[band.Grade] = true
		if band.Min >= prev {
			return fmt.Errorf("grade %q: thresholds must strictly decrease", band.Grade)
		}
		prev = band.Min
	}
	if last := grades[len(grades)-1]; last.Min != 0 {
		return fmt.Errorf("lowest grade %q must start at 0, got %.0f", last.Grade, last.Min)
	}
	return nil
}

// Grade maps a 0..100 score onto the configured grade table.
func (c Config) Grade(score int) string {
	for _, band := range c.Grades {
		if float64(score) >= band.Min {
			return band.Grade
		}
	}
	return c.Grades[len(c.Grades)-1].Grade
}
