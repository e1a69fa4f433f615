package scoring

import (
	"testing"

	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhraseWordsMatchJobKeywords(t *testing.T) {
	engine := newTestEngine(t)
	resume := &types.Resume{
		PersonalInfo: types.PersonalInfo{Name: "Jane Doe"},
		Experience: []types.Experience{{
			Company:     "Acme",
			Position:    "Analyst",
			StartDate:   "2021-01",
			Description: []string{"Led data analysis for 3 product lines"},
		}},
	}
	jd := "You will own data pipelines. Data quality matters. Data contracts too."

	report, err := engine.Score(resume, strPtr(jd))
	require.NoError(t, err)
	ka := report.KeywordAnalysis

	assert.Equal(t, []string{"data"}, ka.JobKeywords)
	assert.Equal(t, []string{"data"}, ka.MatchedKeywords)
	assert.Empty(t, ka.MissingKeywords)
	require.NotNil(t, ka.JobMatchScore)
	assert.Equal(t, 100.0, *ka.JobMatchScore)
}

func TestKeywordDensityCountsWords(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name    string
		items   []string
		total   int
		density float64
	}{
		{"single words", []string{"Python", "Docker"}, 2, 100},
		{"phrase spans two words", []string{"Data Analysis", "Python"}, 2, 66.67},
		{"repeats dilute", []string{"Python", "Python", "Docker", "Docker"}, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume := &types.Resume{
				PersonalInfo: types.PersonalInfo{Name: "Jane Doe"},
				Skills:       []types.Skill{{Category: "Skills", Items: tt.items}},
			}
			report, err := engine.Score(resume, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.total, report.KeywordAnalysis.TotalKeywords)
			assert.Equal(t, tt.density, report.KeywordAnalysis.KeywordDensity)
		})
	}
}
