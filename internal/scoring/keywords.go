package scoring

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"atscore/internal/lexicon"
	"atscore/internal/textanalysis"
	"atscore/internal/types"
)

const (
	maxTechnicalListed = 15
	maxSoftListed      = 10
	maxVerbsListed     = 15
	maxCommonListed    = 5
	maxMissingNamed    = 5
)

type keywordAnalyzer struct {
	store *lexicon.Store
	cfg   Config
}

type keywordResult struct {
	analysis  types.KeywordAnalysis
	strengths []string
}

// jobKeyword is a candidate keyword of a job description.
type jobKeyword struct {
	text    string
	surface string
	freq    int
	weight  float64
	first   int
}

func (k *jobKeyword) relevance() float64 { return float64(k.freq) * k.weight }

// resumeTerms collects the terms of every scored text of the resume. Contact
// details are left out: they are not evidence of skills.
func (ka keywordAnalyzer) resumeTerms(doc *Document) []lexicon.Term {
	r := doc.Resume
	terms := slices.Clone(doc.Summary.Terms)
	add := func(texts ...string) {
		for _, t := range texts {
			terms = append(terms, ka.store.Terms(t)...)
		}
	}

	for i, exp := range r.Experience {
		add(exp.Position)
		for _, b := range doc.Experience[i] {
			terms = append(terms, b.Features.Terms...)
		}
	}
	for _, group := range r.Skills {
		add(group.Items...)
	}
	for i, p := range r.Projects {
		add(p.Name)
		for _, b := range doc.Projects[i] {
			terms = append(terms, b.Features.Terms...)
		}
		add(p.Technologies...)
	}
	for _, edu := range r.Education {
		add(edu.Degree, edu.Field)
	}
	return terms
}

func (ka keywordAnalyzer) analyze(doc *Document, jobDescription *string) keywordResult {
	terms := ka.resumeTerms(doc)
	// A phrase also makes each of its words present, and words drive the
	// keyword density.
	present := make(map[string]struct{}, len(terms))
	words := 0
	for _, t := range terms {
		present[t.Text] = struct{}{}
		parts := strings.Fields(t.Text)
		words += len(parts)
		if len(parts) > 1 {
			for _, w := range parts {
				present[w] = struct{}{}
			}
		}
	}

	a := types.KeywordAnalysis{
		TechnicalKeywords:     []string{},
		SoftSkillKeywords:     []string{},
		ActionVerbsUsed:       []string{},
		MissingCommonKeywords: []string{},
		MatchedKeywords:       []string{},
		MissingKeywords:       []string{},
		Issues:                []types.Finding{},
		Suggestions:           []types.Finding{},
	}

	seen := make(map[string]struct{}, len(terms))
	distinct := 0
	for _, t := range terms {
		if _, dup := seen[t.Text]; dup {
			continue
		}
		seen[t.Text] = struct{}{}

		counted := false
		if ka.store.IsTechnical(t.Text) {
			a.CategoryBreakdown.Technical++
			a.TechnicalKeywords = appendCapped(a.TechnicalKeywords, ka.store.Label(t.Text), maxTechnicalListed)
			counted = true
		}
		if ka.store.IsSoft(t.Text) {
			a.CategoryBreakdown.Soft++
			a.SoftSkillKeywords = appendCapped(a.SoftSkillKeywords, ka.store.Label(t.Text), maxSoftListed)
			counted = true
		}
		if ka.store.IsActionVerb(t.Text) {
			a.CategoryBreakdown.ActionVerb++
			a.ActionVerbsUsed = appendCapped(a.ActionVerbsUsed, ka.store.Label(t.Text), maxVerbsListed)
			counted = true
		}
		if ka.store.IsFiller(t.Text) {
			a.CategoryBreakdown.Filler++
		}
		if counted {
			distinct++
		}
	}
	a.TotalKeywords = distinct
	if words > 0 {
		a.KeywordDensity = round2(float64(distinct) / float64(words) * 100)
	}

	for _, common := range ka.store.CommonKeywords() {
		if _, ok := present[common]; !ok {
			a.MissingCommonKeywords = appendCapped(a.MissingCommonKeywords, ka.store.Label(common), maxCommonListed)
		}
	}

	var res keywordResult
	if a.CategoryBreakdown.Technical == 0 {
		a.Issues = append(a.Issues, types.Finding{Severity: types.SeverityMajor, Message: "No recognizable technical keywords found"})
	}
	if a.CategoryBreakdown.ActionVerb < 5 {
		a.Suggestions = append(a.Suggestions, types.Finding{Severity: types.SeverityMinor, Message: "Use a wider range of action verbs across your bullets"})
	}
	if len(a.MissingCommonKeywords) > 0 {
		a.Suggestions = append(a.Suggestions, types.Finding{
			Severity: types.SeverityMinor,
			Message:  "Consider mentioning: " + strings.Join(a.MissingCommonKeywords, ", "),
		})
	}

	if jobDescription != nil {
		ka.matchJob(&a, &res, present, *jobDescription)
	}
	res.analysis = a
	return res
}

func (ka keywordAnalyzer) matchJob(a *types.KeywordAnalysis, res *keywordResult, present map[string]struct{}, jd string) {
	keywords := ka.jobKeywords(jd)
	a.JobKeywords = make([]string, 0, len(keywords))

	score := 0.0
	if len(keywords) == 0 {
		a.Issues = append(a.Issues, types.Finding{Severity: types.SeverityMajor, Message: "Job description contains no recognizable keywords"})
		a.JobMatchScore = &score
		return
	}

	for _, kw := range keywords {
		a.JobKeywords = append(a.JobKeywords, kw.surface)
		if _, ok := present[kw.text]; ok {
			a.MatchedKeywords = append(a.MatchedKeywords, kw.surface)
		} else {
			a.MissingKeywords = append(a.MissingKeywords, kw.surface)
		}
	}
	score = round1(ratio(len(a.MatchedKeywords), len(keywords)) * 100)
	a.JobMatchScore = &score

	if score < 50 {
		a.Issues = append(a.Issues, types.Finding{
			Severity: types.SeverityMajor,
			Message:  fmt.Sprintf("Resume covers only %.0f%% of the job description keywords", score),
		})
	}
	if len(a.MissingKeywords) > 0 {
		named := a.MissingKeywords[:min(len(a.MissingKeywords), maxMissingNamed)]
		a.Suggestions = append(a.Suggestions, types.Finding{
			Severity: types.SeverityMajor,
			Message:  "Add job keywords you genuinely have: " + strings.Join(named, ", "),
		})
	}
	if score >= ka.cfg.CommendableThreshold {
		res.strengths = append(res.strengths, fmt.Sprintf("Strong match with the job description (%.0f%% of keywords)", score))
	}
}

// jobKeywords extracts the ranked keyword list of a job description. A term
// qualifies when it is a known technical or soft-skill term, or when it
// recurs often enough. Terms in sentences with requirement markers weigh
// more; ties keep their order of first appearance.
func (ka keywordAnalyzer) jobKeywords(jd string) []*jobKeyword {
	byText := make(map[string]*jobKeyword)
	var order []*jobKeyword
	pos := 0

	for _, sentence := range textanalysis.SplitSentences(jd) {
		terms := ka.store.Terms(sentence)
		weight := 1.0
		switch ka.store.RequirementLevel(terms) {
		case lexicon.RequirementMandatory:
			weight = ka.cfg.MandatoryMultiplier
		case lexicon.RequirementPreferred:
			weight = ka.cfg.PreferredMultiplier
		}

		for _, t := range terms {
			pos++
			if ka.isNoise(t.Text) {
				continue
			}
			kw, ok := byText[t.Text]
			if !ok {
				kw = &jobKeyword{text: t.Text, surface: t.Surface, first: pos, weight: weight}
				byText[t.Text] = kw
				order = append(order, kw)
			}
			kw.freq++
			kw.weight = max(kw.weight, weight)
		}
	}

	kept := order[:0]
	for _, kw := range order {
		if ka.store.IsTechnical(kw.text) || ka.store.IsSoft(kw.text) || kw.freq >= ka.cfg.MinJDFrequency {
			kept = append(kept, kw)
		}
	}

	slices.SortStableFunc(kept, func(a, b *jobKeyword) int {
		if c := cmp.Compare(b.relevance(), a.relevance()); c != 0 {
			return c
		}
		return cmp.Compare(a.first, b.first)
	})
	if len(kept) > ka.cfg.MaxJobKeywords {
		kept = kept[:ka.cfg.MaxJobKeywords]
	}
	return kept
}

func (ka keywordAnalyzer) isNoise(text string) bool {
	s := ka.store
	if s.IsStopword(text) || s.IsNoise(text) || s.IsMarker(text) || s.IsPronoun(text) || s.IsFiller(text) {
		return true
	}
	return len(text) < 3 && !s.IsTechnical(text) && !s.IsSoft(text)
}

func appendCapped(list []string, item string, limit int) []string {
	if len(list) >= limit {
		return list
	}
	return append(list, item)
}
