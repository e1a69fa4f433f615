// Package scoring is the deterministic ATS scoring core. An Engine is built
// once from a lexicon and a Config and is then safe for concurrent use; it
// performs no I/O and reads no clock while scoring.
package scoring

import (
	"encoding/json"
	"math"
	"slices"
	"time"

	"atscore/internal/errors"
	"atscore/internal/lexicon"
	"atscore/internal/textanalysis"
	"atscore/internal/types"
	"atscore/internal/validation"
)

// Engine scores resumes.
type Engine struct {
	store    *lexicon.Store
	analyzer *textanalysis.Analyzer
	cfg      Config
	scorers  []SectionScorer
	keywords keywordAnalyzer
	format   formatAnalyzer
}

// New builds an engine. A zero cfg.ReferenceYear is fixed to the current
// year here, once, so repeated Score calls stay reproducible.
func New(store *lexicon.Store, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "scoring engine needs a lexicon", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid scoring configuration", err)
	}
	if cfg.ReferenceYear == 0 {
		cfg.ReferenceYear = time.Now().Year()
	}

	w := cfg.SectionWeights
	th := cfg.CommendableThreshold
	e := &Engine{
		store:    store,
		analyzer: textanalysis.New(store),
		cfg:      cfg,
		keywords: keywordAnalyzer{store: store, cfg: cfg},
		format:   formatAnalyzer{cfg: cfg},
	}
	e.scorers = []SectionScorer{
		personalInfoScorer{weight: w[types.SectionPersonalInfo], commendable: th},
		summaryScorer{store: store, weight: w[types.SectionSummary], commendable: th},
		experienceScorer{weight: w[types.SectionExperience], commendable: th, diminishAfter: cfg.DiminishAfter},
		educationScorer{weight: w[types.SectionEducation], commendable: th, referenceYear: cfg.ReferenceYear, maxFutureYears: cfg.MaxFutureYears},
		skillsScorer{store: store, weight: w[types.SectionSkills], commendable: th},
		projectsScorer{weight: w[types.SectionProjects], commendable: th, diminishAfter: cfg.DiminishAfter},
	}
	return e, nil
}

// LexiconVersion identifies the tables the engine scores with.
func (e *Engine) LexiconVersion() string { return e.store.Version() }

// Lexicon returns the engine's lexicon.
func (e *Engine) Lexicon() *lexicon.Store { return e.store }

// Config returns the effective configuration, including the fixed
// reference year.
func (e *Engine) Config() Config { return e.cfg }

// ScoreJSON decodes and scores a JSON resume. Anything that is not a JSON
// object of the resume shape yields an InvalidInputError.
func (e *Engine) ScoreJSON(payload []byte, jobDescription *string) (*types.Report, error) {
	if err := validation.Structure(payload); err != nil {
		return nil, err
	}
	var resume types.Resume
	if err := json.Unmarshal(payload, &resume); err != nil {
		return nil, errors.NewInvalidInputError("resume could not be decoded", err)
	}
	return e.Score(&resume, jobDescription)
}

// Score rates a resume, optionally against a job description. A nil
// jobDescription leaves the job match out of the report; a weak resume is
// never an error.
func (e *Engine) Score(resume *types.Resume, jobDescription *string) (*types.Report, error) {
	if resume == nil {
		return nil, errors.NewInvalidInputError("resume is required", nil)
	}

	doc := analyzeDocument(e.analyzer, resume)

	sections := make([]types.SectionScore, 0, len(e.scorers))
	for _, scorer := range e.scorers {
		if s, ok := scorer.Score(doc); ok {
			sections = append(sections, s)
		}
	}
	kw := e.keywords.analyze(doc, jobDescription)
	fm := e.format.analyze(doc)

	report := &types.Report{
		SectionScores:   sections,
		KeywordAnalysis: kw.analysis,
		FormatAnalysis:  fm.analysis,
		ContentQuality:  contentQuality(doc),
		LexiconVersion:  e.store.Version(),
	}
	report.OverallScore = e.overall(sections, kw.analysis.JobMatchScore, fm.analysis.Score)
	report.Grade = e.cfg.Grade(report.OverallScore)
	report.TopIssues, report.TopSuggestions = e.rank(sections, kw.analysis, fm.analysis)
	report.Strengths = collectStrengths(sections, kw.strengths, fm.strengths)
	return report, nil
}

// overall blends the components. Without a job match the keyword weight is
// dropped and the remaining weights renormalize.
func (e *Engine) overall(sections []types.SectionScore, jobMatch *float64, format float64) int {
	var sum, total float64
	for _, s := range sections {
		sum += s.Score * s.Weight
		total += s.Weight
	}
	composite := 0.0
	if total > 0 {
		composite = sum / total
	}

	w := e.cfg.Weights
	blended := composite*w.Sections + format*w.Format
	weights := w.Sections + w.Format
	if jobMatch != nil {
		blended += *jobMatch * w.Keywords
		weights += w.Keywords
	}
	score := math.Round(blended / weights)
	return int(clamp(score, 0, 100))
}

// rank merges findings of every component and orders them by severity,
// then canonical section order, then emission order.
func (e *Engine) rank(sections []types.SectionScore, kw types.KeywordAnalysis, fm types.FormatAnalysis) (issues, suggestions []types.RankedFinding) {
	issues = []types.RankedFinding{}
	suggestions = []types.RankedFinding{}
	collect := func(dst *[]types.RankedFinding, kind types.SectionKind, findings []types.Finding) {
		for _, f := range findings {
			*dst = append(*dst, types.RankedFinding{Section: kind, Severity: f.Severity, Message: f.Message})
		}
	}

	for _, s := range sections {
		collect(&issues, s.Section, s.Issues)
		collect(&suggestions, s.Section, s.Suggestions)
	}
	collect(&issues, types.SectionKeywords, kw.Issues)
	collect(&suggestions, types.SectionKeywords, kw.Suggestions)
	collect(&issues, types.SectionFormat, fm.Issues)
	collect(&suggestions, types.SectionFormat, fm.Suggestions)

	order := func(a, b types.RankedFinding) int {
		if a.Severity != b.Severity {
			return int(b.Severity) - int(a.Severity)
		}
		return int(a.Section) - int(b.Section)
	}
	slices.SortStableFunc(issues, order)
	slices.SortStableFunc(suggestions, order)

	return truncate(issues, e.cfg.TopN), truncate(suggestions, e.cfg.TopN)
}

func truncate(list []types.RankedFinding, n int) []types.RankedFinding {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func collectStrengths(sections []types.SectionScore, extra ...[]string) []string {
	strengths := []string{}
	for _, s := range sections {
		strengths = append(strengths, s.Strengths...)
	}
	for _, list := range extra {
		strengths = append(strengths, list...)
	}
	return strengths
}

// contentQuality summarizes the writing quality of experience bullets.
func contentQuality(doc *Document) types.ContentQuality {
	bullets := doc.AllBullets()
	st := statsOf(bullets)

	words := 0
	fillers := 0
	for _, b := range bullets {
		words += b.Features.WordCount
		fillers += len(b.Features.FillerPhrases)
	}

	return types.ContentQuality{
		BulletCount:           st.count,
		QuantifiedBullets:     st.quantified,
		QuantifiedBulletRatio: round2(ratio(st.quantified, st.count)),
		AvgBulletLength:       round1(ratio(words, st.count)),
		ActionVerbRatio:       round2(ratio(st.action, st.count)),
		FillerCount:           fillers,
		PassiveCount:          st.passive,
	}
}
