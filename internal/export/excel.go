// Package export writes batch scoring results to an Excel workbook.
package export

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"atscore/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet  = "Summary"
	RankedSheet   = "Ranked Resumes"
	SectionsSheet = "Section Scores"
	IssuesSheet   = "Top Issues"
)

var border = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// scoreBands color ranked rows by overall score, highest band first.
var scoreBands = []struct {
	min   int
	color string
}{
	{90, "C6EFCE"},
	{70, "FFEB9C"},
	{50, "FFC7CE"},
	{0, "FF9999"},
}

// WriteWorkbook writes entries to path, appending .xlsx when missing.
// Entries that failed to score appear in the summary counts only.
func WriteWorkbook(path string, entries []types.BatchEntry) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	ranked := rankEntries(entries)

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{RankedSheet, SectionsSheet, IssuesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	steps := []struct {
		sheet string
		fill  func(*excelize.File, string, int) error
	}{
		{SummarySheet, func(f *excelize.File, s string, h int) error { return writeSummary(f, s, h, entries, ranked) }},
		{RankedSheet, func(f *excelize.File, s string, h int) error { return writeRanked(f, s, h, ranked) }},
		{SectionsSheet, func(f *excelize.File, s string, h int) error { return writeSections(f, s, h, ranked) }},
		{IssuesSheet, func(f *excelize.File, s string, h int) error { return writeIssues(f, s, h, ranked) }},
	}
	for _, step := range steps {
		if err := step.fill(f, step.sheet, header); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", step.sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// rankEntries returns the scored entries by overall score, highest first.
// Equal scores keep their input order.
func rankEntries(entries []types.BatchEntry) []types.BatchEntry {
	var ranked []types.BatchEntry
	for _, e := range entries {
		if e.Report != nil {
			ranked = append(ranked, e)
		}
	}
	slices.SortStableFunc(ranked, func(a, b types.BatchEntry) int {
		return cmp.Compare(b.Report.OverallScore, a.Report.OverallScore)
	})
	return ranked
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// writeRow fills consecutive cells of row starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers ...string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values...); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", cell(len(headers), 1), style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, sheet string, header int, entries, ranked []types.BatchEntry) error {
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 14); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, "ATS Batch Report", ""); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}

	var total int
	grades := map[string]int{}
	var gradeOrder []string
	for _, e := range ranked {
		total += e.Report.OverallScore
		if _, seen := grades[e.Report.Grade]; !seen {
			gradeOrder = append(gradeOrder, e.Report.Grade)
		}
		grades[e.Report.Grade]++
	}

	rows := [][]any{
		{"Resumes:", len(entries)},
		{"Scored:", len(ranked)},
		{"Failed:", len(entries) - len(ranked)},
	}
	if len(ranked) > 0 {
		rows = append(rows,
			[]any{"Average Score:", fmt.Sprintf("%.1f", float64(total)/float64(len(ranked)))},
			[]any{"Highest Score:", ranked[0].Report.OverallScore},
			[]any{"Lowest Score:", ranked[len(ranked)-1].Report.OverallScore},
		)
	}

	row := 3
	for _, r := range rows {
		if err := writeRow(f, sheet, row, r...); err != nil {
			return err
		}
		row++
	}

	if len(gradeOrder) == 0 {
		return nil
	}
	row++
	if err := writeRow(f, sheet, row, "Grade", "Resumes"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(2, row), header); err != nil {
		return err
	}
	// Ranked order visits grades best first.
	for _, g := range gradeOrder {
		row++
		if err := writeRow(f, sheet, row, g, grades[g]); err != nil {
			return err
		}
	}
	return nil
}

func writeRanked(f *excelize.File, sheet string, header int, ranked []types.BatchEntry) error {
	if err := f.SetColWidth(sheet, "B", "B", 32); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, header, "Rank", "File", "Score", "Grade", "Job Match"); err != nil {
		return err
	}

	styles := make([]int, len(scoreBands))
	for i, band := range scoreBands {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{band.color}, Pattern: 1},
			Border: border,
		})
		if err != nil {
			return err
		}
		styles[i] = style
	}

	for i, e := range ranked {
		row := i + 2
		match := "n/a"
		if m := e.Report.KeywordAnalysis.JobMatchScore; m != nil {
			match = fmt.Sprintf("%.1f%%", *m)
		}
		if err := writeRow(f, sheet, row, i+1, e.File, e.Report.OverallScore, e.Report.Grade, match); err != nil {
			return err
		}
		for b, band := range scoreBands {
			if e.Report.OverallScore >= band.min {
				if err := f.SetCellStyle(sheet, cell(1, row), cell(5, row), styles[b]); err != nil {
					return err
				}
				break
			}
		}
	}

	if len(ranked) > 0 {
		if err := f.AutoFilter(sheet, fmt.Sprintf("A1:E%d", len(ranked)+1), nil); err != nil {
			return err
		}
	}
	return nil
}

func writeSections(f *excelize.File, sheet string, header int, ranked []types.BatchEntry) error {
	headers := []string{"File"}
	for _, kind := range types.ResumeSections() {
		headers = append(headers, kind.Title())
	}
	headers = append(headers, "Keywords", "Format")
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, header, headers...); err != nil {
		return err
	}

	for i, e := range ranked {
		values := []any{e.File}
		for _, kind := range types.ResumeSections() {
			if s, ok := e.Report.Section(kind); ok {
				values = append(values, s.Score)
			} else {
				values = append(values, "")
			}
		}
		// The keyword cell is blank when no job description was scored.
		if m := e.Report.KeywordAnalysis.JobMatchScore; m != nil {
			values = append(values, *m)
		} else {
			values = append(values, "")
		}
		values = append(values, e.Report.FormatAnalysis.Score)
		if err := writeRow(f, sheet, i+2, values...); err != nil {
			return err
		}
	}
	return nil
}

func writeIssues(f *excelize.File, sheet string, header int, ranked []types.BatchEntry) error {
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "D", "D", 70); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, header, "File", "Severity", "Section", "Issue"); err != nil {
		return err
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	row := 2
	for _, e := range ranked {
		for _, issue := range e.Report.TopIssues {
			if err := writeRow(f, sheet, row, e.File, issue.Severity.String(), issue.Section.Title(), issue.Message); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell(4, row), cell(4, row), wrap); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
