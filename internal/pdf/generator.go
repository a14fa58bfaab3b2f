// Package pdf renders the founder interview dossier with maroto/v2. The
// dossier is attached to the founder_dossier email once a candidate books.
package pdf

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hiring_pipeline_backend/internal/hiring"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ── Colour palette ──────────────────────────────────────────────────────

var (
	colorPrimary   = &props.Color{Red: 17, Green: 24, Blue: 39}    // near-black
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128} // gray-500
	colorAccent    = &props.Color{Red: 37, Green: 99, Blue: 235}   // blue-600
	colorTableHead = &props.Color{Red: 241, Green: 245, Blue: 249} // slate-100
	colorTableAlt  = &props.Color{Red: 249, Green: 250, Blue: 251} // gray-50
	colorGreen     = &props.Color{Red: 22, Green: 163, Blue: 74}   // green-600
	colorRed       = &props.Color{Red: 220, Green: 38, Blue: 38}   // red-600
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240} // slate-200
)

// Link is a labelled URL printed as a clickable line.
type Link struct {
	Label string
	URL   string
}

// DossierData holds everything printed in an interview dossier.
type DossierData struct {
	Applicant   hiring.Applicant
	Rubric      hiring.Rubric
	VideoLinks  []Link
	CompanyName string
	GeneratedAt time.Time
}

// GenerateDossier renders the applicant dossier as a PDF document.
func GenerateDossier(data DossierData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(buildFooter(data)); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(buildHeader(data)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(6))

	m.AddRows(buildContactTable(data.Applicant)...)
	m.AddRows(row.New(6))

	a := data.Applicant
	if a.AppScore != nil {
		m.AddRows(buildScoreSection("APPLICATION SCORE", *a.AppScore, data.Rubric.Application)...)
		m.AddRows(row.New(4))
	}
	if a.VideoScore != nil {
		m.AddRows(buildScoreSection("VIDEO SCORE", *a.VideoScore, data.Rubric.Video)...)
		m.AddRows(row.New(4))
	}

	m.AddRows(buildAnswers(a.Answers)...)

	if len(data.VideoLinks) > 0 {
		m.AddRows(row.New(4))
		m.AddRows(buildVideoLinks(data.VideoLinks)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// ── Header ──────────────────────────────────────────────────────────────

func buildHeader(data DossierData) []core.Row {
	title := col.New(8).Add(
		text.New(data.Applicant.Name, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Color: colorPrimary,
		}),
		text.New("Interview dossier", props.Text{
			Size:  10,
			Color: colorSecondary,
			Top:   10,
		}),
	)

	when := "Interview: TBD"
	if data.Applicant.InterviewAt != nil {
		when = "Interview: " + data.Applicant.InterviewAt.UTC().Format("Mon 02 Jan 2006 15:04 MST")
	}
	meta := col.New(4).Add(
		text.New(data.CompanyName, props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: colorAccent,
		}),
		text.New(when, props.Text{
			Size:  8,
			Align: align.Right,
			Color: colorSecondary,
			Top:   8,
		}),
	)

	return []core.Row{row.New(20).Add(title, meta)}
}

// ── Contact table ───────────────────────────────────────────────────────

func buildContactTable(a hiring.Applicant) []core.Row {
	rows := []core.Row{sectionTitle("CANDIDATE")}

	phone := a.Phone
	if phone == "" {
		phone = "not provided"
	}
	pairs := [][2]string{
		{"Email", a.Email},
		{"Phone", phone},
		{"Source", a.Source.Label()},
		{"Applied", a.AppliedAt.UTC().Format("02 Jan 2006")},
	}
	if a.BookingURL != nil && *a.BookingURL != "" {
		pairs = append(pairs, [2]string{"Call link", *a.BookingURL})
	}

	for i, p := range pairs {
		r := row.New(6).Add(
			col.New(3).Add(text.New(p[0], props.Text{Size: 8, Style: fontstyle.Bold, Color: colorSecondary, Top: 1})),
			col.New(9).Add(text.New(p[1], props.Text{Size: 8, Color: colorPrimary, Top: 1})),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
		}
		rows = append(rows, r)
	}
	return rows
}

// ── Score sections ──────────────────────────────────────────────────────

func buildScoreSection(title string, s hiring.Score, rubric hiring.StageRubric) []core.Row {
	verdict, verdictColor := "PASS", colorGreen
	if !s.Pass {
		verdict, verdictColor = "FAIL", colorRed
	}

	rows := []core.Row{
		row.New(8).Add(
			col.New(8).Add(text.New(title, props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent, Top: 2})),
			col.New(4).Add(text.New(fmt.Sprintf("%d/100  %s", s.Composite, verdict), props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Right,
				Color: verdictColor,
				Top:   1,
			})),
		),
	}

	if s.Summary != "" {
		rows = append(rows, paragraph(s.Summary, colorPrimary))
	}

	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}
	rows = append(rows, row.New(7).Add(
		col.New(7).Add(text.New("Dimension", headerStyle)),
		col.New(2).Add(text.New("Weight", headerStyleRight)),
		col.New(3).Add(text.New("Score", headerStyleRight)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Bottom,
		BorderColor:     colorBorder,
	}))

	for i, line := range dimensionLines(s, rubric) {
		r := row.New(6).Add(
			col.New(7).Add(text.New(line.label, props.Text{Size: 8, Color: colorPrimary, Top: 1})),
			col.New(2).Add(text.New(line.weight, props.Text{Size: 8, Color: colorSecondary, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(fmt.Sprintf("%d", line.score), props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1})),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
		}
		rows = append(rows, r)
	}

	rows = append(rows, bulletList("Strengths", s.Strengths, colorGreen)...)
	rows = append(rows, bulletList("Concerns", s.Concerns, colorSecondary)...)
	rows = append(rows, bulletList("Red flags", s.RedFlags, colorRed)...)
	if s.ResumeSummary != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New("Résumé", props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorSecondary, Top: 1}))))
		rows = append(rows, paragraph(s.ResumeSummary, colorPrimary))
	}
	return rows
}

type dimensionLine struct {
	label  string
	weight string
	score  int
}

// dimensionLines follows rubric order and appends any extra dimension keys
// the provider returned, sorted by key.
func dimensionLines(s hiring.Score, rubric hiring.StageRubric) []dimensionLine {
	seen := make(map[string]bool, len(rubric.Dimensions))
	lines := make([]dimensionLine, 0, len(s.Dimensions))
	for _, d := range rubric.Dimensions {
		v, ok := s.Dimensions[d.Key]
		if !ok {
			continue
		}
		seen[d.Key] = true
		lines = append(lines, dimensionLine{label: d.Label, weight: fmt.Sprintf("%d%%", d.Weight), score: v})
	}
	var extra []string
	for k := range s.Dimensions {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		lines = append(lines, dimensionLine{label: k, weight: "-", score: s.Dimensions[k]})
	}
	return lines
}

// ── Answers ─────────────────────────────────────────────────────────────

func buildAnswers(answers hiring.Answers) []core.Row {
	rows := []core.Row{sectionTitle("APPLICATION ANSWERS")}
	for i, answer := range answers {
		rows = append(rows,
			row.New(5).Add(col.New(12).Add(text.New(hiring.QuestionLabels[i], props.Text{
				Size:  7.5,
				Style: fontstyle.Bold,
				Color: colorSecondary,
				Top:   1,
			}))),
			paragraph(answer, colorPrimary),
		)
	}
	return rows
}

// ── Video links ─────────────────────────────────────────────────────────

func buildVideoLinks(links []Link) []core.Row {
	rows := []core.Row{sectionTitle("VIDEO RESPONSES")}
	for _, l := range links {
		url := l.URL
		rows = append(rows, row.New(6).Add(col.New(12).Add(text.New(l.Label, props.Text{
			Size:      8,
			Color:     colorAccent,
			Top:       1,
			Hyperlink: &url,
		}))))
	}
	return rows
}

// ── Footer (registered, repeats on every page) ──────────────────────────

func buildFooter(data DossierData) core.Row {
	footer := joinParts([]string{
		data.CompanyName,
		"Confidential",
		"Generated " + data.GeneratedAt.UTC().Format("02 Jan 2006 15:04 MST"),
	}, "  ·  ")

	return row.New(10).Add(
		col.New(12).Add(
			text.New(footer, props.Text{
				Size:  6.5,
				Color: colorSecondary,
				Align: align.Center,
				Top:   4,
			}),
		),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorBorder,
	})
}

// ── Helpers ─────────────────────────────────────────────────────────────

func sectionTitle(title string) core.Row {
	return row.New(7).Add(
		col.New(12).Add(text.New(title, props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Color: colorAccent,
		})),
	)
}

// paragraph sizes the row to roughly fit the wrapped text.
func paragraph(body string, color *props.Color) core.Row {
	lines := 1 + len([]rune(body))/110
	return row.New(float64(4 + 4*lines)).Add(
		col.New(12).Add(text.New(body, props.Text{Size: 8, Color: color, Top: 1})),
	)
}

func bulletList(label string, items []string, color *props.Color) []core.Row {
	if len(items) == 0 {
		return nil
	}
	rows := []core.Row{row.New(5).Add(col.New(12).Add(text.New(label, props.Text{
		Size:  7.5,
		Style: fontstyle.Bold,
		Color: color,
		Top:   1,
	})))}
	for _, item := range items {
		rows = append(rows, paragraph("• "+item, colorPrimary))
	}
	return rows
}

func joinParts(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
