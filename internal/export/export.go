package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"content-planner/internal/calendar"
	"content-planner/internal/model"
)

type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	YAML Format = "yaml"
	PDF  Format = "pdf"
)

var Formats = []Format{JSON, CSV, YAML, PDF}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return YAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %s", s)
}

// InMonth keeps the tasks that show up on at least one day of m.
func InMonth(tasks []model.Task, m calendar.Month) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Start == nil {
			continue
		}
		for d := m.First(); m.Contains(d); d = d.AddDays(1) {
			if t.Covers(d) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Write exports the tasks of month m in format f.
func Write(w io.Writer, f Format, m calendar.Month, tasks []model.Task) error {
	tasks = InMonth(tasks, m)
	switch f {
	case JSON:
		if tasks == nil {
			tasks = []model.Task{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case CSV:
		return writeCSV(w, tasks)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlDoc{Month: fmt.Sprintf("%d-%02d", m.Year, int(m.Month)), Tasks: rows(tasks)}); err != nil {
			return err
		}
		return enc.Close()
	case PDF:
		return writePDF(w, m, tasks)
	default:
		return fmt.Errorf("unknown format %s", f)
	}
}

type row struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Start       string `yaml:"start"`
	End         string `yaml:"end,omitempty"`
	Status      string `yaml:"status"`
	Platform    string `yaml:"platform,omitempty"`
	ContentType string `yaml:"content_type,omitempty"`
	Campaign    string `yaml:"campaign,omitempty"`
	Caption     string `yaml:"caption,omitempty"`
	ImageURL    string `yaml:"image_url,omitempty"`
	PostURL     string `yaml:"post_url,omitempty"`
	VideoURL    string `yaml:"video_url,omitempty"`
	Comments    string `yaml:"comments,omitempty"`
}

type yamlDoc struct {
	Month string `yaml:"month"`
	Tasks []row  `yaml:"tasks"`
}

func rows(tasks []model.Task) []row {
	out := make([]row, 0, len(tasks))
	for _, t := range tasks {
		r := row{
			ID:          t.ID,
			Title:       t.Title,
			Status:      string(t.Status),
			Platform:    t.Platform,
			ContentType: t.ContentType,
			Campaign:    t.Campaign,
			Caption:     t.Caption,
			ImageURL:    t.PostURL,
			PostURL:     t.URL,
			VideoURL:    t.VideoURL,
			Comments:    t.Comments,
		}
		if t.Start != nil {
			r.Start = t.Start.String()
		}
		if t.End != nil {
			r.End = t.End.String()
		}
		out = append(out, r)
	}
	return out
}

var csvHeader = []string{
	"id", "title", "start", "end", "status", "platform", "content_type", "campaign",
	"caption", "image_url", "post_url", "video_url", "comments",
}

func writeCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, r := range rows(tasks) {
		_ = cw.Write([]string{
			r.ID, r.Title, r.Start, r.End, r.Status, r.Platform, r.ContentType, r.Campaign,
			r.Caption, r.ImageURL, r.PostURL, r.VideoURL, r.Comments,
		})
	}
	cw.Flush()
	return cw.Error()
}

var pdfColors = map[calendar.Color][3]int{
	calendar.Orange: {230, 120, 0},
	calendar.Blue:   {30, 90, 200},
	calendar.Red:    {200, 30, 30},
	calendar.Green:  {30, 140, 60},
	calendar.Gray:   {120, 120, 120},
}

func writePDF(w io.Writer, m calendar.Month, tasks []model.Task) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Content plan "+m.String(), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr("Content plan: "+m.String()))
	pdf.Ln(12)

	cols := []struct {
		name  string
		width float64
	}{
		{"Date", 38}, {"Status", 44}, {"Title", 85}, {"Platform", 30}, {"Link", 80},
	}
	pdf.SetFont("Arial", "B", 10)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.name, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	if len(tasks) == 0 {
		pdf.Cell(0, 8, "No tasks scheduled.")
	}
	for _, t := range tasks {
		date := t.Start.String()
		if t.End != nil && t.End.After(t.Start.AddDays(1).Time) {
			// End is exclusive; print the last day shown.
			date += " - " + t.End.AddDays(-1).Format("01-02")
		}
		link := firstNonEmpty(t.URL, t.PostURL, t.VideoURL)
		if label, ok := calendar.LinkLabel(link); ok {
			link = label
		}

		pdf.CellFormat(cols[0].width, 6, date, "", 0, "L", false, 0, "")
		rgb := pdfColors[calendar.StatusColor(t.Status)]
		pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
		pdf.CellFormat(cols[1].width, 6, tr(string(t.Status)), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(cols[2].width, 6, tr(clip(t.Title, 60)), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[3].width, 6, tr(t.Platform), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[4].width, 6, tr(link), "", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
