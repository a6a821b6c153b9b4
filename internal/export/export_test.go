package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"content-planner/internal/calendar"
	"content-planner/internal/model"
)

var june = calendar.NewMonth(2024, time.June, time.Sunday)

func sample() []model.Task {
	return []model.Task{
		{ID: "a", Title: "Spills in", Start: model.DatePtr(model.MustDate("2024-05-30")), End: model.DatePtr(model.MustDate("2024-06-03")), Status: model.StatusCorrection},
		{ID: "b", Title: "Reel, with comma", Start: model.DatePtr(model.MustDate("2024-06-12")), Status: model.StatusApproved, Platform: "Instagram", URL: "www.instagram.com/p/1"},
		{ID: "c", Title: "July post", Start: model.DatePtr(model.MustDate("2024-07-01")), Status: model.StatusNotReady},
		{ID: "d", Title: "Undated"},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"json": JSON, "CSV": CSV, "yml": YAML, " pdf ": PDF} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestInMonth(t *testing.T) {
	t.Parallel()

	got := InMonth(sample(), june)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("unexpected tasks %+v", got)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, JSON, june, sample()); err != nil {
		t.Fatal(err)
	}
	var got []model.Task
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].Title != "Reel, with comma" {
		t.Errorf("unexpected export %+v", got)
	}

	buf.Reset()
	if err := Write(&buf, JSON, calendar.NewMonth(2023, time.January, time.Sunday), sample()); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, CSV, june, sample()); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "id" || records[0][9] != "image_url" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[2][1] != "Reel, with comma" || records[2][10] != "www.instagram.com/p/1" {
		t.Errorf("unexpected row %v", records[2])
	}
	if records[1][3] != "2024-06-03" {
		t.Errorf("expected end date, got %q", records[1][3])
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, YAML, june, sample()); err != nil {
		t.Fatal(err)
	}
	var doc yamlDoc
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if doc.Month != "2024-06" || len(doc.Tasks) != 2 {
		t.Fatalf("unexpected doc %+v", doc)
	}
	if doc.Tasks[1].Platform != "Instagram" || doc.Tasks[1].Start != "2024-06-12" {
		t.Errorf("unexpected row %+v", doc.Tasks[1])
	}
}

func TestWritePDF(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, PDF, june, sample()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected a PDF, got %q", buf.Bytes()[:min(buf.Len(), 16)])
	}

	buf.Reset()
	if err := Write(&buf, PDF, calendar.NewMonth(2023, time.January, time.Sunday), nil); err != nil {
		t.Fatalf("empty month: %v", err)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(&bytes.Buffer{}, Format("xlsx"), june, nil); err == nil {
		t.Error("expected error")
	}
}
