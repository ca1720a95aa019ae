package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"apidrift/internal/diff"
	"apidrift/internal/model"
)

func sampleReport() Report {
	old := model.New(model.KindField, "replicas", "cfg.json:/replicas", "cfg.json")
	newEl := model.New(model.KindField, "replicas", "cfg.json:/replicas", "cfg.json")
	d := diff.NewDifference("jsondoc.changed").
		WithName("value changed").
		WithDescription("The value changed from `2` to `3`.").
		AddClassification(diff.DimensionSemantic, diff.SeverityPotentiallyBreaking).
		AddAttachment("oldValue", "2").
		AddAttachment("newValue", "3").
		WithCriticality(diff.CriticalityError).
		Build()
	return Report{Old: old, New: newEl, Differences: []diff.Difference{d}}
}

func TestTextReporterRendersDifference(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, TextOptions{})
	if err := r.Report(sampleReport()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"jsondoc.changed", "potentiallyBreaking", "error", "oldValue: 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "reports: 1, differences: 1") {
		t.Fatalf("summary missing:\n%s", out)
	}
}

func TestTextReporterSkipsEmptyReports(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, TextOptions{Quiet: true})
	if err := r.Report(Report{}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty report produced output: %q", buf.String())
	}
}

func TestJSONReporterRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSON(&buf)
	if err := r.Report(sampleReport()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var out OutputJSON
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(out.Reports) != 1 {
		t.Fatalf("reports = %v", out.Reports)
	}
	got := out.Reports[0]
	if got.Old != "cfg.json:/replicas" || len(got.Differences) != 1 {
		t.Fatalf("report = %+v", got)
	}
	if got.Differences[0].Classification["semantic"] != "potentiallyBreaking" {
		t.Fatalf("classification = %v", got.Differences[0].Classification)
	}
}

func TestMsgpackReporterStream(t *testing.T) {
	var buf bytes.Buffer
	r := NewMsgpack(&buf)
	if err := r.Report(sampleReport()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dec := msgpack.NewDecoder(&buf)
	var hdr MsgpackHeader
	if err := dec.Decode(&hdr); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if hdr.Schema != 1 {
		t.Fatalf("schema = %d", hdr.Schema)
	}
	var rec MsgpackRecord
	if err := dec.Decode(&rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.New != "cfg.json:/replicas" || len(rec.Differences) != 1 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestCollectingPreservesOrder(t *testing.T) {
	c := &Collecting{}
	first := sampleReport()
	second := Report{Differences: []diff.Difference{diff.NewDifference("x").Build()}}
	if err := c.Report(first); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if err := c.Report(second); err != nil {
		t.Fatalf("Report: %v", err)
	}
	ds := c.AllDifferences()
	if len(ds) != 2 || ds[0].Code != "jsondoc.changed" || ds[1].Code != "x" {
		t.Fatalf("order lost: %v", ds)
	}
}
