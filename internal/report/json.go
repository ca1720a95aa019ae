package report

import (
	"encoding/json"
	"io"

	"apidrift/internal/diff"
	"apidrift/internal/ext"
)

// DifferenceJSON is the wire form of a difference.
type DifferenceJSON struct {
	Code           string            `json:"code"`
	Name           string            `json:"name,omitempty"`
	Description    string            `json:"description,omitempty"`
	Classification map[string]string `json:"classification,omitempty"`
	Criticality    string            `json:"criticality,omitempty"`
	Justification  string            `json:"justification,omitempty"`
	Attachments    map[string]string `json:"attachments,omitempty"`
}

// ReportJSON is the wire form of a report.
type ReportJSON struct {
	Old         string           `json:"old,omitempty"`
	New         string           `json:"new,omitempty"`
	Differences []DifferenceJSON `json:"differences"`
}

// OutputJSON is the root structure of the JSON reporter's output.
type OutputJSON struct {
	Reports []ReportJSON `json:"reports"`
}

func differenceToJSON(d diff.Difference) DifferenceJSON {
	out := DifferenceJSON{
		Code:          d.Code,
		Name:          d.Name,
		Description:   d.Description,
		Criticality:   d.Criticality.Name,
		Justification: d.Justification,
		Attachments:   d.Attachments,
	}
	if len(d.Classification) > 0 {
		out.Classification = make(map[string]string, len(d.Classification))
		for dim, sev := range d.Classification {
			out.Classification[dim.String()] = sev.String()
		}
	}
	return out
}

// JSON buffers reports and writes one indented JSON document at close.
type JSON struct {
	w      io.Writer
	out    OutputJSON
	closed bool
}

// NewJSON creates a JSON reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w, out: OutputJSON{Reports: []ReportJSON{}}}
}

// ExtensionID implements ext.Extension.
func (*JSON) ExtensionID() string { return "json" }

// Configure implements ext.Extension.
func (j *JSON) Configure(*ext.Context) error { return nil }

// Report implements Reporter.
func (j *JSON) Report(r Report) error {
	if len(r.Differences) == 0 {
		return nil
	}
	rj := ReportJSON{Differences: make([]DifferenceJSON, 0, len(r.Differences))}
	if r.Old != nil {
		rj.Old = r.Old.String()
	}
	if r.New != nil {
		rj.New = r.New.String()
	}
	for _, d := range r.Differences {
		rj.Differences = append(rj.Differences, differenceToJSON(d))
	}
	j.out.Reports = append(j.out.Reports, rj)
	return nil
}

// Close implements ext.Extension: encodes the buffered document once.
func (j *JSON) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.out)
}
