package report

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"apidrift/internal/ext"
)

// Current schema version - increment when the record format changes.
const msgpackSchemaVersion uint16 = 1

// MsgpackHeader opens a msgpack report stream.
type MsgpackHeader struct {
	Schema uint16
}

// MsgpackRecord is one report in the stream.
type MsgpackRecord struct {
	Old         string
	New         string
	Differences []DifferenceJSON
}

// Msgpack streams reports as msgpack records, a compact machine format for
// downstream tooling. The stream is a header followed by one record per
// non-empty report; the header is written with the first record, so a run
// without differences writes nothing.
type Msgpack struct {
	w      io.Writer
	enc    *msgpack.Encoder
	opened bool
	closed bool
}

// NewMsgpack creates a msgpack reporter writing to w.
func NewMsgpack(w io.Writer) *Msgpack {
	return &Msgpack{w: w, enc: msgpack.NewEncoder(w)}
}

// ExtensionID implements ext.Extension.
func (*Msgpack) ExtensionID() string { return "msgpack" }

// Configure implements ext.Extension.
func (m *Msgpack) Configure(*ext.Context) error { return nil }

// Report implements Reporter.
func (m *Msgpack) Report(r Report) error {
	if len(r.Differences) == 0 {
		return nil
	}
	if !m.opened {
		m.opened = true
		if err := m.enc.Encode(MsgpackHeader{Schema: msgpackSchemaVersion}); err != nil {
			return err
		}
	}
	rec := MsgpackRecord{Differences: make([]DifferenceJSON, 0, len(r.Differences))}
	if r.Old != nil {
		rec.Old = r.Old.String()
	}
	if r.New != nil {
		rec.New = r.New.String()
	}
	for _, d := range r.Differences {
		rec.Differences = append(rec.Differences, differenceToJSON(d))
	}
	return m.enc.Encode(rec)
}

// Close implements ext.Extension.
func (m *Msgpack) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return nil
}
