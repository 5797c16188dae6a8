// Package gedcom writes trees as GEDCOM 5.5.1 lineage-linked files.
package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gedgen/internal/domain/model"
	"github.com/okian/gedgen/pkg/metrics"
)

// Header values.
const (
	DefaultProgram   = "GEDGEN"
	DefaultSubmitter = "Submitter"
	gedcomVersion    = "5.5.1"
	gedcomForm       = "LINEAGE-LINKED"
	charset          = "UTF-8"
	submitterXRef    = "SUBM"
)

// Record kinds as counted in metrics.
const (
	KindIndividual = "INDI"
	KindFamily     = "FAM"
	KindSource     = "SOUR"
	KindNote       = "NOTE"
	KindObject     = "OBJE"
)

// Encoder writes a tree as one GEDCOM stream. Errors are sticky: after the
// first failed write every further line is dropped and Encode returns it.
type Encoder struct {
	out *countingWriter
	w   *bufio.Writer
	err error

	program     string
	programName string
	version     string
	fileName    string
	submitter   string
	copyright   string
	date        time.Time

	counts map[string]int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithProgram sets the SOUR system id, its display name and version.
func WithProgram(id, name, version string) Option {
	return func(e *Encoder) {
		if id != "" {
			e.program = id
		}
		e.programName = name
		e.version = version
	}
}

// WithFileName records the output base name in the header. Leave empty when
// writing to stdout.
func WithFileName(name string) Option {
	return func(e *Encoder) {
		e.fileName = name
	}
}

// WithSubmitter sets the submitter name.
func WithSubmitter(name string) Option {
	return func(e *Encoder) {
		if name != "" {
			e.submitter = name
		}
	}
}

// WithCopyright adds a COPR line to the header.
func WithCopyright(text string) Option {
	return func(e *Encoder) {
		e.copyright = text
	}
}

// WithDate sets the transmission date and time of the header.
func WithDate(t time.Time) Option {
	return func(e *Encoder) {
		e.date = t
	}
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	out := &countingWriter{w: w}
	e := &Encoder{
		out:       out,
		w:         bufio.NewWriter(out),
		program:   DefaultProgram,
		submitter: DefaultSubmitter,
		date:      time.Now(),
		counts:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes t with the given options to w.
func Encode(w io.Writer, t *model.Tree, opts ...Option) error {
	return NewEncoder(w, opts...).Encode(t)
}

// EncodeFile writes t to a new file at path, naming it in the header.
// A file left incomplete by a failed encode is removed.
func EncodeFile(path string, t *model.Tree, opts ...Option) (enc *Encoder, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
		if err != nil {
			if rerr := os.Remove(path); rerr != nil {
				err = fmt.Errorf("%w (remove partial output: %v)", err, rerr)
			}
		}
	}()

	opts = append([]Option{WithFileName(filepath.Base(path))}, opts...)
	enc = NewEncoder(f, opts...)
	err = enc.Encode(t)
	return enc, err
}

// Written returns the number of bytes flushed to the underlying writer.
func (e *Encoder) Written() int64 { return e.out.n }

// Counts returns how many level zero records of each kind were written.
func (e *Encoder) Counts() map[string]int { return e.counts }

// Encode writes the header, every record of t in index order and the
// trailer, then flushes. Identifiers must have been assigned.
func (e *Encoder) Encode(t *model.Tree) error {
	start := time.Now()
	e.header()

	for pid := range t.People {
		if err := e.person(t, pid); err != nil {
			return err
		}
	}
	for fid := range t.Families {
		if err := e.family(t, fid); err != nil {
			return err
		}
	}
	for _, s := range t.Sources {
		e.record(s.ID, KindSource)
	}
	for _, n := range t.Notes {
		e.record(n.ID, KindNote)
	}
	for _, o := range t.Objects {
		e.record(o.ID, KindObject)
	}
	e.tag(0, "TRLR")

	if e.err == nil {
		e.err = e.w.Flush()
	}
	if e.err != nil {
		metrics.RecordErrorByComponent("gedcom", "write")
		return fmt.Errorf("write gedcom: %w", e.err)
	}

	for kind, n := range e.counts {
		metrics.RecordRecordsWritten(kind, n)
	}
	metrics.RecordSerializeDuration(time.Since(start).Seconds())
	return nil
}

func (e *Encoder) header() {
	e.tag(0, "HEAD")
	e.line(1, "SOUR", e.program)
	e.line(2, "VERS", e.version)
	e.line(2, "NAME", e.programName)
	e.line(1, "DATE", FormatDate(e.date))
	e.line(2, "TIME", FormatTime(e.date))
	e.line(1, "SUBM", pointer(submitterXRef))
	e.line(1, "FILE", e.fileName)
	e.line(1, "COPR", e.copyright)
	e.tag(1, "GEDC")
	e.line(2, "VERS", gedcomVersion)
	e.line(2, "FORM", gedcomForm)
	e.line(1, "CHAR", charset)
	e.xref(0, submitterXRef, "SUBM")
	e.line(1, "NAME", e.submitter)
}

func (e *Encoder) person(t *model.Tree, pid int) error {
	p := &t.People[pid]
	if p.ID == "" {
		return fmt.Errorf("person %d: %w", pid, ErrUnassignedID)
	}
	e.xref(0, p.ID, KindIndividual)
	e.counts[KindIndividual]++

	for _, n := range p.Names {
		e.name(n)
	}
	e.line(1, "SEX", string(p.Sex))
	if p.UID != uuid.Nil {
		e.line(1, "_UID", strings.ToUpper(p.UID.String()))
	}

	for _, fid := range p.Families {
		if !within(fid, len(t.Families)) {
			return fmt.Errorf("person %s links family %d: %w", p.ID, fid, model.ErrReferentialIntegrity)
		}
		fam := &t.Families[fid]
		switch fam.RoleOf(pid) {
		case model.RoleFather, model.RoleMother:
			e.line(1, "FAMS", pointer(fam.ID))
		case model.RoleChild:
			if p.Pedigree == "" {
				return fmt.Errorf("person %s in family %s: %w", p.ID, fam.ID, ErrMissingPedigree)
			}
			e.line(1, "FAMC", pointer(fam.ID))
			e.line(2, "PEDI", p.Pedigree)
		default:
			return fmt.Errorf("person %s links family %s which does not list it: %w", p.ID, fam.ID, model.ErrReferentialIntegrity)
		}
	}

	for _, ev := range p.Events {
		if ev.Type == "" {
			return fmt.Errorf("person %s: %w", p.ID, ErrEmptyEventTag)
		}
		e.tag(1, ev.Type)
		if ev.Date != nil {
			e.line(2, "DATE", FormatDate(*ev.Date))
		}
		e.line(2, "PLAC", ev.Place)
		e.line(2, "TYPE", ev.Comment)
	}
	for _, oid := range p.ObjectRefs {
		if !within(oid, len(t.Objects)) {
			return fmt.Errorf("person %s links object %d: %w", p.ID, oid, model.ErrReferentialIntegrity)
		}
		e.line(1, "OBJE", pointer(t.Objects[oid].ID))
	}
	for _, sid := range p.SourceRefs {
		if !within(sid, len(t.Sources)) {
			return fmt.Errorf("person %s links source %d: %w", p.ID, sid, model.ErrReferentialIntegrity)
		}
		e.line(1, "SOUR", pointer(t.Sources[sid].ID))
		for _, nid := range t.Sources[sid].NoteRefs {
			if !within(nid, len(t.Notes)) {
				return fmt.Errorf("source %s links note %d: %w", t.Sources[sid].ID, nid, model.ErrReferentialIntegrity)
			}
			e.line(2, "NOTE", pointer(t.Notes[nid].ID))
		}
	}
	for _, nid := range p.NoteRefs {
		if !within(nid, len(t.Notes)) {
			return fmt.Errorf("person %s links note %d: %w", p.ID, nid, model.ErrReferentialIntegrity)
		}
		e.line(1, "NOTE", pointer(t.Notes[nid].ID))
	}
	e.change(p.ChangeDate, false)
	return nil
}

func (e *Encoder) name(n model.Name) {
	value := "/" + n.Surname + "/"
	if n.Given != "" {
		value = n.Given + " " + value
	}
	e.line(1, "NAME", value)
	e.line(2, "TYPE", string(n.Type))
	e.line(2, "GIVN", n.Given)
	e.line(2, "NICK", n.Nickname)
	e.line(2, "SPFX", n.SurnamePrefix)
	e.line(2, "SURN", n.Surname)
	e.line(2, "NSFX", n.SurnameSuffix)
}

func (e *Encoder) family(t *model.Tree, fid int) error {
	f := &t.Families[fid]
	if f.ID == "" {
		return fmt.Errorf("family %d: %w", fid, ErrUnassignedID)
	}
	e.xref(0, f.ID, KindFamily)
	e.counts[KindFamily]++

	for _, m := range []struct {
		tag string
		ids []int
	}{
		{"HUSB", parent(f.Father)},
		{"WIFE", parent(f.Mother)},
		{"CHIL", f.Children},
	} {
		for _, pid := range m.ids {
			if !within(pid, len(t.People)) {
				return fmt.Errorf("family %s lists person %d: %w", f.ID, pid, model.ErrReferentialIntegrity)
			}
			e.line(1, m.tag, pointer(t.People[pid].ID))
		}
	}
	e.change(f.ChangeDate, true)
	return nil
}

// record writes an id-only record.
func (e *Encoder) record(id, kind string) {
	e.xref(0, id, kind)
	e.counts[kind]++
}

func (e *Encoder) change(at time.Time, withTime bool) {
	if at.IsZero() {
		return
	}
	e.tag(1, "CHAN")
	e.line(2, "DATE", FormatDate(at))
	if withTime {
		e.line(2, "TIME", FormatTime(at))
	}
}

// line writes "level TAG value". Lines without a value are skipped.
func (e *Encoder) line(level int, tag, value string) {
	if value == "" {
		return
	}
	e.write(level, tag, value)
}

// tag writes a bare "level TAG" line that opens a substructure.
func (e *Encoder) tag(level int, tag string) {
	e.write(level, tag, "")
}

func (e *Encoder) write(level int, tag, value string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(strconv.Itoa(level))
	if e.err == nil {
		_, e.err = e.w.WriteString(" " + tag)
	}
	if e.err == nil && value != "" {
		_, e.err = e.w.WriteString(" " + value)
	}
	if e.err == nil {
		e.err = e.w.WriteByte('\n')
	}
}

func (e *Encoder) xref(level int, id, tag string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, "%d %s %s\n", level, pointer(id), tag)
}

func within(i, n int) bool {
	return i >= 0 && i < n
}

// FormatDate renders t as "02 JAN 2006".
func FormatDate(t time.Time) string {
	return strings.ToUpper(t.Format("02 Jan 2006"))
}

// FormatTime renders t as "15:04:05".
func FormatTime(t time.Time) string {
	return t.Format("15:04:05")
}

func pointer(id string) string {
	return "@" + id + "@"
}

func parent(id int) []int {
	if id == model.None {
		return nil
	}
	return []int{id}
}

// countingWriter counts bytes that reach the destination.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
