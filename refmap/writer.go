package refmap

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Write emits the document with the mappings section and its copy under
// data/<label> and returns the number of bytes written. The layout matches a
// tab-indented Gson JsonWriter: ": " separators, {} for empty objects and no
// trailing newline.
func (r *Refmap) Write(w io.Writer, label string) (int64, error) {
	cw := &countingWriter{w: w}
	jw := &jsonWriter{w: bufio.NewWriter(cw)}

	jw.begin()
	jw.name("mappings")
	r.writeMixins(jw)
	jw.name("data")
	jw.begin()
	jw.name(label)
	r.writeMixins(jw)
	jw.end()
	jw.end()

	if err := jw.w.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Render returns the document as a string.
func (r *Refmap) Render(label string) string {
	var b strings.Builder
	_, _ = r.Write(&b, label)
	return b.String()
}

func (r *Refmap) writeMixins(jw *jsonWriter) {
	jw.begin()
	for _, m := range r.order {
		jw.name(m)
		jw.begin()
		s := r.sections[m]
		for _, k := range s.keys {
			jw.name(k)
			jw.str(s.values[k])
		}
		jw.end()
	}
	jw.end()
}

// jsonWriter emits objects of string values only. Each frame records whether
// the current object already holds a member.
type jsonWriter struct {
	w      *bufio.Writer
	frames []bool
}

func (j *jsonWriter) newline() {
	j.w.WriteByte('\n')
	for range j.frames {
		j.w.WriteByte('\t')
	}
}

func (j *jsonWriter) begin() {
	j.w.WriteByte('{')
	j.frames = append(j.frames, false)
}

func (j *jsonWriter) end() {
	top := len(j.frames) - 1
	nonEmpty := j.frames[top]
	j.frames = j.frames[:top]
	if nonEmpty {
		j.newline()
	}
	j.w.WriteByte('}')
}

func (j *jsonWriter) name(n string) {
	top := len(j.frames) - 1
	if j.frames[top] {
		j.w.WriteByte(',')
	}
	j.frames[top] = true
	j.newline()
	j.str(n)
	j.w.WriteString(": ")
}

func (j *jsonWriter) str(s string) {
	j.w.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			j.w.WriteString(`\"`)
		case '\\':
			j.w.WriteString(`\\`)
		case '\t':
			j.w.WriteString(`\t`)
		case '\b':
			j.w.WriteString(`\b`)
		case '\n':
			j.w.WriteString(`\n`)
		case '\r':
			j.w.WriteString(`\r`)
		case '\f':
			j.w.WriteString(`\f`)
		case '\u2028', '\u2029':
			fmt.Fprintf(j.w, `\u%04x`, c)
		default:
			if c < 0x20 {
				fmt.Fprintf(j.w, `\u%04x`, c)
			} else {
				j.w.WriteRune(c)
			}
		}
	}
	j.w.WriteByte('"')
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
