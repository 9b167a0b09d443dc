package logging

import (
	"strings"
	"time"
)

// TimestampLayout renders HH:mm:ss with four fractional digits.
const TimestampLayout = "15:04:05.0000"

// Record is one diagnostic line before formatting.
type Record struct {
	Suffix    string
	Message   string
	Timestamp time.Time
	// Fields holds slog style key/value pairs appended to Message.
	Fields []any
}

// Format renders "<suffix> <message> - HH:mm:ss.SSSS".
func (r Record) Format() string {
	var b strings.Builder
	b.WriteString(r.Suffix)
	b.WriteByte(' ')
	b.WriteString(withFields(r.Message, r.Fields))
	b.WriteString(" - ")
	b.WriteString(r.Timestamp.Format(TimestampLayout))
	return b.String()
}

// withFields appends " key=value" for every pair in fields.
func withFields(msg string, fields []any) string {
	attrs := argsToAttrs(fields)
	if len(attrs) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.String())
	}
	return b.String()
}
