package observer

import (
	"fmt"
	"io"
	"log"
	"sort"
)

// LoggerSink prints one line per event via the standard library logger,
// field keys sorted for stable output.
type LoggerSink struct {
	logger *log.Logger
}

// NewLoggerSink builds a LoggerSink writing to out. A nil out discards.
func NewLoggerSink(out io.Writer) *LoggerSink {
	if out == nil {
		out = io.Discard
	}
	return &LoggerSink{logger: log.New(out, "recon ", log.LstdFlags|log.Lmicroseconds)}
}

func (s *LoggerSink) Emit(e Event) {
	line := fmt.Sprintf("%s %s", e.Source, e.Kind)
	for _, k := range sortedFieldKeys(e.Fields) {
		line += fmt.Sprintf(" %s=%v", k, e.Fields[k])
	}
	if e.Err != nil {
		line += fmt.Sprintf(" err=%v", e.Err)
	}
	s.logger.Print(line)
}

func sortedFieldKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ Sink = (*LoggerSink)(nil)
