package observer

import (
	"encoding/json"
	"io"
	"log"
	"time"
)

// JSONSink emits one structured JSON line per event.
type JSONSink struct {
	logger *log.Logger
}

// NewJSONSink builds a JSONSink writing to out. A nil out discards.
func NewJSONSink(out io.Writer) *JSONSink {
	if out == nil {
		out = io.Discard
	}
	return &JSONSink{logger: log.New(out, "", 0)}
}

func (s *JSONSink) Emit(e Event) {
	payload := map[string]any{
		"ts":     time.Now().Format(time.RFC3339Nano),
		"source": e.Source,
		"event":  e.Kind,
	}
	for k, v := range e.Fields {
		payload[k] = v
	}
	if e.Err != nil {
		payload["error"] = e.Err.Error()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Printf("{\"event\":\"error\",\"error\":%q}", err.Error())
		return
	}
	s.logger.Print(string(data))
}

var _ Sink = (*JSONSink)(nil)
