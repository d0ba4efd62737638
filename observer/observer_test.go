package observer_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/recon/observer"
)

func TestLoggerSinkFormatsSortedFields(t *testing.T) {
	var buf bytes.Buffer
	sink := observer.NewLoggerSink(&buf)
	sink.Emit(observer.Event{
		Source: "runtime",
		Kind:   "action-start",
		Fields: map[string]any{"b": 2, "a": 1},
	})

	line := buf.String()
	assert.Contains(t, line, "runtime action-start")
	assert.Less(t, strings.Index(line, "a=1"), strings.Index(line, "b=2"))
}

func TestJSONSinkMarshalsFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	sink := observer.NewJSONSink(&buf)
	sink.Emit(observer.Event{
		Source: "planner",
		Kind:   "failed",
		Fields: map[string]any{"depth": 3},
		Err:    errors.New("boom"),
	})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "planner", decoded["source"])
	assert.Equal(t, "failed", decoded["event"])
	assert.Equal(t, float64(3), decoded["depth"])
	assert.Equal(t, "boom", decoded["error"])
}

func TestCompositeSinkFansOutAndIgnoresNil(t *testing.T) {
	var a, b bytes.Buffer
	composite := observer.NewCompositeSink(observer.NewLoggerSink(&a), nil, observer.NewLoggerSink(&b))
	composite.Emit(observer.Event{Source: "runtime", Kind: "tick"})

	assert.Contains(t, a.String(), "runtime tick")
	assert.Contains(t, b.String(), "runtime tick")
}

func TestCompositeSinkAdd(t *testing.T) {
	var buf bytes.Buffer
	composite := observer.NewCompositeSink()
	composite.Add(observer.NewLoggerSink(&buf))
	composite.Emit(observer.Event{Source: "planner", Kind: "start"})
	assert.Contains(t, buf.String(), "planner start")
}

func TestNoopSinkDiscards(t *testing.T) {
	var sink observer.Sink = observer.NoopSink{}
	assert.NotPanics(t, func() { sink.Emit(observer.Event{}) })
}
