package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Shapes(t *testing.T) {
	result, err := RunWithGolden(t, loadShapes(t))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	result := &Result{Trace: []TraceEvent{
		{Type: EventIngest, Seq: 1, Package: "kit", Tag: "1.0.0", Version: 3, Pins: map[string]string{"z": "1", "a": "2"}},
		{Type: EventQuery, Seq: 2, Path: "/x", Kind: NotFound},
	}}

	got, err := MarshalTrace("s", result)
	require.NoError(t, err)
	assert.Equal(t, `{"scenario_name":"s","trace":[`+
		`{"diagnostics":0,"hints":0,"package":"kit","pins":{"a":"2","z":"1"},"seq":1,"symbols":0,"tag":"1.0.0","type":"ingest","version":3},`+
		`{"kind":"not_found","path":"/x","seq":2,"type":"query"}]}`, string(got))
}
