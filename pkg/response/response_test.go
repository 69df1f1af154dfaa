package response

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Success(&buf, "Appointment booked", map[string]string{"status": "Pending"}))

	out := decode(t, &buf)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Appointment booked", out["message"])
	assert.Equal(t, "Pending", out["data"].(map[string]interface{})["status"])
	assert.NotContains(t, out, "error")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Error(&buf, "SlotTaken", "this slot is already booked"))

	out := decode(t, &buf)
	assert.Equal(t, false, out["success"])
	errBody := out["error"].(map[string]interface{})
	assert.Equal(t, "SlotTaken", errBody["kind"])
	assert.Equal(t, "this slot is already booked", errBody["message"])
}

func TestValidationError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ValidationError(&buf, map[string]string{"Time": "Time is required"}))

	errBody := decode(t, &buf)["error"].(map[string]interface{})
	assert.Equal(t, "Validation", errBody["kind"])
	assert.Equal(t, "Time is required", errBody["fields"].(map[string]interface{})["Time"])
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, 3, NewMeta(1, 10, 21).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 10, 0).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 0, 5).TotalPages)
}
