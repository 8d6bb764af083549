package decode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
	Limit  int    `json:"limit"`
}

func TestDecodeMapByJSONTag(t *testing.T) {
	out, err := DecodeMap[samplePayload](map[string]any{
		"chatId": "c1",
		"text":   "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", out.ChatID)
	assert.Equal(t, "hello", out.Text)
}

func TestDecodeMapNilPayload(t *testing.T) {
	_, err := DecodeMap[samplePayload](nil)
	require.Error(t, err)
}

func TestDecodeMapMissingFieldsZeroValued(t *testing.T) {
	out, err := DecodeMap[samplePayload](map[string]any{"chatId": "c1"})
	require.NoError(t, err)
	assert.Empty(t, out.Text)
	assert.Zero(t, out.Limit)
}

func TestDecodeMapFloatToInt(t *testing.T) {
	// numbers arrive as float64 after json.Unmarshal into map[string]any
	out, err := DecodeMap[samplePayload](map[string]any{"limit": float64(25)})
	require.NoError(t, err)
	assert.Equal(t, 25, out.Limit)
}

func TestDecodeMapJSONNumber(t *testing.T) {
	out, err := DecodeMap[samplePayload](map[string]any{"limit": json.Number("7")})
	require.NoError(t, err)
	assert.Equal(t, 7, out.Limit)
}

func TestDecodeMapWeakTyping(t *testing.T) {
	out, err := DecodeMap[samplePayload](map[string]any{"limit": "12"})
	require.NoError(t, err)
	assert.Equal(t, 12, out.Limit)

	_, err = DecodeMap[samplePayload](map[string]any{"limit": "12"}, Options{WeaklyTypedInput: false})
	require.Error(t, err)
}

func TestDecodeMapIgnoresUnknownKeys(t *testing.T) {
	out, err := DecodeMap[samplePayload](map[string]any{
		"chatId":  "c1",
		"unknown": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", out.ChatID)
}
