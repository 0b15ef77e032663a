package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFields(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]interface{}
		line    int
		problem string
		err     error
	}{
		{"stream text", map[string]interface{}{"line": "12", "problem": "Lift out of service"}, 12, "Lift out of service", nil},
		{"padded text", map[string]interface{}{"line": " 12 ", "problem": "x"}, 12, "x", nil},
		{"int", map[string]interface{}{"line": 5, "problem": "x"}, 5, "x", nil},
		{"int64", map[string]interface{}{"line": int64(5), "problem": "x"}, 5, "x", nil},
		{"whole float", map[string]interface{}{"line": 5.0, "problem": "x"}, 5, "x", nil},
		{"fractional float", map[string]interface{}{"line": 5.5, "problem": "x"}, 0, "", ErrInvalidLine},
		{"letters", map[string]interface{}{"line": "S11", "problem": "x"}, 0, "", ErrInvalidLine},
		{"bool", map[string]interface{}{"line": true, "problem": "x"}, 0, "", ErrInvalidLine},
		{"no line", map[string]interface{}{"problem": "x"}, 0, "", ErrMissingField},
		{"null line", map[string]interface{}{"line": nil, "problem": "x"}, 0, "", ErrMissingField},
		{"no problem", map[string]interface{}{"line": "1"}, 0, "", ErrMissingField},
		{"numeric problem", map[string]interface{}{"line": "1", "problem": 4}, 0, "", ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, problem, err := Message{Values: tt.values}.Fields()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.problem, problem)
		})
	}
}

func TestDecodeQueuePayload(t *testing.T) {
	message, err := DecodeQueuePayload(`{"line": 7, "problem": "Signal fault"}`)
	require.NoError(t, err)

	line, problem, err := message.Fields()
	require.NoError(t, err)
	assert.Equal(t, 7, line)
	assert.Equal(t, "Signal fault", problem)

	message, err = DecodeQueuePayload(`{"line": 7.5, "problem": "Signal fault"}`)
	require.NoError(t, err)
	_, _, err = message.Fields()
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = DecodeQueuePayload(`[1, 2]`)
	assert.Error(t, err)
}
