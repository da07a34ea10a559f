package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name  string  `json:"name"`
		Score float32 `json:"score"`
	}

	data, err := JSON{}.Marshal(payload{Name: "radiohead", Score: 0.9})
	require.NoError(t, err)

	var got payload
	require.NoError(t, JSON{}.Unmarshal(data, &got))
	assert.Equal(t, "radiohead", got.Name)
}

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	_, ok = ByName("msgpack")
	require.False(t, ok)
}
