package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistory(t *testing.T) {
	assert.Equal(t, 4, NewHistory(4).Capacity())
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(0).Capacity())
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(-3).Capacity())

	var zero History
	assert.Equal(t, DefaultHistoryCapacity, zero.Capacity())
	assert.Equal(t, 0, zero.Len())

	_, ok := zero.Oldest()
	assert.False(t, ok)
	_, ok = zero.Newest()
	assert.False(t, ok)
}

func TestHistory_Eviction(t *testing.T) {
	h := NewHistory(10)
	for i := 1; i <= 11; i++ {
		h = h.Append(Position{X: float64(i) / 100})
	}

	require.Equal(t, 10, h.Len())

	oldest, ok := h.Oldest()
	require.True(t, ok)
	assert.Equal(t, 0.02, oldest.X, "11th append should leave the 2nd sample as oldest")

	newest, ok := h.Newest()
	require.True(t, ok)
	assert.Equal(t, 0.11, newest.X)
}

func TestHistory_ValueSemantics(t *testing.T) {
	base := NewHistory(3).
		Append(Position{X: 0.1}).
		Append(Position{X: 0.2})

	grown := base.Append(Position{X: 0.3})
	full := grown.Append(Position{X: 0.4})

	assert.Equal(t, 2, base.Len(), "Append must not modify the receiver")
	assert.Equal(t, 3, grown.Len())
	assert.Equal(t, []Position{{X: 0.1}, {X: 0.2}, {X: 0.3}}, grown.Points())
	assert.Equal(t, []Position{{X: 0.2}, {X: 0.3}, {X: 0.4}}, full.Points())

	pts := full.Points()
	pts[0].X = 9
	oldest, _ := full.Oldest()
	assert.Equal(t, 0.2, oldest.X, "Points must return a copy")
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(5).Append(Position{X: 0.5, Y: 0.5})
	r := h.Reset()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 5, r.Capacity())
	assert.Equal(t, 1, h.Len())
}
