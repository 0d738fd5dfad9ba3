package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear_Scale(t *testing.T) {
	t.Parallel()

	y := NewLinear(0, 100, 340, 0)
	assert.InDelta(t, 340, y.Scale(0), 1e-9)
	assert.InDelta(t, 0, y.Scale(100), 1e-9)
	assert.InDelta(t, 170, y.Scale(50), 1e-9)

	flat := NewLinear(5, 5, 0, 10)
	assert.InDelta(t, 5, flat.Scale(5), 1e-9)
	assert.InDelta(t, 5, flat.Scale(1000), 1e-9)
}

func TestTicks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start, stop float64
		count       int
		want        []float64
	}{
		{"unit", 0, 1, 10, []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}},
		{"population", 0, 8336817, 10, []float64{0, 1e6, 2e6, 3e6, 4e6, 5e6, 6e6, 7e6, 8e6}},
		{"fives", 0, 23, 5, []float64{0, 5, 10, 15, 20}},
		{"reversed", 10, 0, 5, []float64{10, 8, 6, 4, 2, 0}},
		{"equal", 3, 3, 10, []float64{3}},
		{"zero count", 0, 10, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Ticks(tt.start, tt.stop, tt.count)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestQuantileSorted(t *testing.T) {
	t.Parallel()

	xs := []float64{3, 6, 7, 8, 8, 10, 13, 15, 16, 20}
	assert.Equal(t, 3.0, QuantileSorted(xs, 0))
	assert.Equal(t, 20.0, QuantileSorted(xs, 1))
	assert.InDelta(t, 9.0, QuantileSorted(xs, 0.5), 1e-9)
	assert.InDelta(t, 7.25, QuantileSorted(xs, 0.25), 1e-9)
	assert.True(t, math.IsNaN(QuantileSorted(nil, 0.5)))
	assert.Equal(t, 4.0, QuantileSorted([]float64{4}, 0.7))
}

func TestQuantile_Scale(t *testing.T) {
	t.Parallel()

	colors := []string{"a", "b", "c", "d", "e"}
	domain := []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5, math.NaN()}
	q := NewQuantile(domain, colors)

	th := q.Thresholds()
	require.Len(t, th, 4)
	for i := 1; i < len(th); i++ {
		assert.LessOrEqual(t, th[i-1], th[i])
	}
	assert.Len(t, q.Domain(), 10)

	counts := map[string]int{}
	for _, v := range q.Domain() {
		c, ok := q.Scale(v)
		require.True(t, ok)
		counts[c]++
	}
	for _, c := range colors {
		assert.Equal(t, 2, counts[c], "bucket %s", c)
	}

	low, _ := q.Scale(-100)
	high, _ := q.Scale(1e9)
	assert.Equal(t, "a", low)
	assert.Equal(t, "e", high)

	_, ok := q.Scale(math.NaN())
	assert.False(t, ok)
}

func TestQuantile_EmptyDomain(t *testing.T) {
	t.Parallel()

	q := NewQuantile(nil, []string{"a", "b"})
	_, ok := q.Scale(1)
	assert.False(t, ok)
	assert.Empty(t, q.Thresholds())
}

func TestQuantile_ConstantDomain(t *testing.T) {
	t.Parallel()

	q := NewQuantile([]float64{4, 4, 4}, []int{0, 1, 2, 3, 4})
	v, ok := q.Scale(4)
	require.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, []float64{4, 4, 4, 4}, q.Thresholds())
}

func TestColorRamp(t *testing.T) {
	t.Parallel()

	r, err := NewColorRamp(0, 100, "#FDBE85", "#D94701")
	require.NoError(t, err)
	assert.Equal(t, "#fdbe85", r.Color(0))
	assert.Equal(t, "#d94701", r.Color(100))
	assert.Equal(t, "#eb8343", r.Color(50))

	_, err = NewColorRamp(0, 1, "nope", "#000")
	require.Error(t, err)
}

func TestParseHex_Short(t *testing.T) {
	t.Parallel()

	c, err := ParseHex("#ccc")
	require.NoError(t, err)
	assert.Equal(t, RGB{0xcc, 0xcc, 0xcc}, c)
	assert.Equal(t, "#cccccc", c.Hex())
}
