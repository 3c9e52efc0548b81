package determinism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashJSONIsOrderIndependentForMaps(t *testing.T) {
	a := map[string]int{"active": 3, "suspended": 1, "damaged": 0}
	b := map[string]int{"damaged": 0, "active": 3, "suspended": 1}

	ha, err := HashJSON(a)
	require.NoError(t, err)
	hb, err := HashJSON(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha.Hex(), 64)
	assert.Equal(t, ha.Hex()[:16]+"...", ha.String())
}

func TestHashJSONDistinguishesValues(t *testing.T) {
	ha, err := HashJSON(map[string]int{"active": 3})
	require.NoError(t, err)
	hb, err := HashJSON(map[string]int{"active": 4})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestHashJSONUnsupportedValue(t *testing.T) {
	_, err := HashJSON(make(chan int))
	assert.Error(t, err)
}

func TestSortSliceIsStable(t *testing.T) {
	type item struct {
		key   int
		label string
	}
	items := []item{{2, "a"}, {1, "b"}, {2, "c"}, {1, "d"}}
	SortSlice(items, func(a, b item) bool { return a.key < b.key })

	assert.Equal(t, []item{{1, "b"}, {1, "d"}, {2, "a"}, {2, "c"}}, items)
}
