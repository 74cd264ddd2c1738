package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"PC": 0}
	b := map[string]int{"SP": 1}

	got := maps.Collect(IterSeq2Concat(maps.All(a), maps.All(b)))
	assert.Equal(map[string]int{"PC": 0, "SP": 1}, got)

	var count int
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestIterSeq2Sorted(t *testing.T) {
	assert := assert.New(t)

	var keys []string
	for key := range IterSeq2Sorted(map[string]int{"R5": 5, "R10": 10, "PC": 0}) {
		keys = append(keys, key)
	}
	assert.Equal([]string{"PC", "R10", "R5"}, keys)
}
