package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPillarsOrderedAndComplete(t *testing.T) {
	ps := Pillars()
	require.Len(t, ps, PillarCount)
	for i, p := range ps {
		assert.Equal(t, i+1, p.Index)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.ModuleIDs)
		assert.NotEmpty(t, p.Quiz)
		for _, q := range p.Quiz {
			assert.GreaterOrEqual(t, q.Correct, 0)
			assert.Less(t, q.Correct, len(q.Options))
		}
	}
}

func TestPillarByIndexBounds(t *testing.T) {
	_, ok := PillarByIndex(0)
	assert.False(t, ok)
	_, ok = PillarByIndex(PillarCount + 1)
	assert.False(t, ok)
	p, ok := PillarByIndex(1)
	require.True(t, ok)
	assert.Equal(t, 1, p.Index)
}

func TestModuleIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Pillars() {
		for _, id := range p.ModuleIDs {
			assert.False(t, seen[id], "duplicate module id %s", id)
			seen[id] = true
		}
	}
	for _, s := range Specializations() {
		for _, id := range s.ModuleIDs {
			assert.False(t, seen[id], "duplicate module id %s", id)
			seen[id] = true
		}
	}
}

func TestModulePillarLookup(t *testing.T) {
	p, ok := ModulePillar("p3-m2")
	require.True(t, ok)
	assert.Equal(t, 3, p.Index)

	_, ok = ModulePillar("nope")
	assert.False(t, ok)
}

func TestSpecializationByID(t *testing.T) {
	s, ok := SpecializationByID("real-estate")
	require.True(t, ok)
	assert.Equal(t, "Real Estate", s.Title)

	_, ok = SpecializationByID("unknown")
	assert.False(t, ok)
}
