package entities

import (
	"testing"

	"github.com/avrforge/sketchforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
)

func TestSourceUnit_ObjectPaths(t *testing.T) {
	unit, ok := NewSourceUnit("/core/wiring.c")
	assert.True(t, ok)
	assert.Equal(t, values.SourceKindC, unit.Kind)
	assert.Equal(t, "/core/wiring.c.o", unit.ObjectPath())
	assert.Equal(t, "/work/wiring.c.o", unit.ObjectPathIn("/work"))
	assert.Equal(t, "wiring.c", unit.Name())

	_, ok = NewSourceUnit("/core/Arduino.h")
	assert.False(t, ok)
}

func TestSortUnitsByKind(t *testing.T) {
	var units []SourceUnit
	for _, p := range []string{"b.cpp", "a.c", "a.cpp", "z.c"} {
		u, _ := NewSourceUnit(p)
		units = append(units, u)
	}

	sorted := SortUnitsByKind(units)

	var names []string
	for _, u := range sorted {
		names = append(names, u.Name())
	}
	assert.Equal(t, []string{"a.c", "z.c", "b.cpp", "a.cpp"}, names)
}

func TestUniqueDependencies(t *testing.T) {
	deps := UniqueDependencies([]string{"Servo.h", "Wire.h", "Servo.h", "", "SPI.h", "Wire.h"})
	assert.Equal(t, []Dependency{"Servo.h", "Wire.h", "SPI.h"}, deps)
	assert.Empty(t, UniqueDependencies(nil))
}
