package transpiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blink = `#include <Servo.h>
// blink with a servo

Servo s;

void setup() {
  pinMode(13, OUTPUT);
  blinkOnce(100);
}

void loop() {
  if (true) {
    blinkOnce(500);
  }
}

void blinkOnce(int ms) {
  digitalWrite(13, HIGH);
  delay(ms);
}
`

func TestTranspile_AddsCoreIncludeAndPrototypes(t *testing.T) {
	out, err := New().Transpile(blink)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#include <Arduino.h>\n#include <Servo.h>\n"))
	assert.Contains(t, out, "void setup();\nvoid loop();\nvoid blinkOnce(int ms);\n")
	assert.NotContains(t, out, "if(")
	assert.Less(t, strings.Index(out, "void blinkOnce(int ms);"), strings.Index(out, "Servo s;"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestTranspile_KeepsExistingCoreIncludeAndDeclarations(t *testing.T) {
	src := "#include \"Arduino.h\"\nint twice(int x);\nint twice(int x) { return x * 2; }\nvoid setup() {}\nvoid loop() {}"
	out, err := New().Transpile(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "Arduino.h"))
	assert.Equal(t, 1, strings.Count(out, "int twice(int x);"))
	assert.Contains(t, out, "void setup();")
}

func TestTranspile_PointerReturn(t *testing.T) {
	out, err := New().Transpile("char * name() { return 0; }\n")
	require.NoError(t, err)
	assert.Contains(t, out, "char* name();")
}

func TestExtractDependencyNames(t *testing.T) {
	names := New().ExtractDependencyNames("#include <Servo.h>\n#include <Wire.h>\n#include <Servo.h>\n")
	assert.Equal(t, []string{"Servo.h", "Wire.h"}, names)
}
