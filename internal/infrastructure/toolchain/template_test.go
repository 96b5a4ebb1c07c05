package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tpl  string
		args []string
		want string
	}{
		{
			name: "compile shape",
			tpl:  "-c -g -Os -mmcu={0} -DF_CPU={1}L {2} {3} -o {4}",
			args: []string{"atmega328p", "16000000", "-I/core", "/w/s.cpp", "/w/s.cpp.o"},
			want: "-c -g -Os -mmcu=atmega328p -DF_CPU=16000000L -I/core /w/s.cpp -o /w/s.cpp.o",
		},
		{
			name: "repeated placeholder",
			tpl:  "{0} {0} {1}",
			args: []string{"a", "b"},
			want: "a a b",
		},
		{
			name: "missing argument left as written",
			tpl:  "{0} {5}",
			args: []string{"a"},
			want: "a {5}",
		},
		{
			name: "non numeric braces untouched",
			tpl:  "-Wl,{gc} {x {0}",
			args: []string{"a"},
			want: "-Wl,{gc} {x a",
		},
		{
			name: "unterminated brace",
			tpl:  "{0} {",
			args: []string{"a"},
			want: "a {",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Format(tt.tpl, tt.args...))
		})
	}
}

func TestSplitArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "-c -Os  file.c", []string{"-c", "-Os", "file.c"}},
		{"double quoted path", `-I "/my libs/Servo" -o x.o`, []string{"-I", "/my libs/Servo", "-o", "x.o"}},
		{"single quoted", `'-DNAME="v"'`, []string{`-DNAME="v"`}},
		{"escaped space", `/my\ dir/a.c`, []string{"/my dir/a.c"}},
		{"windows path keeps backslashes", `C:\avr\bin\gcc.exe`, []string{`C:\avr\bin\gcc.exe`}},
		{"empty quoted argument", `a "" b`, []string{"a", "", "b"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SplitArgs(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitArgs_Unterminated(t *testing.T) {
	_, err := SplitArgs(`-o "broken`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestJoinArgs_RoundTrip(t *testing.T) {
	parts := []string{"/w/a.cpp.o", "/my libs/Servo/Servo.cpp.o", `we"ird.o`}
	joined := JoinArgs(parts)

	assert.Equal(t, `/w/a.cpp.o "/my libs/Servo/Servo.cpp.o" "we\"ird.o"`, joined)

	split, err := SplitArgs(joined)
	require.NoError(t, err)
	assert.Equal(t, parts, split)
}

func TestJoinArgs_RoundTripBackslashes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		part   string
		quoted string
	}{
		{"unc path with space", `\\server\share\My Libs\Servo.cpp.o`, `"\\\server\share\My Libs\Servo.cpp.o"`},
		{"include dir with trailing backslash", `-IC:\Program Files\Arduino\variants\standard\`, `"-IC:\Program Files\Arduino\variants\standard\\"`},
		{"backslash before space", `weird\ dir`, `"weird\\ dir"`},
		{"backslash before quote", `a\"b`, `"a\\\"b"`},
		{"plain windows path", `C:\avr\bin\avr-gcc.exe`, `C:\avr\bin\avr-gcc.exe`},
		{"unc path without space", `\\server\share\a.o`, `"\\\server\share\a.o"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.quoted, Quote(tt.part))

			parts := []string{"-o", tt.part, "/w/sketch.cpp.o"}
			split, err := SplitArgs(JoinArgs(parts))
			require.NoError(t, err)
			assert.Equal(t, parts, split)
		})
	}
}
