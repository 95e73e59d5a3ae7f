package media

import (
	"errors"
	"strings"
	"testing"
)

func TestToolErrorMessage(t *testing.T) {
	t.Parallel()

	base := errors.New("exit status 1")
	e := &ToolError{Tool: "ffmpeg", Output: "Invalid data found\n", Err: base}
	msg := e.Error()
	if !strings.Contains(msg, "ffmpeg") || !strings.Contains(msg, "Invalid data found") {
		t.Fatalf("error message missing tool or output: %q", msg)
	}
	if !errors.Is(e, base) {
		t.Fatal("ToolError must unwrap to the exec error")
	}

	bare := &ToolError{Tool: "ffprobe", Err: base}
	if got := bare.Error(); got != "ffprobe: exit status 1" {
		t.Fatalf("bare error message = %q", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1190, "1190"},
		{12.25, "12.25"},
		{2380.5, "2380.5"},
	}
	for _, tc := range cases {
		if got := formatSeconds(tc.in); got != tc.want {
			t.Fatalf("formatSeconds(%g) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
