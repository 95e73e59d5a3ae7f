package prompt

import (
	"errors"
	"strings"
	"testing"
)

func TestSpeakerFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		names []string
		want  string
	}{
		{
			name:  "no names",
			names: nil,
			want:  "**Speaker 1:** and **Speaker 2:** (or use actual names if identifiable)",
		},
		{
			name:  "one name falls back",
			names: []string{"Ada"},
			want:  "**Speaker 1:** and **Speaker 2:** (or use actual names if identifiable)",
		},
		{
			name:  "two names",
			names: []string{"Ivan Vendrov", "Robin Hanson"},
			want:  "**Ivan Vendrov:**, **Robin Hanson:**",
		},
		{
			name:  "three names",
			names: []string{"A", "B", "C"},
			want:  "**A:**, **B:**, **C:**",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SpeakerFormat(tc.names); got != tc.want {
				t.Fatalf("SpeakerFormat(%v) = %q, want %q", tc.names, got, tc.want)
			}
		})
	}
}

func TestChunkPrompt(t *testing.T) {
	t.Parallel()

	p := Chunk([]string{"Alice", "Bob"}, "")
	if !strings.Contains(p, "**Alice:**, **Bob:**") {
		t.Fatalf("chunk prompt missing speaker labels: %q", p)
	}
	if strings.Contains(p, "ADDITIONAL INSTRUCTIONS") {
		t.Fatal("chunk prompt must not carry an instructions section when none given")
	}
}

func TestChunkPromptInstructions(t *testing.T) {
	t.Parallel()

	p := Chunk(nil, "Always write dates as YYYY-MM-DD.")
	if !strings.HasSuffix(p, "ADDITIONAL INSTRUCTIONS:\nAlways write dates as YYYY-MM-DD.") {
		t.Fatalf("instructions not appended verbatim: %q", p)
	}
}

func TestValidateMergeTemplate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		tmpl    string
		wantErr bool
	}{
		{"default template", DefaultMerge, false},
		{"minimal", "clean this: {transcript}", false},
		{"missing placeholder", "clean this up please", true},
		{"duplicated placeholder", "{transcript} and {transcript}", true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateMergeTemplate(tc.tmpl)
			if tc.wantErr && !errors.Is(err, ErrNoPlaceholder) {
				t.Fatalf("expected ErrNoPlaceholder, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRenderMerge(t *testing.T) {
	t.Parallel()

	got := RenderMerge("before {transcript} after", "BODY")
	if got != "before BODY after" {
		t.Fatalf("RenderMerge = %q", got)
	}
}

func TestCombine(t *testing.T) {
	t.Parallel()

	got := Combine([]string{"first text", "second text"})
	want := "[Chunk 1]\n\nfirst text\n\n---\n\n[Chunk 2]\n\nsecond text"
	if got != want {
		t.Fatalf("Combine = %q, want %q", got, want)
	}
}
