package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Placeholder marks where the combined transcript is substituted into the
// merge template.
const Placeholder = "{transcript}"

const chunkTemplate = `Please transcribe this audio interview/conversation segment.

FORMAT:
- Speaker names in bold: %s
- Use proper paragraphing for longer responses

CLEANING INSTRUCTIONS:
1. Remove filler words: "um", "uh", "like", "you know", "sort of", "kind of" (when used as fillers)
2. Remove pure backchanneling: "right", "yeah", "uh-huh", "mm-hmm", "okay", "sure", "interesting" when they're just acknowledgments (not substantive responses)
3. Keep "right" or "yeah" only when part of making a substantive point
4. Clean up false starts, stutters, and repetitions for readability
5. Preserve all intellectual content and nuance
6. Keep substantive questions and responses only

Provide the complete transcript for this segment.`

// DefaultMerge is the default template for the final reconciliation pass.
const DefaultMerge = `Below is a transcript assembled from multiple audio chunks. Please:

1. Clean up any duplicate text at chunk boundaries (there was overlap between chunks)
2. Add section headers (## Header) every 15-20 minutes of conversation
   - Section headers should be 5-6 words capturing that section's main topic
   - Example: "## Discussion of Main Research Goals" or "## Addressing Common Misconceptions"
3. Ensure consistent formatting throughout
4. Fix any obvious transcription errors you can identify from context
5. Maintain speaker labels in bold format

Here is the raw transcript to clean up:

---

{transcript}

---

Please output the cleaned, formatted transcript with section headers.`

var ErrNoPlaceholder = errors.New("merge template must contain exactly one {transcript} placeholder")

// SpeakerFormat renders the speaker-label line for the chunk prompt. Two or
// more names become bold labels; anything less falls back to the generic
// two-speaker placeholder.
func SpeakerFormat(names []string) string {
	if len(names) >= 2 {
		labels := make([]string, len(names))
		for i, n := range names {
			labels[i] = fmt.Sprintf("**%s:**", n)
		}
		return strings.Join(labels, ", ")
	}
	return "**Speaker 1:** and **Speaker 2:** (or use actual names if identifiable)"
}

// Chunk builds the per-chunk transcription prompt. Custom instructions, when
// present, are appended verbatim under an ADDITIONAL INSTRUCTIONS heading.
func Chunk(speakers []string, instructions string) string {
	p := fmt.Sprintf(chunkTemplate, SpeakerFormat(speakers))
	if instructions != "" {
		p += "\n\nADDITIONAL INSTRUCTIONS:\n" + instructions
	}
	return p
}

// ValidateMergeTemplate rejects a merge template that does not carry exactly
// one transcript placeholder. Checked before any network call is made.
func ValidateMergeTemplate(tmpl string) error {
	if strings.Count(tmpl, Placeholder) != 1 {
		return ErrNoPlaceholder
	}
	return nil
}

// RenderMerge substitutes the combined transcript into the merge template.
func RenderMerge(tmpl, combined string) string {
	return strings.Replace(tmpl, Placeholder, combined, 1)
}

// Combine concatenates chunk transcripts in index order, each under a
// [Chunk N] marker and separated by a horizontal rule. This is the sole
// input to the merge pass.
func Combine(transcripts []string) string {
	parts := make([]string, len(transcripts))
	for i, t := range transcripts {
		parts[i] = fmt.Sprintf("[Chunk %d]\n\n%s", i+1, t)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
