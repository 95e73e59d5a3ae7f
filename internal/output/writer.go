package output

import (
	"os"
	"strings"
)

// Render assembles the final document: optional header, a horizontal rule,
// then the merged transcript.
func Render(header, body string) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n\n---\n\n")
	}
	b.WriteString(body)
	return b.String()
}

// Write renders the document and writes it to path, overwriting any
// existing file.
func Write(path, header, body string) error {
	return os.WriteFile(path, []byte(Render(header, body)), 0o644)
}
