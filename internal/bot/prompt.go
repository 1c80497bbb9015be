package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/reviewbot/internal/limits"
)

// artifactPrefix is occasionally emitted at the start of replies and is
// stripped once.
const artifactPrefix = "with "

// buildSystemMessage appends the knowledge cutoff, current date and the
// output language directive to the configured system message.
func buildSystemMessage(base string, tl limits.TokenLimits, language string, now time.Time) string {
	var b strings.Builder
	if base != "" {
		b.WriteString(base)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Knowledge cutoff: %s\n", tl.KnowledgeCutoff)
	fmt.Fprintf(&b, "Current date: %s\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "IMPORTANT: Entire response must be in the language with ISO code: %s", language)
	return b.String()
}

// stripArtifact removes a single leading artifactPrefix.
func stripArtifact(text string) string {
	return strings.TrimPrefix(text, artifactPrefix)
}
