package metagen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/seojob"
)

const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 160
	maxKeywords          = 10
)

// Prompt is a system instruction plus the per-target user message.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = `You write search engine metadata for a content catalog.
Reply with a single JSON object and nothing else, using exactly these keys:
  "title": page title, at most %d characters
  "description": meta description, at most %d characters
  "slug": lowercase URL slug made of words joined by hyphens
  "keywords": array of up to %d short keyword phrases
  "structured_data": a schema.org JSON-LD object describing the page
Write in the language of the source title. Do not invent facts that are not in the input.`

// BuildPrompt renders the generation context into a prompt.
func BuildPrompt(gc seojob.GenerationContext) Prompt {
	var b strings.Builder

	label, noun := gc.ContentKind, "a catalog record"
	if kind, err := seojob.ParseTargetKind(gc.ContentKind); err == nil {
		label, noun = kind.Label(), kind.Noun()
	}

	fmt.Fprintf(&b, "Content kind: %s (%s)\n", label, noun)
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(gc.Title))
	if d := strings.TrimSpace(gc.Description); d != "" {
		fmt.Fprintf(&b, "Description: %s\n", d)
	}
	if len(gc.RelatedInfo) > 0 {
		// map keys are sorted by encoding/json, so the prompt is stable
		if related, err := json.Marshal(gc.RelatedInfo); err == nil {
			fmt.Fprintf(&b, "Related information: %s\n", related)
		}
	}
	if extra := strings.TrimSpace(gc.AdditionalContext); extra != "" {
		fmt.Fprintf(&b, "Additional guidance: %s\n", extra)
	}

	return Prompt{
		System: fmt.Sprintf(systemPrompt, MaxTitleLength, MaxDescriptionLength, maxKeywords),
		User:   b.String(),
	}
}
