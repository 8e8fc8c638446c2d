package metagen

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/Abraxas-365/seoqueue/pkg/seojob"
)

type wireMetadata struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Slug           string          `json:"slug"`
	Keywords       keywordList     `json:"keywords"`
	StructuredData json.RawMessage `json:"structured_data"`
}

// keywordList accepts either a JSON array or a comma separated string.
type keywordList []string

func (k *keywordList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*k = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*k = strings.Split(joined, ",")
	return nil
}

// ParseMetadata extracts metadata from a completion. Markdown code fences
// and text around the JSON object are ignored. Titles and descriptions
// over the length limits are cut at a word boundary.
func ParseMetadata(raw string) (seojob.Metadata, error) {
	body := extractObject(raw)
	if body == "" {
		return seojob.Metadata{}, ErrInvalidResponse("no JSON object in completion")
	}

	var w wireMetadata
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return seojob.Metadata{}, ErrRegistry.NewWithCause(CodeInvalidResponse, err).
			WithDetail("reason", "malformed JSON")
	}

	meta := seojob.Metadata{
		Title:       truncate(strings.TrimSpace(w.Title), MaxTitleLength),
		Description: truncate(strings.TrimSpace(w.Description), MaxDescriptionLength),
		Slug:        strings.TrimSpace(w.Slug),
		Keywords:    cleanKeywords(w.Keywords),
	}
	if meta.Title == "" {
		return seojob.Metadata{}, ErrInvalidResponse("missing title")
	}
	if meta.Description == "" {
		return seojob.Metadata{}, ErrInvalidResponse("missing description")
	}

	if sd := bytes.TrimSpace(w.StructuredData); len(sd) > 0 && sd[0] == '{' {
		meta.StructuredData = json.RawMessage(sd)
	}
	return meta, nil
}

func extractObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)[:limit]
	cut := string(runes)
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-")
}

func cleanKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
