package seojob

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength caps normalized slugs.
const MaxSlugLength = 96

// NormalizeSlug lowercases candidate, strips accents and collapses every run
// of other characters into a single hyphen. The result may be empty.
func NormalizeSlug(candidate string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, candidate)
	if err != nil {
		folded = candidate
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

// SlugResolver decides whether a generated slug can be written to a target.
// The check and the later write are not atomic; a rare race leaves the slug
// unchanged on the next run, never duplicated by this package alone.
type SlugResolver struct {
	content ContentRepository
}

func NewSlugResolver(content ContentRepository) *SlugResolver {
	return &SlugResolver{content: content}
}

// Resolve returns the normalized slug and true when no other record of kind
// uses it. A collision or an empty normalization yields ("", false, nil).
func (r *SlugResolver) Resolve(ctx context.Context, candidate string, kind TargetKind, targetID string) (string, bool, error) {
	slug := NormalizeSlug(candidate)
	if slug == "" {
		return "", false, nil
	}

	taken, err := r.content.SlugTaken(ctx, kind, slug, targetID)
	if err != nil {
		return "", false, err
	}
	if taken {
		return "", false, nil
	}
	return slug, true, nil
}
