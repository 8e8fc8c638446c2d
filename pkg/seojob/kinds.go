package seojob

import "strings"

// kindSpec is the per-kind dispatch entry. Adding a content kind means one
// new entry here plus one in the storage adapters.
type kindSpec struct {
	label string
	noun  string
}

var kindSpecs = map[TargetKind]kindSpec{
	KindCollection: {label: "Collection", noun: "a curated collection of catalog items"},
	KindItem:       {label: "Item", noun: "a single item that belongs to a collection"},
	KindProfile:    {label: "Profile", noun: "a public profile of a person or organization"},
}

// AllKinds returns every supported kind in a stable order
func AllKinds() []TargetKind {
	return []TargetKind{KindCollection, KindItem, KindProfile}
}

func (k TargetKind) IsValid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// Label is the human name used in prompts and reports.
func (k TargetKind) Label() string {
	if spec, ok := kindSpecs[k]; ok {
		return spec.label
	}
	return string(k)
}

// Noun describes what a record of this kind is, for generator prompts.
func (k TargetKind) Noun() string {
	if spec, ok := kindSpecs[k]; ok {
		return spec.noun
	}
	return "a catalog record"
}

func (k TargetKind) String() string { return string(k) }

// ParseTargetKind accepts singular or plural names in any case.
func ParseTargetKind(raw string) (TargetKind, error) {
	k := TargetKind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "s"))
	if !k.IsValid() {
		return "", ErrInvalidKind(raw)
	}
	return k, nil
}

// BuildContext captures the generation input for a content record.
func BuildContext(c *Content) GenerationContext {
	return GenerationContext{
		Title:       c.Title,
		Description: c.Description,
		ContentKind: c.Kind.Label(),
		RelatedInfo: c.RelatedInfo,
	}
}
