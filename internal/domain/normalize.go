package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer trims and title-cases categorical values ("UNITED KINGDOM" →
// "United Kingdom") so that dimension keys compare consistently regardless
// of how the source system cased them.
//
// A cases.Caser is stateful and not safe for concurrent use, so callers
// create one Normalizer per batch instead of sharing a package-level one.
type Normalizer struct {
	caser cases.Caser
}

func NewNormalizer() *Normalizer {
	return &Normalizer{caser: cases.Title(language.English)}
}

// TitleCase normalizes one categorical value.
func (n *Normalizer) TitleCase(raw string) string {
	return n.caser.String(strings.ToLower(strings.TrimSpace(raw)))
}

// Status canonicalizes a raw status value so that "CANCELLED", "cancelled"
// and "Cancelled" compare equal. Unrecognized values survive normalization
// unchanged apart from casing.
func (n *Normalizer) Status(raw string) Status {
	return Status(n.TitleCase(raw))
}

// TitleCase is the one-off variant for callers outside a batch loop.
func TitleCase(raw string) string {
	return NewNormalizer().TitleCase(raw)
}

// NormalizeStatus is the one-off variant of Normalizer.Status.
func NormalizeStatus(raw string) Status {
	return NewNormalizer().Status(raw)
}
