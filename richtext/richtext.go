// Package richtext computes ruby-markup annotations for localized text:
// furigana readings for Japanese, Latin transliterations for Russian.
// Languages without a strategy produce an empty annotation.
package richtext

import (
	"context"
	"fmt"
	"html"

	"github.com/toridoriv/fangirl-toolbox/language"
)

// Annotator computes the rich rendering of raw text in one language.
type Annotator func(ctx context.Context, text string) (string, error)

var annotators = map[string]Annotator{
	"ja": Furigana,
	"ru": Transliteration,
}

// Annotate runs the annotator registered for lang. Languages without one
// (English, Spanish, French, Italian, Portuguese, Chinese, Korean, anything
// unknown) return "" meaning "no annotation produced", not the input echoed
// back.
func Annotate(ctx context.Context, lang language.Language, text string) (string, error) {
	a, ok := annotators[lang.Code]
	if !ok {
		return "", nil
	}
	return a(ctx, text)
}

// AnnotationError reports that an annotator could not produce output for a
// non-empty input, e.g. tokenization yielded nothing.
type AnnotationError struct {
	Lang string
	Text string
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("richtext: no %s annotation for %q", e.Lang, e.Text)
}

// ruby wraps base text with its phonetic guide. The guide is marked
// presentation-only so screen readers skip the duplicate reading. Both parts
// come from scraped input, so escape them before they land in markup.
func ruby(base, guide string) string {
	return fmt.Sprintf(
		`<ruby>%s<rp>(</rp><rt role="presentation" aria-hidden="true">%s</rt><rp>)</rp></ruby>`,
		html.EscapeString(base), html.EscapeString(guide),
	)
}
