package richtext

import (
	"context"
	"regexp"

	iuliia "github.com/mehanizm/iuliia-go"
)

var cyrillicWord = regexp.MustCompile(`\p{Cyrillic}+`)

// Transliteration wraps every Cyrillic word in ruby markup carrying its Latin
// transliteration (Wikipedia schema). The rewrite happens in a single pass
// over maximal Cyrillic runs, so an annotated span is never visited again and
// a word that is a substring of a longer word never matches inside it.
func Transliteration(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	words := cyrillicWord.FindAllString(text, -1)
	if len(words) == 0 {
		return "", &AnnotationError{Lang: "ru", Text: text}
	}

	guides := make(map[string]string, len(words))
	for _, w := range words {
		if _, seen := guides[w]; seen {
			continue
		}
		guides[w] = iuliia.Wikipedia.Translate(w)
	}

	annotated := cyrillicWord.ReplaceAllStringFunc(text, func(w string) string {
		return ruby(w, guides[w])
	})
	return annotated, nil
}
