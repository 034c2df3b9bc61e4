package lib

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detection is restricted to the languages the toolbox localizes; anything
// else would only add noise to the classifier.
var detectable = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.Russian,
}

// DetectLanguage returns the ISO 639-1 code of the dominant language of text,
// or false when the classifier cannot decide.
func DetectLanguage(text string) (string, bool) {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectable...).
			Build()
	})

	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
