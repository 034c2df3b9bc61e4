package lib

import (
	"fmt"
	"strings"

	"github.com/bregydoc/gtranslate"
)

// Translate runs text through the translation backend in rune chunks small
// enough for the endpoint to accept, concatenating the results.
func Translate(text, from, to string) (string, error) {
	const chunkSize = 2000

	var resultBuilder strings.Builder
	runes := []rune(text)

	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunk := string(runes[i:end])
		translated, err := gtranslate.TranslateWithParams(
			chunk,
			gtranslate.TranslationParams{
				From: from,
				To:   to,
			},
		)
		if err != nil {
			return "", fmt.Errorf("translating chunk: %w", err)
		}

		resultBuilder.WriteString(translated)
	}

	return resultBuilder.String(), nil
}
