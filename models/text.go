package models

import (
	"context"
	"strings"

	"github.com/toridoriv/fangirl-toolbox/language"
	"github.com/toridoriv/fangirl-toolbox/lib"
	"github.com/toridoriv/fangirl-toolbox/richtext"
)

// LocalizedText is a single piece of text in one language. Rich holds the
// ruby-markup rendering and is filled lazily, exactly once.
type LocalizedText struct {
	Raw      string            `json:"raw"`
	Rich     string            `json:"rich"`
	Language language.Language `json:"language"`
}

// NewLocalizedText validates and trims raw. Empty or all-whitespace input is
// a ValidationError.
func NewLocalizedText(raw string, lang language.Language) (*LocalizedText, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ValidationError{Entity: "localized text", Field: "raw", Reason: "must not be empty"}
	}
	return &LocalizedText{Raw: trimmed, Language: lang}, nil
}

// DetectLocalizedText constructs a LocalizedText with the dominant language of
// raw, falling back to Undetermined when detection cannot decide.
func DetectLocalizedText(raw string) (*LocalizedText, error) {
	lt, err := NewLocalizedText(raw, language.Undetermined)
	if err != nil {
		return nil, err
	}
	if code, ok := lib.DetectLanguage(lt.Raw); ok {
		lt.Language = language.Resolve(code)
	}
	return lt, nil
}

// SetRichText fills Rich via the annotator for this text's language. Once Rich
// is non-empty the call is a no-op, so a cancelled or failed attempt is safe
// to retry.
func (lt *LocalizedText) SetRichText(ctx context.Context) error {
	if lt.Rich != "" {
		return nil
	}
	rich, err := richtext.Annotate(ctx, lt.Language, lt.Raw)
	if err != nil {
		return err
	}
	lt.Rich = rich
	return nil
}

// UpdateLanguage re-resolves the language from a code or name and drops any
// annotation computed for the previous language.
func (lt *LocalizedText) UpdateLanguage(input string) {
	lt.Language = language.Resolve(input)
	lt.Rich = ""
}

// TranslatableText pairs an original text with its translations. Translations
// keep insertion order and may repeat a language.
type TranslatableText struct {
	Original     *LocalizedText   `json:"original"`
	Translations []*LocalizedText `json:"translations"`
}

// NewTranslatableText wraps a validated LocalizedText as the original, with no
// translations.
func NewTranslatableText(raw string, lang language.Language) (*TranslatableText, error) {
	original, err := NewLocalizedText(raw, lang)
	if err != nil {
		return nil, err
	}
	return &TranslatableText{Original: original}, nil
}

// DetectTranslatableText is NewTranslatableText with language detection.
func DetectTranslatableText(raw string) (*TranslatableText, error) {
	original, err := DetectLocalizedText(raw)
	if err != nil {
		return nil, err
	}
	return &TranslatableText{Original: original}, nil
}

// AddTranslation appends a translation. No dedup, no sorting.
func (t *TranslatableText) AddTranslation(lt *LocalizedText) {
	t.Translations = append(t.Translations, lt)
}

// AddTranslationString constructs a LocalizedText from raw input and appends
// it, returning the constructed value.
func (t *TranslatableText) AddTranslationString(raw string, lang language.Language) (*LocalizedText, error) {
	lt, err := NewLocalizedText(raw, lang)
	if err != nil {
		return nil, err
	}
	t.AddTranslation(lt)
	return lt, nil
}

// TranslationByCode returns the first translation in insertion order whose
// language matches code, or nil when there is none. A miss is not an error.
func (t *TranslatableText) TranslationByCode(code string) *LocalizedText {
	for _, lt := range t.Translations {
		if lt.Language.Code == code {
			return lt
		}
	}
	return nil
}

// TranslationByName is TranslationByCode keyed by English language name.
func (t *TranslatableText) TranslationByName(name string) *LocalizedText {
	for _, lt := range t.Translations {
		if lt.Language.Name == name {
			return lt
		}
	}
	return nil
}

// TranslationsByCode returns every translation whose language matches code,
// preserving insertion order.
func (t *TranslatableText) TranslationsByCode(code string) []*LocalizedText {
	var out []*LocalizedText
	for _, lt := range t.Translations {
		if lt.Language.Code == code {
			out = append(out, lt)
		}
	}
	return out
}

// TranslationsByName returns every translation whose language matches name,
// preserving insertion order.
func (t *TranslatableText) TranslationsByName(name string) []*LocalizedText {
	var out []*LocalizedText
	for _, lt := range t.Translations {
		if lt.Language.Name == name {
			out = append(out, lt)
		}
	}
	return out
}

// SetRichText annotates the original only. Translations are annotated
// independently by whoever produced them.
func (t *TranslatableText) SetRichText(ctx context.Context) error {
	return t.Original.SetRichText(ctx)
}
