package models

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toridoriv/fangirl-toolbox/language"
)

func TestNewLocalizedTextTrims(t *testing.T) {
	lt, err := NewLocalizedText("  Hello world  ", language.Resolve("en"))
	require.NoError(t, err)
	assert.Equal(t, "Hello world", lt.Raw)
	assert.Empty(t, lt.Rich)
}

func TestNewLocalizedTextRejectsEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		_, err := NewLocalizedText(raw, language.Resolve("en"))
		require.Error(t, err)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "raw", vErr.Field)
	}
}

func TestDetectLocalizedText(t *testing.T) {
	lt, err := DetectLocalizedText("Привет, как у тебя сегодня дела?")
	require.NoError(t, err)
	assert.Equal(t, "ru", lt.Language.Code)
}

func TestDetectLocalizedTextFallsBackToUndetermined(t *testing.T) {
	lt, err := DetectLocalizedText("12345")
	require.NoError(t, err)
	assert.Equal(t, language.Undetermined, lt.Language)
}

func TestSetRichTextIsIdempotent(t *testing.T) {
	lt, err := NewLocalizedText("привет мир", language.Resolve("ru"))
	require.NoError(t, err)

	require.NoError(t, lt.SetRichText(context.Background()))
	first := lt.Rich
	require.NotEmpty(t, first)

	require.NoError(t, lt.SetRichText(context.Background()))
	assert.Equal(t, first, lt.Rich)
}

func TestSetRichTextPassThrough(t *testing.T) {
	lt, err := NewLocalizedText("Hello world", language.Resolve("en"))
	require.NoError(t, err)

	require.NoError(t, lt.SetRichText(context.Background()))
	assert.Empty(t, lt.Rich)
}

func TestUpdateLanguageClearsRich(t *testing.T) {
	lt, err := NewLocalizedText("привет", language.Resolve("ru"))
	require.NoError(t, err)
	require.NoError(t, lt.SetRichText(context.Background()))
	require.NotEmpty(t, lt.Rich)

	lt.UpdateLanguage("en")
	assert.Equal(t, "en", lt.Language.Code)
	assert.Empty(t, lt.Rich)
}

func TestTranslatableTextScenario(t *testing.T) {
	text, err := DetectTranslatableText("Hello world")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text.Original.Raw)
	assert.Empty(t, text.Translations)

	_, err = text.AddTranslationString("Hola mundo", language.Resolve("es"))
	require.NoError(t, err)

	es := text.TranslationByCode("es")
	require.NotNil(t, es)
	assert.Equal(t, "Hola mundo", es.Raw)

	assert.Nil(t, text.TranslationByCode("fr"))
	assert.Nil(t, text.TranslationByName("French"))
}

func TestTranslationLookupsPreserveOrder(t *testing.T) {
	text, err := NewTranslatableText("original", language.Resolve("en"))
	require.NoError(t, err)

	first, err := text.AddTranslationString("primera", language.Resolve("es"))
	require.NoError(t, err)
	_, err = text.AddTranslationString("bonjour", language.Resolve("fr"))
	require.NoError(t, err)
	second, err := text.AddTranslationString("segunda", language.Resolve("es"))
	require.NoError(t, err)

	assert.Same(t, first, text.TranslationByCode("es"))
	assert.Same(t, first, text.TranslationByName("Spanish"))

	all := text.TranslationsByCode("es")
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])

	assert.Empty(t, text.TranslationsByCode("ja"))
	assert.Len(t, text.TranslationsByName("French"), 1)
}

func TestTranslatableSetRichTextAnnotatesOriginalOnly(t *testing.T) {
	text, err := NewTranslatableText("привет", language.Resolve("ru"))
	require.NoError(t, err)
	tr, err := text.AddTranslationString("ещё привет", language.Resolve("ru"))
	require.NoError(t, err)

	require.NoError(t, text.SetRichText(context.Background()))
	assert.NotEmpty(t, text.Original.Rich)
	assert.Empty(t, tr.Rich)
}
