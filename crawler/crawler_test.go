package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toridoriv/fangirl-toolbox/language"
)

func TestResolveSiteLanguageRegistryNames(t *testing.T) {
	assert.Equal(t, "en", resolveSiteLanguage("English").Code)
	assert.Equal(t, "ja", resolveSiteLanguage("ja").Code)
}

func TestResolveSiteLanguageNativeLabels(t *testing.T) {
	// Sites label works in the language itself, not in English.
	assert.Equal(t, "ru", resolveSiteLanguage("Русский").Code)
	assert.Equal(t, "ja", resolveSiteLanguage("日本語").Code)
	assert.Equal(t, "zh", resolveSiteLanguage("中文").Code)
	assert.Equal(t, "ko", resolveSiteLanguage("한국어").Code)
	assert.Equal(t, "pt", resolveSiteLanguage("Português brasileiro").Code)
}

func TestResolveSiteLanguageFallsBackToDetection(t *testing.T) {
	lang := resolveSiteLanguage("Slavic", "Зима близко, и волки воют за стенами города каждую ночь.")
	assert.Equal(t, "ru", lang.Code)
}

func TestResolveSiteLanguageSkipsBlankSamples(t *testing.T) {
	lang := resolveSiteLanguage("", "", "  ", "Привет, как дела сегодня вечером?")
	assert.Equal(t, "ru", lang.Code)
}

func TestResolveSiteLanguageUndeterminedWhenNothingMatches(t *testing.T) {
	assert.Equal(t, language.Undetermined, resolveSiteLanguage(""))
}
