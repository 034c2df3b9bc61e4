package richtext

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

var (
	jaOnce   sync.Once
	jaTok    *tokenizer.Tokenizer
	jaTokErr error
)

func japaneseTokenizer() (*tokenizer.Tokenizer, error) {
	jaOnce.Do(func() {
		jaTok, jaTokErr = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	})
	return jaTok, jaTokErr
}

// Furigana annotates every kanji-bearing token with its hiragana reading as
// ruby markup. Kana-only tokens, punctuation and latin runs pass through
// untouched.
func Furigana(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t, err := japaneseTokenizer()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, token := range t.Tokenize(text) {
		if !containsKanji(token.Surface) {
			b.WriteString(token.Surface)
			continue
		}
		reading, ok := token.Reading()
		if !ok || reading == "" || reading == "*" {
			b.WriteString(token.Surface)
			continue
		}
		b.WriteString(ruby(token.Surface, hiragana(reading)))
	}
	return b.String(), nil
}

func containsKanji(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// hiragana folds the katakana reading the dictionary produces into hiragana,
// which is the conventional script for furigana guides.
func hiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'ァ' && r <= 'ヶ' {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
