package language

import (
	"strings"
	"unicode"
)

// Language is an immutable code/name pair. Two values with the same code are
// interchangeable; registry entries are the canonical ones.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Undetermined is the sentinel returned when language detection fails.
var Undetermined = Language{Code: "und", Name: "Undetermined"}

var registry = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "ru", Name: "Russian"},
	Undetermined,
}

var (
	byCode = make(map[string]Language, len(registry))
	byName = make(map[string]Language, len(registry))
)

func init() {
	for _, l := range registry {
		byCode[l.Code] = l
		byName[l.Name] = l
	}
}

// Resolve normalizes an input string into a Language. A 2-character input is
// treated as a code, anything longer as an English name. Unknown inputs are
// kept verbatim with an empty counterpart field so scraped data with languages
// outside the registry still round-trips.
func Resolve(input string) Language {
	// Registry codes win outright; this also covers the 3-letter sentinel.
	if l, ok := byCode[strings.ToLower(input)]; ok {
		return l
	}
	if len(input) == 2 {
		return Language{Code: strings.ToLower(input)}
	}
	name := title(input)
	if l, ok := byName[name]; ok {
		return l
	}
	return Language{Name: name}
}

// Normalize maps a structured code/name pair onto its canonical registry
// entry, preferring the code. Values outside the registry come back as given.
func Normalize(l Language) Language {
	if canonical, ok := byCode[strings.ToLower(l.Code)]; ok {
		return canonical
	}
	if canonical, ok := byName[title(l.Name)]; ok {
		return canonical
	}
	return l
}

// ByCode looks up a canonical registry entry by its 2-letter code.
func ByCode(code string) (Language, bool) {
	l, ok := byCode[strings.ToLower(code)]
	return l, ok
}

// ByName looks up a canonical registry entry by its English name.
func ByName(name string) (Language, bool) {
	l, ok := byName[title(name)]
	return l, ok
}

// All returns the registry entries in declaration order.
func All() []Language {
	out := make([]Language, len(registry))
	copy(out, registry)
	return out
}

func title(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
