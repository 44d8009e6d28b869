package prompt

import (
	"strings"
	"unicode"
)

// Language is the binary reply language of the assistant.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// spanishMarks are characters that only show up in Spanish text among the
// languages the widget is used with.
const spanishMarks = "áéíóúñü¿¡"

// spanishWords holds Spanish stop words and common symptom vocabulary.
// Matching is done on whole, lower-cased words.
var spanishWords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {},
	"de": {}, "del": {}, "al": {}, "que": {}, "y": {}, "para": {},
	"por": {}, "con": {}, "sin": {}, "cómo": {}, "qué": {}, "cuándo": {},
	"dónde": {}, "porque": {}, "tengo": {}, "dolor": {},
	"duele": {}, "cabeza": {}, "estoy": {},
}

// DetectLanguage classifies text as Spanish or English.
// It never returns anything other than LanguageSpanish or LanguageEnglish.
func DetectLanguage(text string) Language {
	lower := strings.ToLower(text)
	if strings.ContainsAny(lower, spanishMarks) {
		return LanguageSpanish
	}

	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if _, ok := spanishWords[w]; ok {
			return LanguageSpanish
		}
	}
	return LanguageEnglish
}

// ParseLanguage parses an explicit language preference.
// The second return value is false when s is empty or not a known language.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish:
		return LanguageEnglish, true
	case LanguageSpanish:
		return LanguageSpanish, true
	default:
		return "", false
	}
}

// Opposite returns the other supported language.
func (l Language) Opposite() Language {
	if l == LanguageSpanish {
		return LanguageEnglish
	}
	return LanguageSpanish
}

// Name returns the English name of the language, as used in directives.
func (l Language) Name() string {
	if l == LanguageSpanish {
		return "Spanish"
	}
	return "English"
}
