package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{name: "acute accent", text: "Qué es la diabetes", want: LanguageSpanish},
		{name: "tilde", text: "mañana", want: LanguageSpanish},
		{name: "diaeresis", text: "pingüino", want: LanguageSpanish},
		{name: "inverted question mark", text: "¿hola?", want: LanguageSpanish},
		{name: "inverted exclamation", text: "¡ayuda!", want: LanguageSpanish},
		{name: "uppercase accent", text: "ÁREA", want: LanguageSpanish},
		{name: "stop word without accents", text: "Tengo dolor de cabeza", want: LanguageSpanish},
		{name: "stop word mixed case", text: "DOLOR fuerte", want: LanguageSpanish},
		{name: "stop word next to punctuation", text: "fiebre, y tos", want: LanguageSpanish},
		{name: "english question", text: "What is hypertension?", want: LanguageEnglish},
		{name: "english with me", text: "Tell me about asthma", want: LanguageEnglish},
		{name: "stop word only as substring", text: "delta plasma sinus", want: LanguageEnglish},
		{name: "empty", text: "", want: LanguageEnglish},
		{name: "digits and symbols", text: "120/80 ???", want: LanguageEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}

func TestDetectLanguage_EveryMarkIsSpanish(t *testing.T) {
	for _, r := range spanishMarks {
		text := "blood pressure " + string(r)
		assert.Equal(t, LanguageSpanish, DetectLanguage(text), "mark %q", r)
	}
}

func TestDetectLanguage_EveryListedWordIsSpanish(t *testing.T) {
	for w := range spanishWords {
		assert.Equal(t, LanguageSpanish, DetectLanguage("about "+w+" fever"), "word %q", w)
	}
}

func TestParseLanguage(t *testing.T) {
	lang, ok := ParseLanguage("ES")
	assert.True(t, ok)
	assert.Equal(t, LanguageSpanish, lang)

	lang, ok = ParseLanguage(" en ")
	assert.True(t, ok)
	assert.Equal(t, LanguageEnglish, lang)

	_, ok = ParseLanguage("")
	assert.False(t, ok)

	_, ok = ParseLanguage("fr")
	assert.False(t, ok)
}

func TestLanguage_Opposite(t *testing.T) {
	assert.Equal(t, LanguageSpanish, LanguageEnglish.Opposite())
	assert.Equal(t, LanguageEnglish, LanguageSpanish.Opposite())
}
