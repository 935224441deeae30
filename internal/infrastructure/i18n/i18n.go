// Package i18n renders notification texts in the configured language.
package i18n

// Language selects a message catalog.
type Language string

const (
	LanguageEN Language = "en"
	LanguageFA Language = "fa"
)

// Normalize maps unknown language codes to English.
func Normalize(code string) Language {
	if Language(code) == LanguageFA {
		return LanguageFA
	}
	return LanguageEN
}
