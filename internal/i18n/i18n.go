// Package i18n holds the user-facing strings dialogs show on their own and
// their translations.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The key doubles as the English text.
const (
	ErrorOccurred   = "An error occurred"
	ContentNotFound = "The requested content could not be found"
	AreYouSure      = "Are you sure?"
	Yes             = "Yes"
	Cancel          = "Cancel"
	ErrorTitle      = "Error"
)

var translations = map[language.Tag]map[string]string{
	language.Spanish: {
		ErrorOccurred:   "Se ha producido un error",
		ContentNotFound: "No se encontró el contenido solicitado",
		AreYouSure:      "¿Está seguro?",
		Yes:             "Sí",
		Cancel:          "Cancelar",
		ErrorTitle:      "Error",
	},
	language.French: {
		ErrorOccurred:   "Une erreur s'est produite",
		ContentNotFound: "Le contenu demandé est introuvable",
		AreYouSure:      "Êtes-vous sûr ?",
		Yes:             "Oui",
		Cancel:          "Annuler",
		ErrorTitle:      "Erreur",
	},
	language.German: {
		ErrorOccurred:   "Ein Fehler ist aufgetreten",
		ContentNotFound: "Der angeforderte Inhalt wurde nicht gefunden",
		AreYouSure:      "Sind Sie sicher?",
		Yes:             "Ja",
		Cancel:          "Abbrechen",
		ErrorTitle:      "Fehler",
	},
}

var (
	cat     = buildCatalog()
	matcher = language.NewMatcher(cat.Languages())
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, key := range []string{ErrorOccurred, ContentNotFound, AreYouSure, Yes, Cancel, ErrorTitle} {
		_ = b.SetString(language.English, key, key)
	}
	for tag, msgs := range translations {
		for key, text := range msgs {
			_ = b.SetString(tag, key, text)
		}
	}
	return b
}

// T returns the translation of key for lang, a BCP 47 tag such as "es" or
// "fr-CA". Unknown languages fall back to English.
func T(lang, key string) string {
	return printer(lang).Sprintf(key)
}

func printer(lang string) *message.Printer {
	tag := language.English
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			_, idx, conf := matcher.Match(parsed)
			if conf != language.No {
				tag = cat.Languages()[idx]
			}
		}
	}
	return message.NewPrinter(tag, message.Catalog(cat))
}
