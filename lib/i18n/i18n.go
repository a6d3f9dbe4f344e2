// Package i18n holds the static message tables of the blog views.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when no locale can be determined.
const DefaultLocale = "en"

//go:embed locales/*.json
var localeFS embed.FS

var tables = mustLoad()

func mustLoad() map[string]map[string]string {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		panic(fmt.Sprintf("i18n: read locales: %v", err))
	}
	out := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		raw, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("i18n: read %s: %v", e.Name(), err))
		}
		var msgs map[string]string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			panic(fmt.Sprintf("i18n: parse %s: %v", e.Name(), err))
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = msgs
	}
	return out
}

// Locales returns the codes that have a message table.
func Locales() []string {
	out := make([]string, 0, len(tables))
	for code := range tables {
		out = append(out, code)
	}
	return out
}

// Locale reduces a locale identifier such as "fr", "fr-CA" or "de_DE" to
// its lower-case two-letter language code. Unparseable input yields
// DefaultLocale.
func Locale(id string) string {
	id = strings.ReplaceAll(strings.TrimSpace(id), "_", "-")
	if id == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(id)
	if err != nil || tag == language.Und {
		return DefaultLocale
	}
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLocale
	}
	return strings.ToLower(base.String())
}

// Message looks key up in the table of locale, falling back to the English
// table for unknown locales. A missing key yields def, or the key itself
// when def is empty.
func Message(key, locale, def string) string {
	msgs, ok := tables[locale]
	if !ok {
		msgs = tables[DefaultLocale]
	}
	if m := msgs[key]; m != "" {
		return m
	}
	if def != "" {
		return def
	}
	return key
}

// Translator binds Message to a locale.
type Translator struct {
	Locale string
}

// For returns a Translator for the locale identifier id.
func For(id string) Translator {
	return Translator{Locale: Locale(id)}
}

// T translates key. An optional default replaces the key fallback.
func (t Translator) T(key string, def ...string) string {
	d := ""
	if len(def) > 0 {
		d = def[0]
	}
	return Message(key, t.Locale, d)
}
