// Package i18n loads the embedded UI translations.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const DefaultLanguage = "en"

//go:embed translations/*.yml
var translations embed.FS

// Supported lists the languages with a translation file, in cycle order.
var Supported = []string{"en", "de"}

// Catalog holds the strings of one language, backed by the default
// language for keys it does not translate.
type Catalog struct {
	lang    string
	strings map[string]string
}

// Normalize maps locale spellings such as "de_DE.UTF-8" or "de-AT" to a
// supported language, falling back to DefaultLanguage.
func Normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	lang = strings.ToLower(strings.ReplaceAll(lang, "_", "-"))
	if i := strings.Index(lang, "-"); i >= 0 {
		lang = lang[:i]
	}
	for _, s := range Supported {
		if s == lang {
			return s
		}
	}
	return DefaultLanguage
}

// Next returns the language after lang in Supported, wrapping around.
func Next(lang string) string {
	lang = Normalize(lang)
	for i, s := range Supported {
		if s == lang {
			return Supported[(i+1)%len(Supported)]
		}
	}
	return DefaultLanguage
}

func loadFile(lang string) (map[string]string, error) {
	file := fmt.Sprintf("translations/%s.yml", lang)
	b, err := translations.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load file %s: %w", file, err)
	}
	t := make(map[string]string)
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file %s: %w", file, err)
	}
	return t, nil
}

// Load returns the catalog for lang merged over the default language.
func Load(lang string) (*Catalog, error) {
	lang = Normalize(lang)
	t, err := loadFile(DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to load default translations: %w", err)
	}
	if lang != DefaultLanguage {
		u, err := loadFile(lang)
		if err != nil {
			return nil, err
		}
		for k, v := range u {
			t[k] = v
		}
	}
	return &Catalog{lang: lang, strings: t}, nil
}

// MustLoad is Load for the embedded languages, which always parse.
func MustLoad(lang string) *Catalog {
	c, err := Load(lang)
	if err != nil {
		panic(err)
	}
	return c
}

// Lang returns the catalog's language code.
func (c *Catalog) Lang() string {
	return c.lang
}

// Tag returns the language tag used for collation.
func (c *Catalog) Tag() language.Tag {
	return language.Make(c.lang)
}

// T returns the translation of key, formatted with args when given. Unknown
// keys are returned as is.
func (c *Catalog) T(key string, args ...any) string {
	s, ok := c.strings[key]
	if !ok {
		s = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}
