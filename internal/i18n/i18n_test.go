package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":            "en",
		"de":          "de",
		"de_DE.UTF-8": "de",
		"de-AT":       "de",
		"DE":          "de",
		"en_US.UTF-8": "en",
		"fr_FR":       "en",
		"C":           "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, "de", Next("en"))
	assert.Equal(t, "en", Next("de_DE"))
}

func TestLoad(t *testing.T) {
	de, err := Load("de_DE.UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "de", de.Lang())
	assert.Equal(t, "Betrag", de.T("col.amount"))
	assert.Equal(t, "3 von 10 Zeilen", de.T("footer.rows", 3, 10))
	assert.Equal(t, language.German, de.Tag())

	en := MustLoad("en")
	assert.Equal(t, "Amount", en.T("col.amount"))
	assert.Equal(t, "missing.key", en.T("missing.key"))
	assert.Contains(t, en.T("help.body"), "# finboard")
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	en, err := loadFile("en")
	require.NoError(t, err)
	de, err := loadFile("de")
	require.NoError(t, err)

	for k := range en {
		assert.Contains(t, de, k)
	}
	for k := range de {
		assert.Contains(t, en, k)
	}
}
