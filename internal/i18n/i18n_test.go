package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDir_ShippedCatalogs(t *testing.T) {
	m, err := LoadFromDir(".", "en")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "ru"}, m.Languages())
}

func TestManager_Has(t *testing.T) {
	m, err := LoadFromDir(".", "en")
	require.NoError(t, err)

	assert.True(t, m.Has("en"))
	assert.True(t, m.Has(" RU "))
	assert.False(t, m.Has("de"))
	assert.False(t, m.Has(""))
}

func TestTranslator_Lookup(t *testing.T) {
	m, err := LoadFromDir(".", "en")
	require.NoError(t, err)

	en := m.Translator("en")
	ru := m.Translator("ru")

	assert.Equal(t, "📋 Today", en.T("menu.today"))
	assert.Equal(t, "📋 Сегодня", ru.T("menu.today"))
	assert.NotEqual(t, en.T("menu.today"), ru.T("menu.today"))
}

func TestTranslator_FallsBackToDefaultLanguage(t *testing.T) {
	m, err := LoadFromDir(".", "en")
	require.NoError(t, err)

	tr := m.Translator("de")
	assert.Equal(t, "en", tr.Lang())
	assert.Equal(t, "📋 Today", tr.T("menu.today"))
}

func TestTranslator_UnknownKeyReturnsKey(t *testing.T) {
	m, err := LoadFromDir(".", "en")
	require.NoError(t, err)

	assert.Equal(t, "menu.nonexistent", m.Translator("en").T("menu.nonexistent"))
}

func TestCatalogsShareKeySet(t *testing.T) {
	m, err := LoadFromDir(".", "en")
	require.NoError(t, err)

	en := m.translations["en"]
	ru := m.translations["ru"]
	require.NotEmpty(t, en)
	require.NotEmpty(t, ru)

	for key := range en {
		_, ok := ru[key]
		assert.True(t, ok, "key %q missing from ru catalog", key)
	}
	for key := range ru {
		_, ok := en[key]
		assert.True(t, ok, "key %q missing from en catalog", key)
	}
}
