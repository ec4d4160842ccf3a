package sysconfig

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_FillsMissingKeysFromDefaults(t *testing.T) {
	keySets := []map[string]any{
		nil,
		{},
		{KeySystemName: "Acme"},
		{KeyThemeColor: "rose", KeyLoginLogoCustomSize: 320.0},
		{"unknownKey": "ignored", KeyThemeRadius: "1"},
	}

	for _, values := range keySets {
		cfg := FromMap(values)
		for key, v := range cfg.ToMap() {
			if _, supplied := values[key]; supplied {
				continue
			}
			assert.Equal(t, Defaults().ToMap()[key], v, "key %s should come from defaults", key)
		}
	}
}

func TestFromMap_OverridesPresentKeys(t *testing.T) {
	cfg := FromMap(map[string]any{
		KeySystemName:          "Acme Admin",
		KeyLoginLogoCustomSize: "150",
		KeyLogoLight:           "",
	})

	assert.Equal(t, "Acme Admin", cfg.SystemName)
	assert.Equal(t, 150.0, cfg.LoginLogoCustomSize)
	assert.Equal(t, "", cfg.LogoLight)
	assert.Equal(t, "Welcome Back", cfg.LoginTitle)
}

func TestMerge_IgnoresNullAndWrongShapes(t *testing.T) {
	base := Defaults()
	cfg := Merge(base, map[string]any{
		KeySystemName:          nil,
		KeyThemeColor:          map[string]any{"nested": true},
		KeyLoginLogoCustomSize: "not-a-number",
	})

	assert.Equal(t, base, cfg)
}

func TestMerge_AcceptsJSONNumbers(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"loginLogoCustomSize": 96, "themeRadius": 0.75}`))
	dec.UseNumber()
	var values map[string]any
	require.NoError(t, dec.Decode(&values))

	cfg := FromMap(values)
	assert.Equal(t, 96.0, cfg.LoginLogoCustomSize)
	assert.Equal(t, "0.75", cfg.ThemeRadius)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "jBoilerplate", Config{}.Title())
	assert.Equal(t, "Acme", Config{SystemName: "Acme"}.Title())
}

func TestLogoSize(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "w-64", cfg.LogoSizeClass())
	assert.Equal(t, "", cfg.LogoWidth())

	cfg.LoginLogoSize = "small"
	assert.Equal(t, "w-32", cfg.LogoSizeClass())

	cfg.LoginLogoSize = "custom"
	cfg.LoginLogoCustomSize = 180
	assert.Equal(t, "", cfg.LogoSizeClass())
	assert.Equal(t, "180px", cfg.LogoWidth())
}

func TestEncodeDecodeValue(t *testing.T) {
	value, typ := EncodeValue(200.0)
	assert.Equal(t, "200", value)
	assert.Equal(t, TypeNumber, typ)
	assert.Equal(t, 200.0, DecodeValue(value, typ))

	value, typ = EncodeValue("zinc")
	assert.Equal(t, TypeString, typ)
	assert.Equal(t, "zinc", DecodeValue(value, typ))

	assert.Equal(t, "abc", DecodeValue("abc", TypeNumber))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeNumber, TypeOf(KeyLoginLogoCustomSize))
	assert.Equal(t, TypeString, TypeOf(KeySystemName))
	assert.Len(t, Keys(), len(Defaults().ToMap()))
}
