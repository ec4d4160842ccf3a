// Package sysconfig defines the dashboard's branding and theme settings and
// the cell-by-cell merge that keeps them fully populated no matter which
// source supplied them.
package sysconfig

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Keys as stored in the system_configuration table and on the wire.
const (
	KeySystemName          = "systemName"
	KeyLogoLight           = "logoLight"
	KeyLogoDark            = "logoDark"
	KeyLoginImage          = "loginImage"
	KeyLoginTitle          = "loginTitle"
	KeyLoginDescription    = "loginDescription"
	KeyLoginLogoMode       = "loginLogoMode"
	KeyLoginLogoSize       = "loginLogoSize"
	KeyLoginLogoCustomSize = "loginLogoCustomSize"
	KeyThemeColor          = "themeColor"
	KeyThemeRadius         = "themeRadius"
	KeyThemeMode           = "themeMode"
)

// Value types recorded next to each stored row.
const (
	TypeString = "string"
	TypeNumber = "number"
)

type Config struct {
	SystemName          string  `json:"systemName"`
	LogoLight           string  `json:"logoLight"`
	LogoDark            string  `json:"logoDark"`
	LoginImage          string  `json:"loginImage"`
	LoginTitle          string  `json:"loginTitle"`
	LoginDescription    string  `json:"loginDescription"`
	LoginLogoMode       string  `json:"loginLogoMode"` // light, dark, theme
	LoginLogoSize       string  `json:"loginLogoSize"` // small, medium, large, custom
	LoginLogoCustomSize float64 `json:"loginLogoCustomSize"`
	ThemeColor          string  `json:"themeColor"`
	ThemeRadius         string  `json:"themeRadius"`
	ThemeMode           string  `json:"themeMode"` // light, dark, auto
}

// Defaults returns the compiled-in configuration.
func Defaults() Config {
	return Config{
		SystemName:          "jBoilerplate",
		LoginTitle:          "Welcome Back",
		LoginDescription:    "Sign in to your account to continue",
		LoginLogoMode:       "theme",
		LoginLogoSize:       "large",
		LoginLogoCustomSize: 200,
		ThemeColor:          "zinc",
		ThemeRadius:         "0.5",
		ThemeMode:           "light",
	}
}

// Keys lists every known key in a stable order.
func Keys() []string {
	return []string{
		KeySystemName, KeyLogoLight, KeyLogoDark, KeyLoginImage, KeyLoginTitle,
		KeyLoginDescription, KeyLoginLogoMode, KeyLoginLogoSize, KeyLoginLogoCustomSize,
		KeyThemeColor, KeyThemeRadius, KeyThemeMode,
	}
}

// TypeOf reports the stored value type for a key. Unknown keys are strings.
func TypeOf(key string) string {
	if key == KeyLoginLogoCustomSize {
		return TypeNumber
	}
	return TypeString
}

// Merge overlays values on top of base, key by key. Unknown keys and null
// values are ignored, so the result is always fully populated. A value of the
// wrong shape for its key is ignored as well and the base cell survives.
func Merge(base Config, values map[string]any) Config {
	out := base
	for key, raw := range values {
		if raw == nil {
			continue
		}
		if key == KeyLoginLogoCustomSize {
			if n, ok := toNumber(raw); ok {
				out.LoginLogoCustomSize = n
			}
			continue
		}
		s, ok := toString(raw)
		if !ok {
			continue
		}
		if field := out.stringField(key); field != nil {
			*field = s
		}
	}
	return out
}

// FromMap merges values over Defaults.
func FromMap(values map[string]any) Config {
	return Merge(Defaults(), values)
}

// ToMap flattens the config into its wire form.
func (c Config) ToMap() map[string]any {
	return map[string]any{
		KeySystemName:          c.SystemName,
		KeyLogoLight:           c.LogoLight,
		KeyLogoDark:            c.LogoDark,
		KeyLoginImage:          c.LoginImage,
		KeyLoginTitle:          c.LoginTitle,
		KeyLoginDescription:    c.LoginDescription,
		KeyLoginLogoMode:       c.LoginLogoMode,
		KeyLoginLogoSize:       c.LoginLogoSize,
		KeyLoginLogoCustomSize: c.LoginLogoCustomSize,
		KeyThemeColor:          c.ThemeColor,
		KeyThemeRadius:         c.ThemeRadius,
		KeyThemeMode:           c.ThemeMode,
	}
}

// Title is the document title for this config, never empty.
func (c Config) Title() string {
	if c.SystemName == "" {
		return Defaults().SystemName
	}
	return c.SystemName
}

// LogoSizeClass maps the login logo size onto a width utility class.
// Custom sizes are expressed through LogoWidth instead.
func (c Config) LogoSizeClass() string {
	switch c.LoginLogoSize {
	case "custom":
		return ""
	case "small":
		return "w-32"
	case "medium":
		return "w-48"
	default:
		return "w-64"
	}
}

// LogoWidth is the inline width for custom-sized login logos.
func (c Config) LogoWidth() string {
	if c.LoginLogoSize != "custom" {
		return ""
	}
	return strconv.FormatFloat(c.LoginLogoCustomSize, 'f', -1, 64) + "px"
}

// EncodeValue renders a value the way it is stored in a row.
func EncodeValue(v any) (value string, typ string) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), TypeNumber
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), TypeNumber
	case int:
		return strconv.Itoa(n), TypeNumber
	case int64:
		return strconv.FormatInt(n, 10), TypeNumber
	case json.Number:
		return n.String(), TypeNumber
	case string:
		return n, TypeString
	case bool:
		return strconv.FormatBool(n), TypeString
	default:
		return fmt.Sprint(v), TypeString
	}
}

// DecodeValue reverses EncodeValue. Unparseable numbers stay strings.
func DecodeValue(value, typ string) any {
	if typ == TypeNumber {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	}
	return value
}

func (c *Config) stringField(key string) *string {
	switch key {
	case KeySystemName:
		return &c.SystemName
	case KeyLogoLight:
		return &c.LogoLight
	case KeyLogoDark:
		return &c.LogoDark
	case KeyLoginImage:
		return &c.LoginImage
	case KeyLoginTitle:
		return &c.LoginTitle
	case KeyLoginDescription:
		return &c.LoginDescription
	case KeyLoginLogoMode:
		return &c.LoginLogoMode
	case KeyLoginLogoSize:
		return &c.LoginLogoSize
	case KeyThemeColor:
		return &c.ThemeColor
	case KeyThemeRadius:
		return &c.ThemeRadius
	case KeyThemeMode:
		return &c.ThemeMode
	}
	return nil
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case json.Number:
		return s.String(), true
	}
	return "", false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
