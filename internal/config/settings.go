package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Settings keys encode Firefox preference names: "__" stands for "-" and
// "_" stands for ".". The double underscore must be decoded first, otherwise
// its halves are consumed as two dots.
var keyReplacer = []struct{ old, new string }{
	{"__", "-"},
	{"_", "."},
}

// TransformKey decodes a settings key into a Firefox preference name.
//
//	TransformKey("network_proxy_type")   // "network.proxy.type"
//	TransformKey("font_name_serif_x__western") // "font.name.serif.x-western"
func TransformKey(key string) string {
	for _, r := range keyReplacer {
		key = strings.ReplaceAll(key, r.old, r.new)
	}
	return key
}

// TransformKeys returns a copy of settings with every key decoded.
func TransformKeys(settings map[string]any) map[string]any {
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		out[TransformKey(k)] = v
	}
	return out
}

// LoadSettings reads a browser settings JSON object from path and returns
// it with decoded preference names. Whole numbers are returned as int.
func LoadSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided settings path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse browser settings %s: %w", path, err)
	}

	for k, v := range raw {
		normalized, err := normalizePreference(v)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q", err, k)
		}
		raw[k] = normalized
	}

	return TransformKeys(raw), nil
}

// normalizePreference checks that v is a valid preference value and turns
// integral JSON numbers into int, the type Firefox integer prefs expect.
func normalizePreference(v any) (any, error) {
	switch val := v.(type) {
	case bool, string:
		return val, nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) <= math.MaxInt32 {
			return int(val), nil
		}
		return val, nil
	default:
		return nil, ErrInvalidPreference
	}
}
