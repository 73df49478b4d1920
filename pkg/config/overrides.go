package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseSet splits key=value. The value is decoded as YAML so numbers, bools,
// lists and maps keep their type; anything else stays a string.
func parseSet(raw string) (string, interface{}, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, configError(fmt.Sprintf("invalid --set %q, want key=value", raw), nil)
	}
	var decoded interface{}
	if err := yaml.Unmarshal([]byte(value), &decoded); err != nil || decoded == nil {
		return key, value, nil
	}
	if key == "llm.models" {
		if s, isString := decoded.(string); isString {
			return key, envValue(key, s), nil
		}
	}
	return key, decoded, nil
}
