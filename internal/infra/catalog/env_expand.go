package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"mcpbridge/internal/domain"
)

// expandConfigEnv substitutes ${VAR} references in every string value of
// the JSON document and reports which variables were unset.
func expandConfigEnv(raw []byte) ([]byte, []string, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, nil, domain.E(domain.CodeConfigParse, fmt.Sprintf("parse config: %v", err), err)
	}

	missing := make(map[string]struct{})
	root = expandValue(root, missing)

	expanded, err := json.Marshal(root)
	if err != nil {
		return nil, nil, domain.E(domain.CodeConfigParse, fmt.Sprintf("encode expanded config: %v", err), err)
	}
	return expanded, missingList(missing), nil
}

func expandValue(value any, missing map[string]struct{}) any {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			v[key] = expandValue(child, missing)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = expandValue(child, missing)
		}
		return v
	case string:
		return expandEnvWithTracking(v, missing)
	default:
		return value
	}
}

func expandEnvWithTracking(value string, missing map[string]struct{}) string {
	return os.Expand(value, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		missing[key] = struct{}{}
		return ""
	})
}

func missingList(missing map[string]struct{}) []string {
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
