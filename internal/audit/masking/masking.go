package masking

import "strings"

const maskToken = "****"

var sensitiveKeys = map[string]bool{
	"iban":  true,
	"email": true,
	"phone": true,
}

// MaskSecret redacts a value while keeping a minimal suffix for auditing.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskIBAN keeps the country code and the last four characters,
// e.g. DE89****3000.
func MaskIBAN(value string) string {
	compact := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	if len(compact) <= 8 {
		return MaskSecret(compact)
	}
	return compact[:4] + maskToken + compact[len(compact)-4:]
}

// MaskDetails returns a copy of the input with sensitive values masked.
func MaskDetails(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		masked[trimmedKey] = maskValue(trimmedKey, value)
	}

	if len(masked) == 0 {
		return nil
	}
	return masked
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		return maskString(key, cast)
	case *string:
		if cast == nil {
			return nil
		}
		return maskString(key, *cast)
	case map[string]any:
		return MaskDetails(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, maskValue(key, item))
		}
		return out
	default:
		return value
	}
}

func maskString(key, value string) string {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "iban"):
		return MaskIBAN(value)
	case sensitiveKeys[lower]:
		return MaskSecret(value)
	default:
		return value
	}
}
