package domain

// =============================================================================
// Service Name Suggestion
// =============================================================================

// SuggestServiceName converts free text into a name that passes IsValidServiceName.
//
// The transformation rules are:
//   - Lowercase letters (a-z), digits (0-9) and hyphens (-) are kept as-is
//   - Uppercase letters (A-Z) are converted to lowercase
//   - Spaces and underscores are converted to hyphens
//   - All other characters are removed
//
// Example:
//
//	SuggestServiceName("My App")       // returns "my-app"
//	SuggestServiceName("redis_cache")  // returns "redis-cache"
//	SuggestServiceName("Node.js API")  // returns "nodejs-api"
func SuggestServiceName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+32)
		case r == ' ' || r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
