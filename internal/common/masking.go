package common

import (
	"regexp"
	"strings"
	"sync"
)

// MaskedValue replaces every redacted secret.
const MaskedValue = "***MASKED***"

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string         // Pattern name (e.g., "query_key", "bearer_token")
	Regex       *regexp.Regexp // Matches the secret in free text
	Replacement string         // Replacement template for Regex matches
	Keys        []string       // Attribute keys whose whole value is masked (case-insensitive)
}

// DefaultSensitivePatterns covers credentials this tool can see: the access key
// in request URLs and the usual header/JSON spellings of tokens.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "query_key",
		Regex:       regexp.MustCompile(`(?i)([?&](?:key|api_?key|access_token)=)[^&#\s"']+`),
		Replacement: "${1}" + MaskedValue,
		Keys:        []string{"key", "api_key", "apikey", "api-key"},
	},
	{
		Name:        "api_key",
		Regex:       regexp.MustCompile(`(?i)("?(?:api[_-]?key|x-goog-api-key)"?\s*[:=]\s*"?)[^"',}\]\s]+`),
		Replacement: "${1}" + MaskedValue,
		Keys:        []string{"x-goog-api-key"},
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)("?(?:access|auth)[_-]?token"?\s*[:=]\s*"?)[^"',}\]\s]+`),
		Replacement: "${1}" + MaskedValue,
		Keys:        []string{"token", "access_token", "auth_token"},
	},
	{
		Name:        "bearer_token",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + MaskedValue,
		Keys:        []string{"authorization"},
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)("?(?:client[_-]?)?secret"?\s*[:=]\s*"?)[^"',}\]\s]+`),
		Replacement: "${1}" + MaskedValue,
		Keys:        []string{"secret", "client_secret"},
	},
}

// Masker handles masking of sensitive information in logs and printed errors
type Masker struct {
	mu       sync.RWMutex
	patterns []SensitivePattern
	literals []string
	enabled  bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return NewMaskerWithPatterns(DefaultSensitivePatterns)
}

// NewMaskerWithPatterns creates a new masker with custom patterns
func NewMaskerWithPatterns(patterns []SensitivePattern) *Masker {
	return &Masker{
		patterns: append([]SensitivePattern(nil), patterns...),
		enabled:  true,
	}
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// AddSecret registers a literal value to redact wherever it appears,
// whatever text surrounds it. Short values are ignored.
func (m *Masker) AddSecret(secret string) {
	secret = strings.TrimSpace(secret)
	if len(secret) < 4 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.literals {
		if s == secret {
			return
		}
	}
	m.literals = append(m.literals, secret)
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.enabled {
		return input
	}

	result := input
	for _, s := range m.literals {
		result = strings.ReplaceAll(result, s, MaskedValue)
	}
	for _, pattern := range m.patterns {
		if pattern.Regex == nil {
			continue
		}
		result = pattern.Regex.ReplaceAllString(result, pattern.Replacement)
	}
	return result
}

func (m *Masker) isSensitiveKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pattern := range m.patterns {
		for _, k := range pattern.Keys {
			if strings.EqualFold(key, k) {
				return true
			}
		}
	}
	return false
}

// MaskValue masks a value based on its key, falling back to pattern matching
// on the value text. Non-string values other than errors and byte slices pass through.
func (m *Masker) MaskValue(key string, value interface{}) interface{} {
	if !m.IsEnabled() {
		return value
	}
	if m.isSensitiveKey(key) {
		return MaskedValue
	}
	switch v := value.(type) {
	case string:
		return m.MaskString(v)
	case []byte:
		return m.MaskString(string(v))
	case error:
		return m.MaskString(v.Error())
	default:
		return value
	}
}

var (
	globalMasker = NewMasker()
	// displayMasker guards text shown to the user. It ignores EnableMasking.
	displayMasker = NewMasker()
)

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// MaskForDisplay redacts secrets from text printed on stdout or persisted
// outside the logs. It masks even when log masking is switched off.
func MaskForDisplay(input string) string {
	return displayMasker.MaskString(input)
}

// RegisterSecret adds a literal secret to both the log and display maskers.
func RegisterSecret(secret string) {
	globalMasker.AddSecret(secret)
	displayMasker.AddSecret(secret)
}

// EnableMasking enables/disables masking of log output
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}
