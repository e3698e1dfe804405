package redis

import "fmt"

// Cache key patterns. Everything the bridge stores lives under the
// "gabridge" namespace so that clearing the cache can never touch keys
// another application put in the same Redis.
const (
	KeyReport     = "gabridge:report:%s"     // gabridge:report:{queryHash}
	KeyConnection = "gabridge:connection:%s" // gabridge:connection:{scope}
	KeyTokens     = "gabridge:tokens:%s"     // gabridge:tokens:{scope}
	KeySetting    = "gabridge:setting:%s"    // gabridge:setting:{name}

	// PatternReports matches every cached report and nothing else.
	PatternReports = "gabridge:report:*"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyReport builds the key for one cached, normalized report.
func (kb *KeyBuilder) KeyReport(queryHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyReport, queryHash))
}

// KeyConnection builds the key for the persisted connection record.
func (kb *KeyBuilder) KeyConnection(scope string) string {
	return kb.BuildKey(fmt.Sprintf(KeyConnection, scope))
}

// KeyTokens builds the key for a scope's OAuth token set.
func (kb *KeyBuilder) KeyTokens(scope string) string {
	return kb.BuildKey(fmt.Sprintf(KeyTokens, scope))
}

// KeySetting builds the key for a single named setting.
func (kb *KeyBuilder) KeySetting(name string) string {
	return kb.BuildKey(fmt.Sprintf(KeySetting, name))
}

// PatternReports returns the match pattern covering every cached
// report in this environment.
func (kb *KeyBuilder) PatternReports() string {
	return kb.BuildKey(PatternReports)
}
