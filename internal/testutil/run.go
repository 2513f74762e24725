package testutil

// FixedRunGenerator returns the same run token every time, so runs recorded
// by tests are byte-identical across executions.
//
// Thread-safety: stateless, safe for concurrent use.
type FixedRunGenerator struct {
	token string
}

// NewFixedRunGenerator returns a generator for token. An empty token
// becomes "test-run-default".
func NewFixedRunGenerator(token string) *FixedRunGenerator {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedRunGenerator{token: token}
}

// Generate returns the fixed token. Implements engine.RunTokenGenerator.
func (g *FixedRunGenerator) Generate() string {
	return g.token
}
