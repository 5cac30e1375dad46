package testutil

// FixedSessionGenerator returns the same session ID every time.
//
// Harness scenarios use it so recorded evaluations, and therefore golden
// files, are byte-identical across runs.
type FixedSessionGenerator struct {
	ID string
}

// NewFixedSessionGenerator returns a generator that always yields id.
// An empty id becomes "test-session".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session"
	}
	return &FixedSessionGenerator{ID: id}
}

// Generate returns the fixed ID.
func (g *FixedSessionGenerator) Generate() string {
	return g.ID
}
