package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator implements usecase.IDGenerator. Each transfer attempt gets a
// ULID reference that ties its log lines and span together; references are
// never written to the accounts table.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new, lexically sortable transfer reference.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
