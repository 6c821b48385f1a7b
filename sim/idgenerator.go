package sim

import (
	"strconv"
	"sync"
	"sync/atomic"
)

var idGeneratorMutex sync.Mutex
var idGenerator IDGenerator

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID.
	Generate() string
}

// GetIDGenerator returns the ID generator used in the current process. IDs
// are sequential so that repeated runs stay deterministic.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGenerator == nil {
		idGenerator = &sequentialIDGenerator{}
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}
