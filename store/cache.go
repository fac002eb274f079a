package store

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// NewCache builds the decoded record cache shared by the stores of an
// engine. maxCost is in bytes.
func NewCache(maxCost int64) (*ristretto.Cache[uint64, []byte], error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, []byte]{
		NumCounters: max(maxCost/100, 1000),
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("new record cache: %w", err)
	}
	return cache, nil
}
