// Package idgen hands out emergency identifiers.
package idgen

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/sonyflake"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Sonyflake generates time-ordered int64 ids unique per node.
type Sonyflake struct {
	sf *sonyflake.Sonyflake
}

// NewSonyflake creates a generator for the given node id.
func NewSonyflake(nodeID uint16) (*Sonyflake, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: epoch,
		MachineID: func() (uint16, error) { return nodeID, nil },
	})
	if err != nil {
		return nil, fmt.Errorf("sonyflake: %w", err)
	}
	if sf == nil {
		return nil, errors.New("sonyflake: invalid settings")
	}
	return &Sonyflake{sf: sf}, nil
}

// NextID returns the next identifier.
func (g *Sonyflake) NextID() (int64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return int64(id), nil
}
