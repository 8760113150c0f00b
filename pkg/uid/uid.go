package uid

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake"
)

// UID generates unique, roughly time ordered ids. *sonyflake.Sonyflake satisfies it.
type UID interface {
	NextID() (uint64, error)
}

var _ UID = (*sonyflake.Sonyflake)(nil)

// epoch of every generated id
var epoch = time.Date(2022, 9, 23, 0, 0, 0, 0, time.UTC)

func NewSonyflake() (*sonyflake.Sonyflake, error) {
	gen := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: epoch,
	})

	if gen == nil {
		return nil, fmt.Errorf("sonyflake cannot be created, machine id may not be resolved")
	}

	return gen, nil
}
