package qspi

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// PatternPartitionLabel labels the flash partition holding the tuning pattern.
const PatternPartitionLabel = "ospi.phypattern"

// ErrNoPatternPartition is returned when no partition carries PatternPartitionLabel.
var ErrNoPatternPartition = errors.New("no PHY pattern partition")

var tuningPattern = [...]byte{
	0xFE, 0xFF, 0x01, 0x01, 0x01, 0x01, 0x01, 0x00, 0xFE, 0xFE, 0x01, 0x01, 0x01, 0x01, 0x00, 0x00,
	0xFE, 0xFE, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0xFE, 0xFE, 0x01, 0xFF, 0x00, 0xFE, 0x00,
	0x00, 0xFE, 0xFE, 0x01, 0x00, 0x00, 0xFF, 0xFF, 0xFE, 0xFE, 0x01, 0x01, 0xFF, 0xFE, 0xFE, 0x00,
	0x01, 0x00, 0x00, 0xFE, 0xFE, 0xFF, 0x01, 0x01, 0x00, 0xFE, 0xFE, 0x01, 0x00, 0xFF, 0x01, 0xFE,
	0x00, 0xFE, 0xFE, 0xFF, 0x01, 0x00, 0xFE, 0x00, 0x01, 0xFE, 0xFE, 0x00, 0xFE, 0x01, 0xFE, 0xFF,
	0x00, 0xFE, 0x00, 0xFE, 0xFE, 0x01, 0xFE, 0x01, 0x00, 0xFF, 0xFE, 0xFE, 0x01, 0xFF, 0x00, 0xFE,
	0x01, 0xFE, 0xFE, 0xFF, 0x00, 0x01, 0xFE, 0x00, 0x01, 0xFE, 0xFE, 0x00, 0x01, 0x00, 0xFE, 0xFE,
	0x00, 0xFF, 0xFE, 0x01, 0x01, 0xFE, 0x00, 0xFE, 0xFF, 0x01, 0x00, 0x00, 0xFE, 0xFE, 0x01, 0x00,
}

// TuningPattern returns a copy of the pattern the PHY calibration reads back.
func TuningPattern() []byte {
	return append([]byte(nil), tuningPattern[:]...)
}

// Partition is one flash partition.
type Partition struct {
	Label  string `json:"label"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

// FindPatternPartition returns the offset of the tuning pattern partition.
func FindPatternPartition(partitions []Partition) (uint32, error) {
	p, ok := lo.Find(partitions, func(p Partition) bool {
		return p.Label == PatternPartitionLabel
	})
	if !ok {
		return 0, ErrNoPatternPartition
	}
	return p.Offset, nil
}
