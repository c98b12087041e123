package lpddr4

import "github.com/pkg/errors"

// RWMasks are the bits of each register the hardware stores, used to check writes. A register
// without a mask entry is not checked.
type RWMasks struct {
	Ctl      []uint32 `json:"ctl"`
	PhyIndep []uint32 `json:"pi"`
	// DataSlices has one table per data slice, indexed by the offset inside the slice.
	DataSlices [][]uint32 `json:"data_slices"`
	// AddrSlice is shared by every address slice.
	AddrSlice []uint32 `json:"addr_slice"`
	PhyCore   []uint32 `json:"phy_core"`
}

func maskAt(table []uint32, i uint32) uint32 {
	if i < uint32(len(table)) {
		return table[i]
	}
	return 0
}

// mask returns the rw mask of a register of a layout.
func (m *RWMasks) mask(l *Layout, block RegBlock, offset uint32) uint32 {
	switch block {
	case CtlRegs:
		return maskAt(m.Ctl, offset)
	case PhyIndepRegs:
		return maskAt(m.PhyIndep, offset)
	}
	slice := int(offset / sliceWidth)
	inSlice := offset % sliceWidth
	switch {
	case slice < l.DataSlices:
		if slice < len(m.DataSlices) {
			return maskAt(m.DataSlices[slice], inSlice)
		}
		return 0
	case slice < l.DataSlices+l.AddrSlices:
		return maskAt(m.AddrSlice, inSlice)
	default:
		return maskAt(m.PhyCore, offset-l.coreStart)
	}
}

func (c *Controller) verifyWrite(r Reg, want uint32) error {
	mask := c.masks.mask(c.layout, r.Block, r.Offset)
	got := c.read(r)
	if got&mask != want&mask {
		return errors.Wrapf(ErrVerify, "%s register %d: wrote %#08x, read %#08x (mask %#08x)",
			r.Block, r.Offset, want, got, mask)
	}
	return nil
}
