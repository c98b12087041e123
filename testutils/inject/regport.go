package inject

import (
	"go.viam.com/k3ddrss/regio"
)

// Port is an injected regio.Port.
type Port struct {
	regio.Port
	Read32Func  func(addr uint64) uint32
	Write32Func func(addr uint64, value uint32)
	DelayNsFunc func(ns uint32)
}

// Read32 calls the injected Read32 or the real version.
func (p *Port) Read32(addr uint64) uint32 {
	if p.Read32Func == nil {
		return p.Port.Read32(addr)
	}
	return p.Read32Func(addr)
}

// Write32 calls the injected Write32 or the real version.
func (p *Port) Write32(addr uint64, value uint32) {
	if p.Write32Func == nil {
		p.Port.Write32(addr, value)
		return
	}
	p.Write32Func(addr, value)
}

// DelayNs calls the injected DelayNs or the real version.
func (p *Port) DelayNs(ns uint32) {
	if p.DelayNsFunc == nil {
		p.Port.DelayNs(ns)
		return
	}
	p.DelayNsFunc(ns)
}
