package inject

import (
	"context"

	"go.viam.com/k3ddrss/qspi"
)

// Flash is an injected qspi.Flash.
type Flash struct {
	qspi.Flash
	ReadIDFunc func(ctx context.Context) ([]byte, error)
	ReadFunc   func(ctx context.Context, addr uint32, buf []byte) error
}

// ReadID calls the injected ReadID or the real version.
func (f *Flash) ReadID(ctx context.Context) ([]byte, error) {
	if f.ReadIDFunc == nil {
		return f.Flash.ReadID(ctx)
	}
	return f.ReadIDFunc(ctx)
}

// Read calls the injected Read or the real version.
func (f *Flash) Read(ctx context.Context, addr uint32, buf []byte) error {
	if f.ReadFunc == nil {
		return f.Flash.Read(ctx, addr, buf)
	}
	return f.ReadFunc(ctx, addr, buf)
}
