package qspi

import (
	"context"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPI-NOR commands.
const (
	cmdReadID = 0x9F
	cmdRead   = 0x03

	idLen = 3
)

// Flash is the flash device behind a controller.
type Flash interface {
	// ReadID returns the JEDEC manufacturer and device ID.
	ReadID(ctx context.Context) ([]byte, error)
	// Read fills buf from flash offset addr.
	Read(ctx context.Context, addr uint32, buf []byte) error
}

// SPIFlash is a SPI-NOR flash reached through a periph SPI port.
type SPIFlash struct {
	port spi.PortCloser
	conn spi.Conn
}

// OpenSPIFlash opens the named SPI port (for example "SPI0.0") at hz.
func OpenSPIFlash(name string, hz uint32) (*SPIFlash, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing periph host drivers")
	}
	port, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening SPI port %q", name)
	}
	conn, err := port.Connect(physic.Frequency(hz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		//nolint:errcheck
		port.Close()
		return nil, errors.Wrapf(err, "connecting to SPI port %q", name)
	}
	return &SPIFlash{port: port, conn: conn}, nil
}

// ReadID implements Flash.
func (f *SPIFlash) ReadID(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := make([]byte, 1+idLen)
	w[0] = cmdReadID
	r := make([]byte, len(w))
	if err := f.conn.Tx(w, r); err != nil {
		return nil, errors.Wrap(err, "reading flash ID")
	}
	return r[1:], nil
}

// Read implements Flash.
func (f *SPIFlash) Read(ctx context.Context, addr uint32, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w := make([]byte, 4+len(buf))
	w[0] = cmdRead
	w[1] = byte(addr >> 16)
	w[2] = byte(addr >> 8)
	w[3] = byte(addr)
	r := make([]byte, len(w))
	if err := f.conn.Tx(w, r); err != nil {
		return errors.Wrapf(err, "reading flash at %#x", addr)
	}
	copy(buf, r[4:])
	return nil
}

// Close releases the port.
func (f *SPIFlash) Close() error {
	return f.port.Close()
}
