package qspi

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Thermal reports the die temperature the PHY delays drift with.
type Thermal interface {
	// Temperature returns degrees Celsius.
	Temperature(ctx context.Context) (int, error)
}

// DefaultThermalZone is the sysfs node of the SoC thermal zone.
const DefaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"

// SysfsThermal reads a sysfs thermal zone, which reports millidegrees.
type SysfsThermal struct {
	Path string
}

// Temperature implements Thermal.
func (s SysfsThermal) Temperature(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	path := s.Path
	if path == "" {
		path = DefaultThermalZone
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "reading thermal zone")
	}
	milli, err := cast.ToIntE(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", path)
	}
	return milli / 1000, nil
}
