package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/k3ddrss/config"
	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/qspi"
	qspifake "go.viam.com/k3ddrss/qspi/fake"
	"go.viam.com/k3ddrss/regio"
	regfake "go.viam.com/k3ddrss/regio/fake"
)

// Simulated QSPI controller: a 25 MHz reference and a flash whose PHY window sits at read
// delay 2.
const (
	simQSPIBase     = 0x0FC40000
	simQSPIRefClkHz = 25000000
	simPatternStart = 0x3FC0000
	qspiWindow      = 0x100
)

var simWindow = qspifake.Region{ReadDelay: 2, TXMin: 10, TXMax: 50, RXMin: 5, RXMax: 40}

// QSPIResult is what one QSPI calibration found.
type QSPIResult struct {
	Capture qspi.CaptureResult
	UsePHY  bool
	PHY     qspi.Setting
}

type qspiTarget struct {
	ctrl         *qspi.Controller
	flash        qspi.Flash
	thermal      qspi.Thermal
	attrs        config.FlashAttributes
	patternStart uint32
	hasPattern   bool
	close        func() error
}

func openSimQSPI(temperature int) *qspiTarget {
	ctrl := qspi.NewController(regfake.NewBank(), simQSPIBase, simQSPIRefClkHz)
	flash := qspifake.NewFlash(ctrl, simPatternStart, simWindow)
	flash.CaptureLow, flash.CaptureHigh = 3, 7
	attrs := config.DefaultFlashAttributes()
	attrs.MaxHz = simQSPIRefClkHz / 2
	attrs.PHYMode = true
	return &qspiTarget{
		ctrl:         ctrl,
		flash:        flash,
		thermal:      qspifake.Thermal{Celsius: temperature},
		attrs:        attrs,
		patternStart: simPatternStart,
		hasPattern:   true,
	}
}

func openQSPI(path string, logger logging.Logger) (*qspiTarget, error) {
	p, err := config.Read(path, logger)
	if err != nil {
		return nil, err
	}
	if p.QSPI == nil {
		return nil, errors.Errorf("profile %q has no qspi section", path)
	}
	if p.QSPI.Port == "" {
		return nil, errors.Errorf("profile %q names no qspi port", path)
	}
	attrs, err := p.QSPI.FlashAttributes(logger)
	if err != nil {
		return nil, err
	}
	start, ok, err := p.QSPI.PatternStart(attrs)
	if err != nil {
		return nil, err
	}
	m, err := regio.OpenPhysical(p.QSPI.Base, qspiWindow, nil)
	if err != nil {
		return nil, err
	}
	flash, err := qspi.OpenSPIFlash(p.QSPI.Port, attrs.MaxHz)
	if err != nil {
		utils.UncheckedError(m.Close())
		return nil, err
	}
	return &qspiTarget{
		ctrl:         qspi.NewController(m, p.QSPI.Base, p.QSPI.RefClkHz),
		flash:        flash,
		thermal:      qspi.SysfsThermal{},
		attrs:        attrs,
		patternStart: start,
		hasPattern:   ok,
		close: func() error {
			return errors.Wrap(multierr.Combine(flash.Close(), m.Close()), "closing qspi target")
		},
	}, nil
}

// calibrateQSPI sets the bus speed, which calibrates the read capture delay, and then runs
// the PHY calibration when PHY mode is configured.
func calibrateQSPI(ctx context.Context, t *qspiTarget, hz uint32, logger logging.Logger) (QSPIResult, error) {
	capture := qspi.NewCaptureCalibrator(qspi.CaptureConfig{
		Controller: t.ctrl,
		Flash:      t.flash,
		Logger:     logger,
		Timing:     t.attrs.Timing(),
		MaxHz:      t.attrs.MaxHz,
		ReadDelay:  t.attrs.ReadDelay,
	})
	if err := capture.SetSpeed(ctx, hz, 0); err != nil {
		return QSPIResult{}, err
	}

	phy := qspi.NewPHYCalibrator(qspi.PHYConfig{
		Controller:   t.ctrl,
		Flash:        t.flash,
		Thermal:      t.thermal,
		Logger:       logger,
		PHYMode:      t.attrs.PHYMode && t.hasPattern,
		PatternStart: t.patternStart,
		TXStart:      t.attrs.PHYTXStart,
		TXEnd:        t.attrs.PHYTXEnd,
	})
	phy.DoCalibration(ctx)

	res := QSPIResult{Capture: capture.Last(), UsePHY: phy.UsePHY()}
	if res.UsePHY {
		rx, tx := t.ctrl.DLL()
		res.PHY = qspi.Setting{TX: tx, RX: rx, ReadDelay: phy.ReadDelay()}
	}
	return res, nil
}

// QSPICalibrateAction calibrates a QSPI controller from a profile, or the simulator.
func QSPICalibrateAction(c *cli.Context) error {
	logger := loggerFrom(c)
	var (
		t   *qspiTarget
		err error
	)
	switch {
	case c.Bool(flagSim):
		t = openSimQSPI(c.Int(flagTemperature))
	case c.String(flagProfile) != "":
		if t, err = openQSPI(c.String(flagProfile), logger); err != nil {
			return err
		}
	default:
		return errors.New("need --profile or --sim")
	}
	if t.close != nil {
		defer utils.UncheckedErrorFunc(t.close)
	}

	res, err := calibrateQSPI(c.Context, t, uint32(c.Uint(flagHz)), logger)
	if err != nil {
		return err
	}
	renderQSPI(c.App.Writer, res)
	return nil
}
