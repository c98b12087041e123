package qspi

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/k3ddrss/logging"
)

// PHY delay line search bounds.
const (
	initReadDelay = 1
	maxReadDelay  = 4

	lowRXBound  = 15
	highRXBound = 25
	maxRX       = 63

	lowTXBound  = 32
	highTXBound = 48
	maxTX       = 63

	txLookupLowBound  = 24
	txLookupHighBound = 38

	// cornerMargin is how far inside the theoretical corners the corner read delays are probed.
	cornerMargin = 4
	// finalMargin is how far the two-region tuning point is moved off its corner.
	finalMargin = 16
)

// Temperature range of the compensation, in degrees Celsius.
const (
	DefaultTemperature = 45
	MinTemperature     = -45
	MaxTemperature     = 130
	midTemperature     = 42
)

// Default TX positions of the RX boundary searches.
const (
	DefaultPHYTXStart = 16
	DefaultPHYTXEnd   = 48
)

var (
	// ErrNoWindow is returned when a boundary search runs out of delay settings.
	ErrNoWindow = errors.New("no passing PHY setting found")
	// ErrTemperature is returned when the die temperature is outside the operating range.
	ErrTemperature = errors.New("temperature outside operating range")
	// ErrFinalPoint is returned when the pattern does not read back at the chosen point.
	ErrFinalPoint = errors.New("pattern not readable at the final tuning point")
)

// Setting is one PHY delay line configuration.
type Setting struct {
	TX        int `json:"tx"`
	RX        int `json:"rx"`
	ReadDelay int `json:"read_delay"`
}

func (s Setting) String() string {
	return fmt.Sprintf("RX: %d TX: %d RD: %d", s.RX, s.TX, s.ReadDelay)
}

// PHYConfig configures a PHYCalibrator.
type PHYConfig struct {
	Controller *Controller
	Flash      Flash
	// Thermal may be nil, in which case DefaultTemperature is assumed.
	Thermal Thermal
	Logger  logging.Logger

	// PHYMode enables calibration at all.
	PHYMode bool
	// PatternStart is the flash offset of the tuning pattern.
	PatternStart uint32
	// TXStart and TXEnd are where the RX boundary searches start. Zero selects the defaults.
	TXStart int
	TXEnd   int
}

// PHYCalibrator searches the PHY RX/TX delay space for a setting that reads the tuning pattern
// reliably.
type PHYCalibrator struct {
	ctrl    *Controller
	flash   Flash
	thermal Thermal
	logger  logging.Logger

	phyMode      bool
	patternStart uint32
	txStart      int
	txEnd        int

	usePHY    bool
	readDelay int
	buf       []byte
}

// NewPHYCalibrator returns a calibrator for cfg.
func NewPHYCalibrator(cfg PHYConfig) *PHYCalibrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewBlankLogger("qspi.phy")
	} else {
		logger = logger.Sublogger("qspi.phy")
	}
	p := &PHYCalibrator{
		ctrl:         cfg.Controller,
		flash:        cfg.Flash,
		thermal:      cfg.Thermal,
		logger:       logger,
		phyMode:      cfg.PHYMode,
		patternStart: cfg.PatternStart,
		txStart:      cfg.TXStart,
		txEnd:        cfg.TXEnd,
		buf:          make([]byte, len(tuningPattern)),
	}
	if p.txStart == 0 {
		p.txStart = DefaultPHYTXStart
	}
	if p.txEnd == 0 {
		p.txEnd = DefaultPHYTXEnd
	}
	return p
}

// UsePHY reports whether the last calibration succeeded and reads go through the PHY.
func (p *PHYCalibrator) UsePHY() bool {
	return p.usePHY
}

// ReadDelay returns the PHY read delay of the last successful calibration.
func (p *PHYCalibrator) ReadDelay() int {
	return p.readDelay
}

// DoCalibration calibrates when PHY mode is configured and the tuning pattern reads back at
// the current setting. A failed calibration leaves PHY mode off and is only logged.
func (p *PHYCalibrator) DoCalibration(ctx context.Context) {
	if !p.phyMode {
		return
	}
	ok, err := p.checkPattern(ctx)
	if err != nil || !ok {
		p.logger.Debug("pattern not found, skipping calibration")
		return
	}
	if _, err := p.Calibrate(ctx); err != nil {
		p.logger.Warnw("PHY calibration failed, falling back to slower clock speeds", "error", err)
	}
}

// Calibrate finds the RX and TX boundaries of the passing window, locates the gap to the
// failing region between two corners and applies a tuning point chosen from them. On error
// PHY mode is turned off.
func (p *PHYCalibrator) Calibrate(ctx context.Context) (Setting, error) {
	p.usePHY = true
	p.ctrl.SetPHY(true)
	s, err := p.calibrate(ctx)
	if err != nil {
		p.usePHY = false
		p.ctrl.SetPHY(false)
		return Setting{}, err
	}
	p.readDelay = s.ReadDelay
	return s, nil
}

func (p *PHYCalibrator) calibrate(ctx context.Context) (Setting, error) {
	rxlow, err := p.searchRXLow(ctx, p.txStart, 1, txLookupLowBound)
	if err != nil {
		return Setting{}, err
	}
	p.logger.Debugw("rxlow", "setting", rxlow)

	rxhigh := rxlow
	if err := p.findRXHigh(ctx, &rxhigh); err != nil {
		return Setting{}, err
	}
	p.logger.Debugw("rxhigh", "setting", rxhigh)

	// Boundaries on the same read delay may be the edges of the failing region; look again
	// at the far end of TX.
	if rxlow.ReadDelay == rxhigh.ReadDelay {
		p.logger.Debug("rxlow and rxhigh at the same read delay")
		temp, err := p.searchRXLow(ctx, p.txEnd, -1, txLookupHighBound)
		if err != nil {
			return Setting{}, err
		}
		p.logger.Debugw("rxlow", "setting", temp)
		if temp.RX < rxlow.RX {
			rxlow = temp
		}
		if err := p.findRXHigh(ctx, &temp); err != nil {
			return Setting{}, err
		}
		p.logger.Debugw("rxhigh", "setting", temp)
		if temp.RX < rxhigh.RX {
			rxhigh = temp
		}
	}

	txlow := Setting{RX: rxlow.RX + (rxhigh.RX-rxlow.RX)/4, ReadDelay: initReadDelay}
	if err := p.findTXLow(ctx, &txlow); err != nil {
		return Setting{}, err
	}
	p.logger.Debugw("txlow", "setting", txlow)

	txhigh := Setting{RX: txlow.RX, ReadDelay: txlow.ReadDelay}
	if err := p.findTXHigh(ctx, &txhigh); err != nil {
		return Setting{}, err
	}
	p.logger.Debugw("txhigh", "setting", txhigh)

	if txlow.ReadDelay == txhigh.ReadDelay {
		temp := Setting{RX: rxlow.RX + 3*(rxhigh.RX-rxlow.RX)/4, ReadDelay: initReadDelay}
		p.logger.Debugw("txlow and txhigh at the same read delay", "rx", temp.RX)
		if err := p.findTXLow(ctx, &temp); err != nil {
			return Setting{}, err
		}
		p.logger.Debugw("txlow", "setting", temp)
		if temp.TX < txlow.TX {
			txlow = temp
		}
		if err := p.findTXHigh(ctx, &temp); err != nil {
			return Setting{}, err
		}
		p.logger.Debugw("txhigh", "setting", temp)
		if temp.TX < txhigh.TX {
			txhigh = temp
		}
	}

	// The corners are theoretical and need not pass themselves; the longest diagonal of the
	// window runs between them.
	bottomleft := Setting{TX: txlow.TX, RX: rxlow.RX, ReadDelay: minInt(txlow.ReadDelay, rxlow.ReadDelay)}
	if err := p.probeCorner(ctx, &bottomleft, cornerMargin, -1); err != nil {
		return Setting{}, err
	}
	topright := Setting{TX: txhigh.TX, RX: rxhigh.RX, ReadDelay: maxInt(txhigh.ReadDelay, rxhigh.ReadDelay)}
	if err := p.probeCorner(ctx, &topright, -cornerMargin, 1); err != nil {
		return Setting{}, err
	}
	p.logger.Debugw("corners", "topright", topright, "bottomleft", bottomleft)

	gaplow, err := p.findGap(ctx, bottomleft, topright, false)
	if err != nil {
		return Setting{}, err
	}
	p.logger.Debugw("gaplow", "setting", gaplow)

	var point Setting
	if bottomleft.ReadDelay == topright.ReadDelay {
		// One passing region: the start of the failing region stands in for the real top
		// right corner.
		topright = gaplow
		point = Setting{
			TX:        bottomleft.TX + (topright.TX-bottomleft.TX)/2,
			RX:        bottomleft.RX + (topright.RX-bottomleft.RX)/2,
			ReadDelay: bottomleft.ReadDelay,
		}
		tmp, err := p.temperature(ctx)
		if err != nil {
			return Setting{}, err
		}
		point.TX += (topright.TX - bottomleft.TX) / (330 / (tmp - midTemperature))
		point.RX += (topright.RX - bottomleft.RX) / (330 / (tmp - midTemperature))
	} else {
		gaphigh, err := p.findGap(ctx, bottomleft, topright, true)
		if err != nil {
			return Setting{}, err
		}
		p.logger.Debugw("gaphigh", "setting", gaphigh)

		if topright.TX == bottomleft.TX {
			return Setting{}, errors.Wrap(ErrNoWindow, "corners share a TX delay")
		}
		slope := func(d int) int { return d * (topright.RX - bottomleft.RX) / (topright.TX - bottomleft.TX) }
		// Stay away from whichever corner is closer to the failing region.
		if l1(gaplow, bottomleft) < l1(gaphigh, topright) {
			point = topright
			point.TX -= finalMargin
			point.RX -= slope(finalMargin)
		} else {
			point = bottomleft
			point.TX += finalMargin
			point.RX += slope(finalMargin)
		}
	}

	ok, err := p.try(ctx, point)
	if err != nil {
		return Setting{}, err
	}
	p.logger.Debugw("final tuning point", "setting", point)
	if !ok {
		return Setting{}, errors.Wrapf(ErrFinalPoint, "at %v", point)
	}
	return point, nil
}

func (p *PHYCalibrator) temperature(ctx context.Context) (int, error) {
	tmp := DefaultTemperature
	if p.thermal != nil {
		t, err := p.thermal.Temperature(ctx)
		if err == nil {
			tmp = t
		} else {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			p.logger.Debugw("unable to get temperature, assuming room temperature", "error", err)
		}
	}
	if tmp < MinTemperature || tmp > MaxTemperature {
		p.logger.Errorw("temperature outside operating range", "celsius", tmp)
		return 0, errors.Wrapf(ErrTemperature, "%dC", tmp)
	}
	if tmp == midTemperature {
		tmp++
	}
	p.logger.Debugw("temperature", "celsius", tmp)
	return tmp, nil
}

// searchRXLow runs findRXLow at successive TX values from tx, stepping by step while tx stays
// on the near side of bound.
func (p *PHYCalibrator) searchRXLow(ctx context.Context, tx, step, bound int) (Setting, error) {
	s := Setting{TX: tx}
	for {
		p.logger.Debugw("searching for rxlow", "tx", s.TX)
		s.ReadDelay = initReadDelay
		err := p.findRXLow(ctx, &s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrNoWindow) {
			return Setting{}, err
		}
		s.TX += step
		if (step > 0 && s.TX > bound) || (step < 0 && s.TX < bound) {
			return Setting{}, err
		}
	}
}

func (p *PHYCalibrator) findRXLow(ctx context.Context, s *Setting) error {
	return p.sweep(ctx, s, &s.RX, 0, 1, lowRXBound, "RX low")
}

func (p *PHYCalibrator) findRXHigh(ctx context.Context, s *Setting) error {
	return p.sweep(ctx, s, &s.RX, maxRX, -1, highRXBound, "RX high")
}

func (p *PHYCalibrator) findTXLow(ctx context.Context, s *Setting) error {
	return p.sweep(ctx, s, &s.TX, 0, 1, lowTXBound, "TX low")
}

func (p *PHYCalibrator) findTXHigh(ctx context.Context, s *Setting) error {
	return p.sweep(ctx, s, &s.TX, maxTX, -1, highTXBound, "TX high")
}

// sweep moves *axis from start towards bound by step, at each read delay from s.ReadDelay up
// to maxReadDelay, and stops at the first setting that reads the pattern. The read delay is
// tried at least once even when it starts beyond maxReadDelay.
func (p *PHYCalibrator) sweep(ctx context.Context, s *Setting, axis *int, start, step, bound int, what string) error {
	for {
		*axis = start
		for {
			ok, err := p.try(ctx, *s)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			*axis += step
			if (step > 0 && *axis > bound) || (step < 0 && *axis < bound) {
				break
			}
		}
		s.ReadDelay++
		if s.ReadDelay > maxReadDelay {
			break
		}
	}
	p.logger.Debugf("unable to find %s", what)
	return errors.Wrapf(ErrNoWindow, "unable to find %s", what)
}

// probeCorner moves the read delay of corner to the one that passes a margin inside it,
// trying the corner's own read delay first and then the one adjusted by rdStep.
func (p *PHYCalibrator) probeCorner(ctx context.Context, corner *Setting, margin, rdStep int) error {
	temp := *corner
	temp.TX += margin
	temp.RX += margin
	ok, err := p.try(ctx, temp)
	if err != nil {
		return err
	}
	if !ok {
		temp.ReadDelay += rdStep
		if ok, err = p.try(ctx, temp); err != nil {
			return err
		}
	}
	if ok {
		corner.ReadDelay = temp.ReadDelay
	}
	return nil
}

// findGap bisects the diagonal between bottomleft and topright for the boundary between the
// passing and failing regions. The low gap is searched at bottomleft's read delay, where the
// passing region is below the gap; the high gap at topright's, where it is above.
func (p *PHYCalibrator) findGap(ctx context.Context, bottomleft, topright Setting, high bool) (Setting, error) {
	left, right := bottomleft, topright
	mid := Setting{
		TX:        left.TX + (right.TX-left.TX)/2,
		RX:        left.RX + (right.RX-left.RX)/2,
		ReadDelay: left.ReadDelay,
	}
	if high {
		mid.ReadDelay = right.ReadDelay
	}

	for {
		ok, err := p.try(ctx, mid)
		if err != nil {
			return Setting{}, err
		}
		if ok != high {
			left.TX, left.RX = mid.TX, mid.RX
			mid.TX += (right.TX - mid.TX) / 2
			mid.RX += (right.RX - mid.RX) / 2
		} else {
			right.TX, right.RX = mid.TX, mid.RX
			mid.TX = left.TX + (mid.TX-left.TX)/2
			mid.RX = left.RX + (mid.RX-left.RX)/2
		}
		if right.TX-left.TX < 2 || right.RX-left.RX < 2 {
			return mid, nil
		}
	}
}

// try applies s and reports whether the pattern reads back. Only context errors are returned;
// a failed flash read is a failed setting.
func (p *PHYCalibrator) try(ctx context.Context, s Setting) (bool, error) {
	p.apply(s)
	return p.checkPattern(ctx)
}

func (p *PHYCalibrator) apply(s Setting) {
	p.ctrl.SetDLL(s.RX, s.TX)
	p.ctrl.SetReadCapture(false, uint32(s.ReadDelay))
	p.readDelay = s.ReadDelay
}

func (p *PHYCalibrator) checkPattern(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := p.flash.Read(ctx, p.patternStart, p.buf); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	return bytes.Equal(p.buf, tuningPattern[:]), nil
}

func l1(a, b Setting) int {
	return absInt(a.TX-b.TX) + absInt(a.RX-b.RX)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a >= b {
		return a
	}
	return b
}
