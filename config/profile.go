// Package config reads board DDR profiles: the controller variant and base, the register
// tables pushed before the start sequence, and the QSPI flash attributes.
package config

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/lpddr4"
	"go.viam.com/k3ddrss/regio"
	"go.viam.com/k3ddrss/utils"
)

// RegValue is one register table entry.
type RegValue struct {
	Offset uint16 `json:"offset"`
	Value  uint32 `json:"value"`
}

// Profile is the DDR configuration of one board.
type Profile struct {
	Name    string `json:"name"`
	Variant string `json:"variant" jsonschema:"enum=16,enum=32"`
	Base    uint64 `json:"base"`

	VerifyWrites      bool            `json:"verify_writes,omitempty"`
	Masks             *lpddr4.RWMasks `json:"masks,omitempty"`
	PollDelayNs       uint32          `json:"poll_delay_ns,omitempty"`
	PollMaxIterations uint32          `json:"poll_max_iterations,omitempty"`

	Ctl []RegValue `json:"ctl,omitempty"`
	PI  []RegValue `json:"pi,omitempty"`
	PHY []RegValue `json:"phy,omitempty"`

	// Patches names built-in patches applied after the tables, in order.
	Patches []string `json:"patches,omitempty"`

	QSPI *QSPIConfig `json:"qspi,omitempty"`

	ConfigFilePath string `json:"-"`
}

// Read reads a profile from filePath, substituting environment variables first.
func Read(filePath string, logger logging.Logger) (*Profile, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a profile from r. originalPath names the source in errors.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Profile, error) {
	p := Profile{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrapf(err, "cannot parse profile %q", originalPath)
	}
	if err := p.Validate("profile"); err != nil {
		return nil, err
	}
	if p.QSPI != nil {
		if _, err := p.QSPI.FlashAttributes(logger); err != nil {
			return nil, utils.NewConfigValidationError("profile.qspi.attributes", err)
		}
	}
	logger.Debugw("profile loaded", "name", p.Name, "path", originalPath, "variant", p.Variant)
	return &p, nil
}

// Validate checks the profile against the register layout of its variant.
func (p *Profile) Validate(path string) error {
	if p.Variant == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "variant")
	}
	variant, err := lpddr4.ParseVariant(p.Variant)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if p.Base == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "base")
	}
	if p.VerifyWrites && p.Masks == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "masks")
	}

	layout := variant.Layout()
	var errs error
	check := func(name string, block lpddr4.RegBlock, table []RegValue) {
		n := layout.Count(block)
		for i, rv := range table {
			if uint32(rv.Offset) >= n {
				errs = multierr.Append(errs, errors.Errorf("%s[%d]: offset %d out of range (%d registers)", name, i, rv.Offset, n))
			}
		}
	}
	check("ctl", lpddr4.CtlRegs, p.Ctl)
	check("pi", lpddr4.PhyIndepRegs, p.PI)
	check("phy", lpddr4.PhyRegs, p.PHY)

	for _, name := range p.Patches {
		patch, ok := BuiltinPatches[name]
		if !ok {
			errs = multierr.Append(errs, errors.Errorf("unknown patch %q (have %v)", name, PatchNames()))
			continue
		}
		check(name+".ctl", lpddr4.CtlRegs, patch.Ctl)
		check(name+".pi", lpddr4.PhyIndepRegs, patch.PI)
		check(name+".phy", lpddr4.PhyRegs, patch.PHY)
	}

	if p.QSPI != nil {
		errs = multierr.Append(errs, p.QSPI.Validate(path+".qspi"))
	}
	if errs != nil {
		return utils.NewConfigValidationError(path, errs)
	}
	return nil
}

// ControllerConfig returns the lpddr4 configuration for the profile on port.
func (p *Profile) ControllerConfig(port regio.Port, logger logging.Logger) (*lpddr4.Config, error) {
	variant, err := lpddr4.ParseVariant(p.Variant)
	if err != nil {
		return nil, err
	}
	return &lpddr4.Config{
		Base:              p.Base,
		Port:              port,
		Variant:           variant,
		Logger:            logger,
		VerifyWrites:      p.VerifyWrites,
		Masks:             p.Masks,
		PollDelayNs:       p.PollDelayNs,
		PollMaxIterations: p.PollMaxIterations,
	}, nil
}

// Tables returns the ctl, pi and phy tables with the named patches appended.
func (p *Profile) Tables() (ctl, pi, phy []RegValue) {
	ctl = append([]RegValue(nil), p.Ctl...)
	pi = append([]RegValue(nil), p.PI...)
	phy = append([]RegValue(nil), p.PHY...)
	for _, name := range p.Patches {
		patch := BuiltinPatches[name]
		ctl = append(ctl, patch.Ctl...)
		pi = append(pi, patch.PI...)
		phy = append(phy, patch.PHY...)
	}
	return ctl, pi, phy
}

// Apply writes the tables to ctrl, controller block first, stopping at the first error.
func (p *Profile) Apply(ctrl *lpddr4.Controller) error {
	ctl, pi, phy := p.Tables()
	for _, t := range []struct {
		name  string
		table []RegValue
		write func(offsets []uint16, values []uint32) error
	}{
		{"ctl", ctl, ctrl.WriteCtlConfig},
		{"pi", pi, ctrl.WritePhyIndepConfig},
		{"phy", phy, ctrl.WritePhyConfig},
	} {
		if len(t.table) == 0 {
			continue
		}
		offsets, values := split(t.table)
		if err := t.write(offsets, values); err != nil {
			return errors.WithMessagef(err, "applying %s table", t.name)
		}
	}
	return nil
}

func split(table []RegValue) ([]uint16, []uint32) {
	offsets := lo.Map(table, func(rv RegValue, _ int) uint16 { return rv.Offset })
	values := lo.Map(table, func(rv RegValue, _ int) uint32 { return rv.Value })
	return offsets, values
}

// Patch is a register delta for a board.
type Patch struct {
	Description string
	Ctl         []RegValue
	PI          []RegValue
	PHY         []RegValue
}

// BuiltinPatches are the board deltas a profile can name.
var BuiltinPatches = map[string]Patch{
	"pocketbeagle2-1gb": {
		Description: "PocketBeagle 2 with 1 GB LPDDR4",
		Ctl:         []RegValue{{Offset: 317, Value: 0x101}, {Offset: 318, Value: 0x1FFF0000}},
		PI:          []RegValue{{Offset: 77, Value: 0x04010100}},
		PHY:         []RegValue{{Offset: 1, Value: 0}},
	},
}

// PatchNames returns the built-in patch names, sorted.
func PatchNames() []string {
	names := lo.Keys(BuiltinPatches)
	sort.Strings(names)
	return names
}
