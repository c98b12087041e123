package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"

	"go.viam.com/k3ddrss/config"
	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/lpddr4"
	"go.viam.com/k3ddrss/lpddr4/fake"
	"go.viam.com/k3ddrss/qspi"
)

func TestRead(t *testing.T) {
	t.Setenv("DDRSS_BASE", "254803968")
	logger, logs := logging.NewObservedTestLogger(t)
	p, err := config.Read("testdata/pocketbeagle2.json", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Name, test.ShouldEqual, "pocketbeagle2")
	test.That(t, p.Base, test.ShouldEqual, uint64(0x0F300000))
	test.That(t, p.ConfigFilePath, test.ShouldEqual, "testdata/pocketbeagle2.json")

	attrs, err := p.QSPI.FlashAttributes(logger)
	test.That(t, err, test.ShouldBeNil)
	want := config.DefaultFlashAttributes()
	want.MaxHz = 25000000
	want.PHYMode = true
	want.TSHSLNs = 60
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("flash attributes mismatch (-want +got):\n%s", diff)
	}
	test.That(t, logs.FilterMessageSnippet("unknown flash attributes").Len(), test.ShouldBeGreaterThan, 0)

	start, ok, err := p.QSPI.PatternStart(attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, start, test.ShouldEqual, uint32(0x3FC0000))
}

func TestReadMissingEnv(t *testing.T) {
	t.Setenv("DDRSS_BASE", "")
	_, err := config.Read("testdata/pocketbeagle2.json", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeError)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Profile {
		return &config.Profile{Variant: "32", Base: fake.DefaultBase}
	}
	test.That(t, valid().Validate("p"), test.ShouldBeNil)

	for _, tc := range []struct {
		name   string
		mutate func(p *config.Profile)
		substr string
	}{
		{"no variant", func(p *config.Profile) { p.Variant = "" }, `"variant" is required`},
		{"bad variant", func(p *config.Profile) { p.Variant = "64" }, "unknown controller variant"},
		{"no base", func(p *config.Profile) { p.Base = 0 }, `"base" is required`},
		{"verify without masks", func(p *config.Profile) { p.VerifyWrites = true }, `"masks" is required`},
		{"ctl offset", func(p *config.Profile) { p.Ctl = []config.RegValue{{Offset: 459}} }, "ctl[0]: offset 459 out of range"},
		{"pi offset", func(p *config.Profile) { p.PI = []config.RegValue{{Offset: 1}, {Offset: 300}} }, "pi[1]: offset 300"},
		{"phy offset", func(p *config.Profile) { p.PHY = []config.RegValue{{Offset: 1423}} }, "phy[0]"},
		{"unknown patch", func(p *config.Profile) { p.Patches = []string{"bbb"} }, `unknown patch "bbb"`},
		{"qspi base", func(p *config.Profile) { p.QSPI = &config.QSPIConfig{RefClkHz: 1} }, `"base" is required`},
		{"qspi clock", func(p *config.Profile) { p.QSPI = &config.QSPIConfig{Base: 1} }, `"ref_clk_hz" is required`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := valid()
			tc.mutate(p)
			err := p.Validate("p")
			test.That(t, err, test.ShouldBeError)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.substr)
		})
	}
}

func TestFromReaderRejectsBadJSON(t *testing.T) {
	_, err := config.FromReader("inline", strings.NewReader(`{"variant": 16`), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeError)
	test.That(t, err.Error(), test.ShouldContainSubstring, "inline")
}

func TestFlashAttributes(t *testing.T) {
	logger := logging.NewTestLogger(t)
	q := &config.QSPIConfig{Base: 1, RefClkHz: 1}
	attrs, err := q.FlashAttributes(logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, attrs, test.ShouldResemble, config.DefaultFlashAttributes())
	test.That(t, attrs.Timing(), test.ShouldResemble, qspi.Timing{TSHSL: 200, TSD2D: 255, TCHSH: 20, TSLCH: 20})

	q.Attributes = map[string]interface{}{"read-delay": "3", "phy-mode": true}
	attrs, err = q.FlashAttributes(logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, attrs.ReadDelay, test.ShouldEqual, 3)
	test.That(t, attrs.PHYMode, test.ShouldBeTrue)

	_, _, err = q.PatternStart(attrs)
	test.That(t, errors.Is(err, qspi.ErrNoPatternPartition), test.ShouldBeTrue)
	attrs.PHYMode = false
	_, ok, err := q.PatternStart(attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	for _, bad := range []map[string]interface{}{
		{"read-delay": 16},
		{"spi-max-frequency": 0},
		{"phy-tx-start": 50, "phy-tx-end": 40},
		{"page-size": "large"},
		{"phy-mode": "true"},
	} {
		q.Attributes = bad
		_, err := q.FlashAttributes(logger)
		test.That(t, err, test.ShouldBeError)
	}
}

func TestApply(t *testing.T) {
	sim := fake.NewDDRSS(lpddr4.PHY32, fake.DefaultBase)
	var c lpddr4.Controller
	test.That(t, c.Init(sim.Config()), test.ShouldBeNil)

	p := &config.Profile{
		Variant: "32",
		Base:    fake.DefaultBase,
		Ctl:     []config.RegValue{{Offset: 317, Value: 1}, {Offset: 10, Value: 0xAA}},
		PI:      []config.RegValue{{Offset: 3, Value: 0xBB}},
		PHY:     []config.RegValue{{Offset: 1024, Value: 0xCC}},
		Patches: []string{"pocketbeagle2-1gb"},
	}
	test.That(t, p.Validate("p"), test.ShouldBeNil)
	test.That(t, p.Apply(&c), test.ShouldBeNil)

	reg := func(block lpddr4.RegBlock, off uint32) uint32 {
		return sim.Peek(lpddr4.Reg{Block: block, Offset: off}.Addr(sim.Base))
	}
	// The patch is written after the board table.
	test.That(t, reg(lpddr4.CtlRegs, 317), test.ShouldEqual, uint32(0x101))
	test.That(t, reg(lpddr4.CtlRegs, 318), test.ShouldEqual, uint32(0x1FFF0000))
	test.That(t, reg(lpddr4.CtlRegs, 10), test.ShouldEqual, uint32(0xAA))
	test.That(t, reg(lpddr4.PhyIndepRegs, 3), test.ShouldEqual, uint32(0xBB))
	test.That(t, reg(lpddr4.PhyIndepRegs, 77), test.ShouldEqual, uint32(0x04010100))
	test.That(t, reg(lpddr4.PhyRegs, 1024), test.ShouldEqual, uint32(0xCC))
	writes := sim.Writes(lpddr4.Reg{Block: lpddr4.CtlRegs, Offset: 317}.Addr(sim.Base))
	test.That(t, writes, test.ShouldResemble, []uint32{1, 0x101})
}

func TestApplyStopsAtFirstError(t *testing.T) {
	sim := fake.NewDDRSS(lpddr4.PHY16, fake.DefaultBase)
	var c lpddr4.Controller
	test.That(t, c.Init(sim.Config()), test.ShouldBeNil)

	// Skips Validate, as a caller building a profile by hand might.
	p := &config.Profile{
		Variant: "16",
		Base:    fake.DefaultBase,
		Ctl:     []config.RegValue{{Offset: 500, Value: 1}},
		PI:      []config.RegValue{{Offset: 3, Value: 0xBB}},
	}
	err := p.Apply(&c)
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "applying ctl table")
	test.That(t, sim.Writes(lpddr4.Reg{Block: lpddr4.PhyIndepRegs, Offset: 3}.Addr(sim.Base)), test.ShouldBeEmpty)
}

func TestSchema(t *testing.T) {
	s := config.Schema()
	test.That(t, s, test.ShouldNotBeNil)
	raw, err := s.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(raw), test.ShouldContainSubstring, "poll_max_iterations")
	test.That(t, config.PatchNames(), test.ShouldResemble, []string{"pocketbeagle2-1gb"})
	test.That(t, config.FlashAttributesSchema(), test.ShouldNotBeNil)
}
