package lpddr4

import (
	"fmt"

	"go.viam.com/k3ddrss/regio"
)

// RegBlock selects one of the three register blocks.
type RegBlock uint32

const (
	// CtlRegs is the memory controller block.
	CtlRegs RegBlock = iota
	// PhyRegs is the PHY block.
	PhyRegs
	// PhyIndepRegs is the PHY-independent (PI) training block.
	PhyIndepRegs
)

// Byte offsets of the register blocks from the controller base.
const (
	ctlBlockOffset = 0x0000
	piBlockOffset  = 0x2000
	phyBlockOffset = 0x4000

	// sliceWidth is the register stride between PHY slices.
	sliceWidth = 0x100
)

func (b RegBlock) String() string {
	switch b {
	case CtlRegs:
		return "ctl"
	case PhyRegs:
		return "phy"
	case PhyIndepRegs:
		return "pi"
	}
	return fmt.Sprintf("RegBlock(%d)", uint32(b))
}

func (b RegBlock) valid() bool {
	return b <= PhyIndepRegs
}

func (b RegBlock) offset() uint64 {
	switch b {
	case PhyRegs:
		return phyBlockOffset
	case PhyIndepRegs:
		return piBlockOffset
	default:
		return ctlBlockOffset
	}
}

// ParseRegBlock accepts "ctl", "pi" or "phy".
func ParseRegBlock(name string) (RegBlock, error) {
	switch name {
	case "ctl":
		return CtlRegs, nil
	case "pi":
		return PhyIndepRegs, nil
	case "phy":
		return PhyRegs, nil
	}
	return 0, invalidf("unknown register block %q", name)
}

// Reg names a field of one register.
type Reg struct {
	Block  RegBlock
	Offset uint32
	Field  regio.Field
}

// Slice returns the same field n PHY slices further on.
func (r Reg) Slice(n int) Reg {
	r.Offset += uint32(n) * sliceWidth
	return r
}

// Addr returns the byte address of the register for a controller at base.
func (r Reg) Addr(base uint64) uint64 {
	return base + r.Block.offset() + uint64(r.Offset)*4
}

// FSP is a frequency set point.
type FSP uint32

const (
	// FSP0 is frequency set point 0.
	FSP0 FSP = iota
	// FSP1 is frequency set point 1.
	FSP1
	// FSP2 is frequency set point 2.
	FSP2
)

func (f FSP) valid() bool { return f <= FSP2 }

// index returns 0, 1 or 2; anything that is not FSP1 or FSP2 uses the FSP0 registers.
func (f FSP) index() int {
	switch f {
	case FSP1:
		return 1
	case FSP2:
		return 2
	default:
		return 0
	}
}

// InfoType is passed to the info callback.
type InfoType uint32

const (
	// InfoNone carries no information.
	InfoNone InfoType = iota
	// InfoSocPLLUpdate is raised right after the start bits are set, before polling.
	InfoSocPLLUpdate
)

// LPIWakeUpParam selects a low power interface wake-up timing.
type LPIWakeUpParam uint32

const (
	// LPIPDWakeUp is the power-down wake-up time.
	LPIPDWakeUp LPIWakeUpParam = iota
	// LPISRShortWakeUp is the short self-refresh wake-up time.
	LPISRShortWakeUp
	// LPISRLongWakeUp is the long self-refresh wake-up time.
	LPISRLongWakeUp
	// LPISRLongMCClkGateWakeUp is the long self-refresh with gated controller clock wake-up time.
	LPISRLongMCClkGateWakeUp
	// LPISRPDShortWakeUp is the short self-refresh power-down wake-up time.
	LPISRPDShortWakeUp
	// LPISRPDLongWakeUp is the long self-refresh power-down wake-up time.
	LPISRPDLongWakeUp
	// LPISRPDLongMCClkGateWakeUp is the long self-refresh power-down with gated clock wake-up time.
	LPISRPDLongMCClkGateWakeUp

	lpiWakeUpParamCount = 7
)

// maxWakeUpCycles bounds the 4-bit wake-up fields.
const maxWakeUpCycles = 0xF

// ReducMode is the data path width reduction setting.
type ReducMode uint32

const (
	// ReducOn enables half datapath mode.
	ReducOn ReducMode = iota
	// ReducOff uses the full datapath.
	ReducOff
)

// EccEnable is the ECC setting.
type EccEnable uint32

const (
	// EccDisabled turns ECC off.
	EccDisabled EccEnable = iota
	// EccEnabled turns ECC on without reporting.
	EccEnabled
	// EccErrDetect detects errors.
	EccErrDetect
	// EccErrDetectCorrect detects and corrects errors.
	EccErrDetectCorrect
)

// DBIMode is a data bus inversion request.
type DBIMode uint32

const (
	// DBIReadOn enables read DBI.
	DBIReadOn DBIMode = iota
	// DBIReadOff disables read DBI.
	DBIReadOff
	// DBIWriteOn enables write DBI.
	DBIWriteOn
	// DBIWriteOff disables write DBI.
	DBIWriteOff
)

// DebugInfo collects the training checks run by GetDebugInitInfo. A true flag is a failure.
type DebugInfo struct {
	PLLError           bool `json:"pll_error"`
	IOCalibError       bool `json:"io_calib_error"`
	RxOffsetError      bool `json:"rx_offset_error"`
	CATrainingError    bool `json:"ca_training_error"`
	WriteLevelingError bool `json:"write_leveling_error"`
	GateLevelingError  bool `json:"gate_leveling_error"`
	ReadLevelingError  bool `json:"read_leveling_error"`
	DQTrainingError    bool `json:"dq_training_error"`
}

// Check is one named DebugInfo flag.
type Check struct {
	Name   string
	Failed bool
}

// Checks lists the flags in evaluation order.
func (d DebugInfo) Checks() []Check {
	return []Check{
		{"pll lock", d.PLLError},
		{"io calibration", d.IOCalibError},
		{"rx offset", d.RxOffsetError},
		{"ca training", d.CATrainingError},
		{"write leveling", d.WriteLevelingError},
		{"gate leveling", d.GateLevelingError},
		{"read leveling", d.ReadLevelingError},
		{"dq training", d.DQTrainingError},
	}
}

// Failed reports whether any flag is set.
func (d DebugInfo) Failed() bool {
	return d != DebugInfo{}
}
