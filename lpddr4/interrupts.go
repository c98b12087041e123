package lpddr4

import "fmt"

// CtlInterrupt is a logical controller interrupt. Numbering is per Variant: the Ctl16*
// constants belong to PHY16 and the Ctl32* constants to PHY32.
type CtlInterrupt uint32

// PhyIndepInterrupt is a logical PHY-independent interrupt; its value is its status bit.
type PhyIndepInterrupt uint32

// PHY-independent interrupts, shared by both variants.
const (
	PIInitDone PhyIndepInterrupt = iota
	PICAParityErr
	PIRdlvlError
	PIRdlvlGateError
	PIWrlvlError
	PICalvlError
	PIWdqlvlError
	PIUpdateError
	PIRdlvlReq
	PIRdlvlGateReq
	PIWrlvlReq
	PICalvlReq
	PIWdqlvlReq
	PILvlDone
	PIBistDone
	PITdfiInitTimeOut
	PIDLLLockStateChange

	phyIndepInterruptCount = 17
)

var phyIndepNames = [phyIndepInterruptCount]string{
	"INIT_DONE", "CA_PARITY_ERR", "RDLVL_ERROR", "RDLVL_G_ERROR", "WRLVL_ERROR",
	"CALVL_ERROR", "WDQLVL_ERROR", "UPDATE_ERROR", "RDLVL_REQ", "RDLVL_GATE_REQ",
	"WRLVL_REQ", "CALVL_REQ", "WDQLVL_REQ", "LVL_DONE", "BIST_DONE",
	"TDFI_INIT_TIME_OUT", "DLL_LOCK_STATE_CHANGE",
}

func (i PhyIndepInterrupt) String() string {
	if i < phyIndepInterruptCount {
		return "PI_" + phyIndepNames[i]
	}
	return fmt.Sprintf("PhyIndepInterrupt(%d)", uint32(i))
}

func (i PhyIndepInterrupt) valid() bool {
	return i < phyIndepInterruptCount
}

// maxPhyIndepMask is one past the largest PI interrupt mask.
const maxPhyIndepMask = uint32(1) << phyIndepInterruptCount
