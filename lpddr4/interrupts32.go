package lpddr4

// Controller interrupts of the 32-bit PHY variant. Ids below 32 live in INT_STATUS_0, the
// rest in INT_STATUS_1 at id-32.
const (
	Ctl32ResetDone CtlInterrupt = iota
	Ctl32BusAccessError
	Ctl32MultipleBusAccessError
	Ctl32ECCMultipleCorrError
	Ctl32ECCMultipleUncorrError
	Ctl32ECCWritebackExecError
	Ctl32ECCScrubDone
	Ctl32ECCScrubError
	Ctl32PortCommandError
	Ctl32MCInitDone
	Ctl32LPDone
	Ctl32BistDone
	Ctl32WrapError
	Ctl32InvalidBurstError
	Ctl32RdlvlError
	Ctl32RdlvlGateError
	Ctl32WrlvlError
	Ctl32CATrainingError
	Ctl32DFIUpdateError
	Ctl32MRRError
	Ctl32PhyMasterError
	Ctl32WrlvlReq
	Ctl32RdlvlReq
	Ctl32RdlvlGateReq
	Ctl32CATrainingReq
	Ctl32LevelingDone
	Ctl32PhyError
	Ctl32MRReadDone
	Ctl32TempChange
	Ctl32TempAlert
	Ctl32SwDQSComplete
	Ctl32DQSOscBVUpdated
	Ctl32DQSOscOverflow
	Ctl32DQSOscVarOut
	Ctl32MRWriteDone
	Ctl32InhibitDRAMDone
	Ctl32DFIInitState
	Ctl32DLLResyncDone
	Ctl32TDFITimeout
	Ctl32DFSDone
	Ctl32DFSStatus
	Ctl32RefreshStatus
	Ctl32ZQStatus
	Ctl32SwReqMode
	Ctl32LORBits

	ctl32InterruptCount = 45
)

// ctl32WordBits is the width of one status register.
const ctl32WordBits = 32

var ctl32Names = [ctl32InterruptCount]string{
	"RESET_DONE", "BUS_ACCESS_ERROR", "MULTIPLE_BUS_ACCESS_ERROR", "ECC_MULTIPLE_CORR_ERROR",
	"ECC_MULTIPLE_UNCORR_ERROR", "ECC_WRITEBACK_EXEC_ERROR", "ECC_SCRUB_DONE", "ECC_SCRUB_ERROR",
	"PORT_COMMAND_ERROR", "MC_INIT_DONE", "LP_DONE", "BIST_DONE", "WRAP_ERROR",
	"INVALID_BURST_ERROR", "RDLVL_ERROR", "RDLVL_GATE_ERROR", "WRLVL_ERROR", "CA_TRAINING_ERROR",
	"DFI_UPDATE_ERROR", "MRR_ERROR", "PHY_MASTER_ERROR", "WRLVL_REQ", "RDLVL_REQ",
	"RDLVL_GATE_REQ", "CA_TRAINING_REQ", "LEVELING_DONE", "PHY_ERROR", "MR_READ_DONE",
	"TEMP_CHANGE", "TEMP_ALERT", "SW_DQS_COMPLETE", "DQS_OSC_BV_UPDATED", "DQS_OSC_OVERFLOW",
	"DQS_OSC_VAR_OUT", "MR_WRITE_DONE", "INHIBIT_DRAM_DONE", "DFI_INIT_STATE", "DLL_RESYNC_DONE",
	"TDFI_TO", "DFS_DONE", "DFS_STATUS", "REFRESH_STATUS", "ZQ_STATUS", "SW_REQ_MODE", "LOR_BITS",
}
