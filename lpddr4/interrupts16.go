package lpddr4

// Controller interrupts of the 16-bit PHY variant.
const (
	Ctl16TimeoutZQCalInit CtlInterrupt = iota
	Ctl16TimeoutZQCalLatch
	Ctl16TimeoutZQCalStart
	Ctl16TimeoutMRRTemp
	Ctl16TimeoutDQSOscReq
	Ctl16TimeoutDFIUpdate
	Ctl16TimeoutLPWakeUp
	Ctl16TimeoutAutoRefreshMax
	Ctl16ECCError
	Ctl16LPDone
	Ctl16LPTimeout
	Ctl16PortTimeout
	Ctl16RFIFOTimeout
	Ctl16TrainingZQStatus
	Ctl16TrainingDQSOscDone
	Ctl16TrainingDQSOscUpdateDone
	Ctl16TrainingDQSOscOverflow
	Ctl16TrainingDQSOscVarOut
	Ctl16UserIFOutsideMemAccess
	Ctl16UserIFMultiOutsideMemAccess
	Ctl16UserIFPortCmdError
	Ctl16UserIFWrap
	Ctl16UserIFInvalSetting
	Ctl16MiscMRRTraffic
	Ctl16MiscSwReqMode
	Ctl16MiscChangeTempRefresh
	Ctl16MiscTempAlert
	Ctl16MiscRefreshStatus
	Ctl16BistDone
	Ctl16CRC
	Ctl16DFIUpdateError
	Ctl16DFIPhyError
	Ctl16DFIBusError
	Ctl16DFIStateChange
	Ctl16DFIDLLSyncDone
	Ctl16DFITimeout
	Ctl16DIMM
	Ctl16FreqDFSReqHwIgnore
	Ctl16FreqDFSHwTerminate
	Ctl16FreqDFSHwDone
	Ctl16FreqDFSReqSwIgnore
	Ctl16FreqDFSSwTerminate
	Ctl16FreqDFSSwDone
	Ctl16InitMemResetDone
	Ctl16MCInitDone
	Ctl16InitPowerOnState
	Ctl16MRRError
	Ctl16MRReadDone
	Ctl16MRWriteDone
	Ctl16ParityError
	Ctl16LORBits

	ctl16InterruptCount = 51
)

var ctl16Names = [ctl16InterruptCount]string{
	"TIMEOUT_ZQ_CAL_INIT", "TIMEOUT_ZQ_CALLATCH", "TIMEOUT_ZQ_CALSTART", "TIMEOUT_MRR_TEMP",
	"TIMEOUT_DQS_OSC_REQ", "TIMEOUT_DFI_UPDATE", "TIMEOUT_LP_WAKEUP", "TIMEOUT_AUTO_REFRESH_MAX",
	"ECC_ERROR", "LP_DONE", "LP_TIMEOUT", "PORT_TIMEOUT", "RFIFO_TIMEOUT",
	"TRAINING_ZQ_STATUS", "TRAINING_DQS_OSC_DONE", "TRAINING_DQS_OSC_UPDATE_DONE",
	"TRAINING_DQS_OSC_OVERFLOW", "TRAINING_DQS_OSC_VAR_OUT",
	"USERIF_OUTSIDE_MEM_ACCESS", "USERIF_MULTI_OUTSIDE_MEM_ACCESS", "USERIF_PORT_CMD_ERROR",
	"USERIF_WRAP", "USERIF_INVAL_SETTING",
	"MISC_MRR_TRAFFIC", "MISC_SW_REQ_MODE", "MISC_CHANGE_TEMP_REFRESH", "MISC_TEMP_ALERT",
	"MISC_REFRESH_STATUS", "BIST_DONE", "CRC",
	"DFI_UPDATE_ERROR", "DFI_PHY_ERROR", "DFI_BUS_ERROR", "DFI_STATE_CHANGE",
	"DFI_DLL_SYNC_DONE", "DFI_TIMEOUT", "DIMM",
	"FREQ_DFS_REQ_HW_IGNORE", "FREQ_DFS_HW_TERMINATE", "FREQ_DFS_HW_DONE",
	"FREQ_DFS_REQ_SW_IGNORE", "FREQ_DFS_SW_TERMINATE", "FREQ_DFS_SW_DONE",
	"INIT_MEM_RESET_DONE", "MC_INIT_DONE", "INIT_POWER_ON_STATE",
	"MRR_ERROR", "MR_READ_DONE", "MR_WRITE_DONE", "PARITY_ERROR", "LOR_BITS",
}

// ctl16Map gives the master group and the bit inside the group status register of every
// 16-bit controller interrupt, indexed by id.
var ctl16Map = [ctl16InterruptCount]struct{ group, bit uint8 }{
	{0, 7}, {0, 8}, {0, 9}, {0, 14}, {0, 15}, {0, 16}, {0, 17}, {0, 19},
	{1, 0},
	{2, 0}, {2, 3},
	{3, 0},
	{4, 0},
	{5, 11}, {5, 12}, {5, 13}, {5, 14}, {5, 15},
	{6, 0}, {6, 1}, {6, 2}, {6, 6}, {6, 7},
	{7, 3}, {7, 4}, {7, 5}, {7, 6}, {7, 7},
	{8, 0},
	{9, 0},
	{10, 0}, {10, 1}, {10, 2}, {10, 3}, {10, 4}, {10, 5},
	{11, 0},
	{12, 0}, {12, 1}, {12, 2}, {12, 3}, {12, 4}, {12, 5},
	{13, 0}, {13, 1}, {13, 3},
	{14, 0}, {14, 2}, {14, 3},
	{15, 2},
	{16, 0},
}

// ctl16Group is one row of the range table that picks a group status register. Ids outside
// every row only have a master status bit.
type ctl16Group struct {
	min, max CtlInterrupt
	status   func(l *Layout) Reg
	ack      func(l *Layout) Reg
	ackRMW   bool
}

var ctl16Groups = []ctl16Group{
	{Ctl16TimeoutZQCalInit, Ctl16TimeoutAutoRefreshMax,
		func(l *Layout) Reg { return l.IntStatusTimeout }, func(l *Layout) Reg { return l.IntAckTimeout }, false},
	{Ctl16TrainingZQStatus, Ctl16TrainingDQSOscVarOut,
		func(l *Layout) Reg { return l.IntStatusTraining }, func(l *Layout) Reg { return l.IntAckTraining }, false},
	{Ctl16UserIFOutsideMemAccess, Ctl16UserIFInvalSetting,
		func(l *Layout) Reg { return l.IntStatusUserIF }, func(l *Layout) Reg { return l.IntAckUserIF }, false},
	{Ctl16MiscMRRTraffic, Ctl16MiscRefreshStatus,
		func(l *Layout) Reg { return l.IntStatusMisc }, func(l *Layout) Reg { return l.IntAckMisc }, false},
	{Ctl16DFIUpdateError, Ctl16DFITimeout,
		func(l *Layout) Reg { return l.IntStatusDFI }, func(l *Layout) Reg { return l.IntAckDFI }, false},
	{Ctl16FreqDFSReqHwIgnore, Ctl16FreqDFSSwDone,
		func(l *Layout) Reg { return l.IntStatusFreq }, func(l *Layout) Reg { return l.IntAckFreq }, true},
	{Ctl16LPDone, Ctl16LPTimeout,
		func(l *Layout) Reg { return l.IntStatusLowPower }, func(l *Layout) Reg { return l.IntAckLowPower }, true},
	{Ctl16InitMemResetDone, Ctl16InitPowerOnState,
		func(l *Layout) Reg { return l.IntStatusInit }, func(l *Layout) Reg { return l.IntAckInit }, true},
	{Ctl16MRRError, Ctl16MRWriteDone,
		func(l *Layout) Reg { return l.IntStatusMode }, func(l *Layout) Reg { return l.IntAckMode }, false},
	{Ctl16BistDone, Ctl16BistDone,
		func(l *Layout) Reg { return l.IntStatusBist }, func(l *Layout) Reg { return l.IntAckBist }, true},
	{Ctl16ParityError, Ctl16ParityError,
		func(l *Layout) Reg { return l.IntStatusParity }, func(l *Layout) Reg { return l.IntAckParity }, true},
}
