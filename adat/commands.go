package adat

import "github.com/ftl/adatadapter/cat"

const (
	cmdDisplayOff = "$VRU>"
	cmdDisplayOn  = "$VRU<"

	cmdGetSerialNumber    = "$CIS?"
	cmdGetFirmwareVersion = "$CIF?"
	cmdGetHardwareVersion = "$CIH?"
	cmdGetGUIVersion      = "$CIG?"
	cmdGetIDCode          = "$CID?"
	cmdGetOptions         = "$CIO?"
	cmdGetCallsign        = "$CAL?"
	cmdSetCallsign        = "$CAL:%s"

	cmdGetFrequency = "$FRA?"
	cmdSetFrequency = "$FR%d:%s"
	cmdGetMode      = "$MOD?"
	cmdSetMode      = "$MOD:%d"
	cmdGetVFO       = "$VFO?"
	cmdSetVFO       = "$VFO:%d"
	cmdGetPTT       = "$MOX?"
	cmdSetPTT       = "$MOX:%d"
)

const (
	defDisplayOff uint64 = 1 << iota
	defDisplayOn
	defGetSerialNumber
	defGetFirmwareVersion
	defGetHardwareVersion
	defGetGUIVersion
	defGetIDCode
	defGetOptions
	defCheckCallsign
	defGetCallsign
	defSetCallsign
	defGetFrequency
	defSetFrequency
	defGetMode
	defSetMode
	defGetVFO
	defSetVFO
	defGetPTT
	defSetPTT
)

const (
	opGetSerialNumber cat.OpID = iota + 1
	opGetFirmwareVersion
	opGetHardwareVersion
	opGetGUIVersion
	opGetIDCode
	opGetOptions
	opCheckCallsign
	opGetCallsign
	opSetCallsign
	opGetFrequency
	opSetFrequency
	opGetMode
	opSetMode
	opGetVFO
	opSetVFO
	opGetPTT
	opSetPTT
)

var (
	displayOff = cat.NewLiteral(defDisplayOff, "display off", cat.WithoutResult, cmdDisplayOff)
	displayOn  = cat.NewLiteral(defDisplayOn, "display on", cat.WithoutResult, cmdDisplayOn)

	getSerialNumber    = cat.NewCallback(defGetSerialNumber, "get serial number", opGetSerialNumber)
	getFirmwareVersion = cat.NewCallback(defGetFirmwareVersion, "get firmware version", opGetFirmwareVersion)
	getHardwareVersion = cat.NewCallback(defGetHardwareVersion, "get hardware version", opGetHardwareVersion)
	getGUIVersion      = cat.NewCallback(defGetGUIVersion, "get GUI version", opGetGUIVersion)
	getIDCode          = cat.NewCallback(defGetIDCode, "get ID code", opGetIDCode)
	getOptions         = cat.NewCallback(defGetOptions, "get options", opGetOptions)
	checkCallsign      = cat.NewCallback(defCheckCallsign, "check callsign", opCheckCallsign)
	getCallsign        = cat.NewCallback(defGetCallsign, "get callsign", opGetCallsign)
	setCallsign        = cat.NewCallback(defSetCallsign, "set callsign", opSetCallsign)

	getFrequency = cat.NewCallback(defGetFrequency, "get frequency", opGetFrequency)
	setFrequency = cat.NewCallback(defSetFrequency, "set frequency", opSetFrequency)
	getMode      = cat.NewCallback(defGetMode, "get mode", opGetMode)
	setMode      = cat.NewCallback(defSetMode, "set mode", opSetMode)
	getVFO       = cat.NewCallback(defGetVFO, "get VFO", opGetVFO)
	setVFO       = cat.NewCallback(defSetVFO, "set VFO", opSetVFO)
	getPTT       = cat.NewCallback(defGetPTT, "get PTT", opGetPTT)
	setPTT       = cat.NewCallback(defSetPTT, "set PTT", opSetPTT)
)

var (
	openSequence = cat.NewSequence("open",
		displayOff,
		getSerialNumber,
		getFirmwareVersion,
		getHardwareVersion,
		getGUIVersion,
		getIDCode,
		getOptions,
		checkCallsign,
	)
	closeSequence = cat.NewSequence("close", displayOn)
	infoSequence  = cat.NewSequence("get info",
		displayOff,
		getSerialNumber,
		getFirmwareVersion,
		getHardwareVersion,
		getGUIVersion,
		getOptions,
		checkCallsign,
	)
	recoverSequence = cat.NewSequence("recover from error", displayOff)

	getFrequencySequence = cat.NewSequence("get frequency", displayOff, getFrequency)
	setFrequencySequence = cat.NewSequence("set frequency", displayOff, setFrequency)
	getModeSequence      = cat.NewSequence("get mode", displayOff, getMode)
	setModeSequence      = cat.NewSequence("set mode", displayOff, setMode)
	getVFOSequence       = cat.NewSequence("get VFO", displayOff, getVFO)
	setVFOSequence       = cat.NewSequence("set VFO", displayOff, setVFO)
	getPTTSequence       = cat.NewSequence("get PTT", displayOff, getPTT)
	setPTTSequence       = cat.NewSequence("set PTT", displayOff, setPTT)
	getCallsignSequence  = cat.NewSequence("get callsign", displayOff, getCallsign)
	setCallsignSequence  = cat.NewSequence("set callsign", displayOff, setCallsign)
)
