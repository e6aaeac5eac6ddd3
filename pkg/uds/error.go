package uds

import (
	"fmt"
)

// UDS negative response codes (ISO 14229-1 A.1).
const (
	GeneralReject                          = 0x10
	ServiceNotSupported                    = 0x11
	SubFunctionNotSupported                = 0x12
	IncorrectMessageLengthOrInvalidFormat  = 0x13
	ResponseTooLong                        = 0x14
	BusyRepeatRequest                      = 0x21
	ConditionsNotCorrect                   = 0x22
	RequestSequenceError                   = 0x24
	NoResponseFromSubnetComponent          = 0x25
	FailurePreventsExecutionOfRequest      = 0x26
	RequestOutOfRange                      = 0x31
	SecurityAccessDenied                   = 0x33
	InvalidKey                             = 0x35
	ExceedNumberOfAttempts                 = 0x36
	RequiredTimeDelayNotExpired            = 0x37
	UploadDownloadNotAccepted              = 0x70
	TransferDataSuspended                  = 0x71
	GeneralProgrammingFailure              = 0x72
	WrongBlockSequenceCounter              = 0x73
	RequestCorrectlyReceivedResponsePending = 0x78
	SubFunctionNotSupportedInActiveSession = 0x7E
	ServiceNotSupportedInActiveSession     = 0x7F
	RPMTooHigh                             = 0x81
	RPMTooLow                              = 0x82
	EngineIsRunning                        = 0x83
	EngineIsNotRunning                     = 0x84
	EngineRunTimeTooLow                    = 0x85
	TemperatureTooHigh                     = 0x86
	TemperatureTooLow                      = 0x87
	VehicleSpeedTooHigh                    = 0x88
	VehicleSpeedTooLow                     = 0x89
	ThrottlePedalTooHigh                   = 0x8A
	ThrottlePedalTooLow                    = 0x8B
	TransmissionRangeNotInNeutral          = 0x8C
	TransmissionRangeNotInGear             = 0x8D
	BrakeSwitchNotClosed                   = 0x8F
	ShifterLeverNotInPark                  = 0x90
	TorqueConverterClutchLocked            = 0x91
	VoltageTooHigh                         = 0x92
	VoltageTooLow                          = 0x93
)

var descriptions = map[byte]string{
	GeneralReject:                          "General reject",
	ServiceNotSupported:                    "Service not supported",
	SubFunctionNotSupported:                "Sub-function not supported",
	IncorrectMessageLengthOrInvalidFormat:  "Incorrect message length or invalid format",
	ResponseTooLong:                        "Response too long",
	BusyRepeatRequest:                      "Busy, repeat request",
	ConditionsNotCorrect:                   "Conditions not correct",
	RequestSequenceError:                   "Request sequence error",
	NoResponseFromSubnetComponent:          "No response from subnet component",
	FailurePreventsExecutionOfRequest:      "Failure prevents execution of request",
	RequestOutOfRange:                      "Request out of range",
	SecurityAccessDenied:                   "Security access denied",
	InvalidKey:                             "Invalid key supplied",
	ExceedNumberOfAttempts:                 "Exceeded number of attempts to get security access",
	RequiredTimeDelayNotExpired:            "Required time delay not expired",
	UploadDownloadNotAccepted:              "Upload/download not accepted",
	TransferDataSuspended:                  "Transfer data suspended",
	GeneralProgrammingFailure:              "General programming failure",
	WrongBlockSequenceCounter:              "Wrong block sequence counter",
	RequestCorrectlyReceivedResponsePending: "Request correctly received, response pending",
	SubFunctionNotSupportedInActiveSession: "Sub-function not supported in active session",
	ServiceNotSupportedInActiveSession:     "Service not supported in active session",
	RPMTooHigh:                             "RPM too high",
	RPMTooLow:                              "RPM too low",
	EngineIsRunning:                        "Engine is running",
	EngineIsNotRunning:                     "Engine is not running",
	EngineRunTimeTooLow:                    "Engine run time too low",
	TemperatureTooHigh:                     "Temperature too high",
	TemperatureTooLow:                      "Temperature too low",
	VehicleSpeedTooHigh:                    "Vehicle speed too high",
	VehicleSpeedTooLow:                     "Vehicle speed too low",
	ThrottlePedalTooHigh:                   "Throttle/pedal too high",
	ThrottlePedalTooLow:                    "Throttle/pedal too low",
	TransmissionRangeNotInNeutral:          "Transmission range not in neutral",
	TransmissionRangeNotInGear:             "Transmission range not in gear",
	BrakeSwitchNotClosed:                   "Brake switch not closed",
	ShifterLeverNotInPark:                  "Shifter lever not in park",
	TorqueConverterClutchLocked:            "Torque converter clutch locked",
	VoltageTooHigh:                         "Voltage too high",
	VoltageTooLow:                          "Voltage too low",
}

// ErrorByte classifies a UDS negative response code. Codes outside the
// ISO 14229 table describe themselves as unknown and never drive retry
// behavior.
type ErrorByte byte

func (e ErrorByte) Standard() bool {
	_, ok := descriptions[byte(e)]
	return ok
}

func (e ErrorByte) Description() string {
	if desc, ok := descriptions[byte(e)]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown error code 0x%02X", byte(e))
}

func (e ErrorByte) IsBusy() bool {
	return byte(e) == RequestCorrectlyReceivedResponsePending
}

func (e ErrorByte) IsWrongMode() bool {
	return byte(e) == ServiceNotSupportedInActiveSession
}

func (e ErrorByte) IsRepeatRequest() bool {
	return byte(e) == BusyRepeatRequest
}
