package kwp2000

import (
	"fmt"
)

const (
	GENERAL_REJECT                                     = 0x10
	SERVICE_NOT_SUPPORTED                              = 0x11
	SUBFUNCTION_NOT_SUPPORTED_OR_INVALID_FORMAT        = 0x12
	BUSY_REPEAT_REQUEST                                = 0x21
	CONDITIONS_NOT_CORRECT_OR_REQUEST_SEQUENCE_ERROR   = 0x22
	ROUTINE_NOT_COMPLETE_OR_SERVICE_IN_PROGRESS        = 0x23
	REQUEST_OUT_OF_RANGE                               = 0x31
	SECURITY_ACCESS_DENIED_OR_REQUESTED                = 0x33
	INVALID_KEY                                        = 0x35
	EXCEED_NUMBER_OF_ATTEMPTS                          = 0x36
	REQUIRED_TIME_DELAY_NOT_EXPIRED                    = 0x37
	DOWNLOAD_NOT_ACCEPTED                              = 0x40
	IMPROPER_DOWNLOAD_TYPE                             = 0x41
	CANNOT_DOWNLOAD_TO_SPECIFIED_ADDRESS               = 0x42
	CANNOT_DOWNLOAD_NUMBER_OF_BYTES_REQUESTED          = 0x43
	UPLOAD_NOT_ACCEPTED                                = 0x50
	IMPROPER_UPLOAD_TYPE                               = 0x51
	CANNOT_UPLOAD_FROM_SPECIFIED_ADDRESS               = 0x52
	CANNOT_UPLOAD_NUMBER_OF_BYTES_REQUESTED            = 0x53
	TRANSFER_SUSPENDED                                 = 0x71
	TRANSFER_ABORTED                                   = 0x72
	ILLEGAL_ADDRESS_IN_BLOCK_TRANSFER                  = 0x74
	ILLEGAL_BYTE_COUNT_IN_BLOCK_TRANSFER               = 0x75
	ILLEGAL_BLOCK_TRANSFER_TYPE                        = 0x76
	BLOCK_TRANSFER_DATA_CHECKSUM_ERROR                 = 0x77
	REQUEST_CORRECTLY_RECEIVED_RESPONSE_PENDING        = 0x78
	INCORRECT_BYTE_COUNT_DURING_BLOCK_TRANSFER         = 0x79
	SERVICE_NOT_SUPPORTED_IN_ACTIVE_DIAGNOSTIC_SESSION = 0x80
)

var descriptions = map[byte]string{
	GENERAL_REJECT:                                     "General reject",
	SERVICE_NOT_SUPPORTED:                              "Service not supported",
	SUBFUNCTION_NOT_SUPPORTED_OR_INVALID_FORMAT:        "Sub-function not supported or invalid format",
	BUSY_REPEAT_REQUEST:                                "Busy, repeat request",
	CONDITIONS_NOT_CORRECT_OR_REQUEST_SEQUENCE_ERROR:   "Conditions not correct or request sequence error",
	ROUTINE_NOT_COMPLETE_OR_SERVICE_IN_PROGRESS:        "Routine not completed or service in progress",
	REQUEST_OUT_OF_RANGE:                               "Request out of range or session dropped",
	SECURITY_ACCESS_DENIED_OR_REQUESTED:                "Security access denied",
	INVALID_KEY:                                        "Invalid key supplied",
	EXCEED_NUMBER_OF_ATTEMPTS:                          "Exceeded number of attempts to get security access",
	REQUIRED_TIME_DELAY_NOT_EXPIRED:                    "Required time delay not expired",
	DOWNLOAD_NOT_ACCEPTED:                              "Download (PC -> ECU) not accepted",
	IMPROPER_DOWNLOAD_TYPE:                             "Improper download (PC -> ECU) type",
	CANNOT_DOWNLOAD_TO_SPECIFIED_ADDRESS:               "Unable to download (PC -> ECU) to specified address",
	CANNOT_DOWNLOAD_NUMBER_OF_BYTES_REQUESTED:          "Unable to download (PC -> ECU) number of bytes requested",
	UPLOAD_NOT_ACCEPTED:                                "Upload (ECU -> PC) not accepted",
	IMPROPER_UPLOAD_TYPE:                               "Improper upload (ECU -> PC) type",
	CANNOT_UPLOAD_FROM_SPECIFIED_ADDRESS:               "Unable to upload (ECU -> PC) for specified address",
	CANNOT_UPLOAD_NUMBER_OF_BYTES_REQUESTED:            "Unable to upload (ECU -> PC) number of bytes requested",
	TRANSFER_SUSPENDED:                                 "Transfer suspended",
	TRANSFER_ABORTED:                                   "Transfer aborted",
	ILLEGAL_ADDRESS_IN_BLOCK_TRANSFER:                  "Illegal address in block transfer",
	ILLEGAL_BYTE_COUNT_IN_BLOCK_TRANSFER:               "Illegal byte count in block transfer",
	ILLEGAL_BLOCK_TRANSFER_TYPE:                        "Illegal block transfer type",
	BLOCK_TRANSFER_DATA_CHECKSUM_ERROR:                 "Block transfer data checksum error",
	REQUEST_CORRECTLY_RECEIVED_RESPONSE_PENDING:        "Response pending",
	INCORRECT_BYTE_COUNT_DURING_BLOCK_TRANSFER:         "Incorrect byte count during block transfer",
	SERVICE_NOT_SUPPORTED_IN_ACTIVE_DIAGNOSTIC_SESSION: "Service not supported in current diagnostics session",
}

// ErrorByte classifies a KWP2000 negative response code. Codes outside the
// ISO 14230 table describe themselves as unknown and never drive retry
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
	return byte(e) == REQUEST_CORRECTLY_RECEIVED_RESPONSE_PENDING
}

func (e ErrorByte) IsWrongMode() bool {
	return byte(e) == SERVICE_NOT_SUPPORTED_IN_ACTIVE_DIAGNOSTIC_SESSION
}

func (e ErrorByte) IsRepeatRequest() bool {
	return byte(e) == BUSY_REPEAT_REQUEST
}
