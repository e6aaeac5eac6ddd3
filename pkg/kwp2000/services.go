package kwp2000

const (
	START_DIAGNOSTIC_SESSION = 0x10
	ECU_RESET                = 0x11
	READ_ECU_IDENTIFICATION  = 0x1A

	/* DATA TRANSMISSION FUNCTIONAL UNIT */
	READ_DATA_BY_LOCAL_IDENTIFIER       = 0x21
	READ_DATA_BY_COMMON_IDENTIFIER      = 0x22
	DYNAMICALLY_DEFINE_LOCAL_IDENTIFIER = 0x2C
	WRITE_DATA_BY_LOCAL_IDENTIFIER      = 0x3B
	WRITE_DATA_BY_COMMON_IDENTIFIER     = 0x2E

	/* STORED DATA TRANSMISSION FUNCTIONAL UNIT */
	READ_DIAGNOSTIC_TROUBLE_CODES           = 0x13
	READ_DIAGNOSTIC_TROUBLE_CODES_BY_STATUS = 0x18
	READ_STATUS_OF_DIAGNOSTIC_TROUBLE_CODES = 0x17
	CLEAR_DIAGNOSTIC_INFORMATION            = 0x14

	SECURITY_ACCESS = 0x27
	TESTER_PRESENT  = 0x3E

	START_COMMUNICATION      = 0x81
	STOP_COMMUNICATION       = 0x82
	ACCESS_TIMING_PARAMETERS = 0x83
)
