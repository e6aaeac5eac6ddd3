package uds

// UDS service ids (ISO 14229-1).
const (
	ServiceDiagnosticSessionControl   byte = 0x10
	ServiceECUReset                   byte = 0x11
	ServiceClearDiagnosticInformation byte = 0x14
	ServiceReadDTCInformation         byte = 0x19
	ServiceReadDataByIdentifier       byte = 0x22
	ServiceReadMemoryByAddress        byte = 0x23
	ServiceSecurityAccess             byte = 0x27
	ServiceCommunicationControl       byte = 0x28
	ServiceWriteDataByIdentifier      byte = 0x2E
	ServiceRoutineControl             byte = 0x31
	ServiceRequestDownload            byte = 0x34
	ServiceRequestUpload              byte = 0x35
	ServiceTransferData               byte = 0x36
	ServiceRequestTransferExit        byte = 0x37
	ServiceTesterPresent              byte = 0x3E
	ServiceControlDTCSetting          byte = 0x85
)

// ReadDTCInformation sub-functions used here.
const (
	reportNumberOfDTCByStatusMask byte = 0x01
	reportDTCByStatusMask         byte = 0x02
)

// ClearAllGroups is the reserved groupOfDTC mask meaning every group.
const ClearAllGroups uint32 = 0x00FFFFFF

// StatusMaskAll requests DTCs regardless of status bits.
const StatusMaskAll byte = 0xFF
