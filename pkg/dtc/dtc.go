package dtc

import (
	"fmt"
	"strings"
)

// DTC is one stored fault record as reported by an ECU.
type DTC struct {
	Code   string
	Raw    uint32
	Status byte
}

func (d DTC) String() string {
	return d.Code
}

func (d DTC) StatusString() string {
	return StatusByteToString(d.Status)
}

var (
	systemChars = [4]byte{'P', 'C', 'B', 'U'}
	secondDigit = [4]byte{'0', '1', '2', '3'}
	hexDigits   = "0123456789ABCDEF"
)

// Decode2 renders a 2-byte DTC value as a SAE J2012 code like "P0122" or
// "U2103". Returns "" when both bytes are zero ("no code").
func Decode2(a, b byte) string {
	if a == 0 && b == 0 {
		return ""
	}
	code := make([]byte, 5)
	code[0] = systemChars[(a>>6)&0x03]
	code[1] = secondDigit[(a>>4)&0x03]
	code[2] = hexDigits[a&0x0F]
	code[3] = hexDigits[(b>>4)&0x0F]
	code[4] = hexDigits[b&0x0F]
	return string(code)
}

// Decode3 renders a 3-byte DTC value: the first two bytes are the J2012
// code, the third is the failure type byte and is appended when non-zero.
func Decode3(hi, mid, lo byte) string {
	base := Decode2(hi, mid)
	if base == "" || lo == 0 {
		return base
	}
	return fmt.Sprintf("%s-%02X", base, lo)
}

/*
DTC Status Byte
bit #	hex		state								description
0		0x01	testFailed							DTC failed at the time of the request
1		0x02	testFailedThisOperationCycle		DTC failed on the current operation cycle
2		0x04	pendingDTC							DTC failed on the current or previous operation cycle
3		0x08	confirmedDTC						DTC is confirmed at the time of the request
4		0x10	testNotCompletedSinceLastClear		DTC test not completed since the last code clear
5		0x20	testFailedSinceLastClear			DTC test failed at least once since last code clear
6		0x40	testNotCompletedThisOperationCycle	DTC test not completed this operation cycle
7		0x80	warningIndicatorRequested			Server is requesting warningIndicator to be active
*/
func StatusByteToString(status byte) string {
	var statusStrings []string
	if status&0x80 != 0 {
		statusStrings = append(statusStrings, "CEL illuminated")
	}
	if status&0x40 != 0 {
		statusStrings = append(statusStrings, "test not completed this operation cycle")
	}
	if status&0x20 != 0 {
		statusStrings = append(statusStrings, "test failed at least once since last code clear")
	}
	if status&0x10 != 0 {
		statusStrings = append(statusStrings, "test not completed since the last code clear")
	}
	if status&0x08 != 0 {
		statusStrings = append(statusStrings, "confirmed at the time of the request")
	}
	if status&0x04 != 0 {
		statusStrings = append(statusStrings, "failed on the current or previous operation cycle")
	}
	if status&0x02 != 0 {
		statusStrings = append(statusStrings, "failed on the current operation cycle")
	}
	if status&0x01 != 0 {
		statusStrings = append(statusStrings, "failed at the time of the request")
	}
	return strings.Join(statusStrings, ", ")
}
