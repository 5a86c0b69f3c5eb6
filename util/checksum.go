package util

import "github.com/sigurn/crc16"

var xmodem = crc16.MakeTable(crc16.CRC16_XMODEM)

// HeaderChecksum returns the byte that makes control+length+checksum sum to 0xff.
func HeaderChecksum(control, length uint8) uint8 {
	return (control + length) ^ 0xff
}

func HeaderChecksumOk(control, length, sum uint8) bool {
	return control+length+sum == 0xff
}

// Crc16 is CRC-16/XMODEM (poly 0x1021, init 0, no reflection).
func Crc16(data []byte) uint16 {
	return crc16.Checksum(data, xmodem)
}
