package pix

import "fmt"

// CRC16 computes CRC-16/CCITT-FALSE over the payload bytes: initial
// register 0xFFFF, polynomial 0x1021, MSB-first, no final XOR. This is
// the checksum the BR Code spec mandates for field 63 — it must match
// bit-for-bit or banking apps reject the code.
func CRC16(data string) string {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
