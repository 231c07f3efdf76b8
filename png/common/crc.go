package common

import "hash/crc32"

// Checksum returns the CRC-32 (IEEE 802.3, reflected) of b.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// chunkChecksum computes the CRC over type followed by data without
// concatenating the two slices.
func chunkChecksum(t ChunkType, data []byte) uint32 {
	crc := crc32.Update(0, crc32.IEEETable, t[:])
	return crc32.Update(crc, crc32.IEEETable, data)
}
