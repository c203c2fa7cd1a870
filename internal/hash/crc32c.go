package hash

import (
	"github.com/klauspost/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// Update extends crc, a checksum of the preceding bytes, with data.
// Update(0, data) equals CRC32C(data).
func Update(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, castagnoli, data)
}
