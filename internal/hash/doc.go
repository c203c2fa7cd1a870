// Package hash checksums snapshot images with CRC32-Castagnoli.
//
// Images are verified block by block as they are decoded:
//
//	var sum uint32
//	for _, block := range blocks {
//	    sum = hash.Update(sum, block)
//	}
//	ok := sum == hash.CRC32C(image)
package hash
