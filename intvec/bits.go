package intvec

// Entries are laid out as one little-endian bit stream: entry i occupies bits
// [i*w, (i+1)*w), and bit k lives in byte k/8 at position k%8. Each access
// touches only the bytes covering its field.

// span returns the byte range covering the field at bit offset bit.
func span(bit uint64, width uint) (first, n uint64) {
	first = bit / 8
	last := (bit + uint64(width) - 1) / 8
	return first, last - first + 1
}

// getBits extracts a width-bit field starting at bit shift of buf[0].
func getBits(buf []byte, shift, width uint) uint64 {
	var v uint64
	got := uint(0)
	for i := 0; got < width; i++ {
		v |= uint64(buf[i]>>shift) << got
		got += 8 - shift
		shift = 0
	}
	return v & mask(width)
}

// setBits stores the low width bits of v starting at bit shift of buf[0].
func setBits(buf []byte, shift, width uint, v uint64) {
	done := uint(0)
	for i := 0; done < width; i++ {
		n := min(8-shift, width-done)
		m := byte(uint(1)<<n-1) << shift
		buf[i] = buf[i]&^m | byte(v>>done)<<shift&m
		done += n
		shift = 0
	}
}

// clearBits zeroes bits [from, to) of buf.
func clearBits(buf []byte, from, to uint64) {
	for from < to && from%8 != 0 {
		buf[from/8] &^= 1 << (from % 8)
		from++
	}
	for from+8 <= to {
		buf[from/8] = 0
		from += 8
	}
	for from < to {
		buf[from/8] &^= 1 << (from % 8)
		from++
	}
}

// bytesFor returns the number of bytes holding n entries of width bits.
func bytesFor(n uint64, width uint) (uint64, bool) {
	if n == 0 {
		return 0, true
	}
	w := uint64(width)
	if n > (^uint64(0)-7)/w {
		return 0, false
	}
	return (n*w + 7) / 8, true
}
