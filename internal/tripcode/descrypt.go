package tripcode

// Classic crypt(3) one-way hashing: 25 rounds of salt-perturbed DES over a
// zero block, keyed by the low 7 bits of the first 8 secret bytes. Output is
// the 2-character salt followed by 11 characters of radix-64.
//
// Tables are the published FIPS 46-3 constants.

var initialPermutation = [64]int{
	58, 50, 42, 34, 26, 18, 10, 2,
	60, 52, 44, 36, 28, 20, 12, 4,
	62, 54, 46, 38, 30, 22, 14, 6,
	64, 56, 48, 40, 32, 24, 16, 8,
	57, 49, 41, 33, 25, 17, 9, 1,
	59, 51, 43, 35, 27, 19, 11, 3,
	61, 53, 45, 37, 29, 21, 13, 5,
	63, 55, 47, 39, 31, 23, 15, 7,
}

var finalPermutation = [64]int{
	40, 8, 48, 16, 56, 24, 64, 32,
	39, 7, 47, 15, 55, 23, 63, 31,
	38, 6, 46, 14, 54, 22, 62, 30,
	37, 5, 45, 13, 53, 21, 61, 29,
	36, 4, 44, 12, 52, 20, 60, 28,
	35, 3, 43, 11, 51, 19, 59, 27,
	34, 2, 42, 10, 50, 18, 58, 26,
	33, 1, 41, 9, 49, 17, 57, 25,
}

var expansion = [48]int{
	32, 1, 2, 3, 4, 5,
	4, 5, 6, 7, 8, 9,
	8, 9, 10, 11, 12, 13,
	12, 13, 14, 15, 16, 17,
	16, 17, 18, 19, 20, 21,
	20, 21, 22, 23, 24, 25,
	24, 25, 26, 27, 28, 29,
	28, 29, 30, 31, 32, 1,
}

var pbox = [32]int{
	16, 7, 20, 21, 29, 12, 28, 17,
	1, 15, 23, 26, 5, 18, 31, 10,
	2, 8, 24, 14, 32, 27, 3, 9,
	19, 13, 30, 6, 22, 11, 4, 25,
}

var permutedChoice1 = [56]int{
	57, 49, 41, 33, 25, 17, 9,
	1, 58, 50, 42, 34, 26, 18,
	10, 2, 59, 51, 43, 35, 27,
	19, 11, 3, 60, 52, 44, 36,
	63, 55, 47, 39, 31, 23, 15,
	7, 62, 54, 46, 38, 30, 22,
	14, 6, 61, 53, 45, 37, 29,
	21, 13, 5, 28, 20, 12, 4,
}

var permutedChoice2 = [48]int{
	14, 17, 11, 24, 1, 5,
	3, 28, 15, 6, 21, 10,
	23, 19, 12, 4, 26, 8,
	16, 7, 27, 20, 13, 2,
	41, 52, 31, 37, 47, 55,
	30, 40, 51, 45, 33, 48,
	44, 49, 39, 56, 34, 53,
	46, 42, 50, 36, 29, 32,
}

var keyShifts = [16]int{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}

var sboxes = [8][64]byte{
	{
		14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7,
		0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8,
		4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0,
		15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13,
	},
	{
		15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10,
		3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5,
		0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15,
		13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9,
	},
	{
		10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8,
		13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1,
		13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7,
		1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12,
	},
	{
		7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15,
		13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9,
		10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4,
		3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14,
	},
	{
		2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9,
		14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6,
		4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14,
		11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3,
	},
	{
		12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11,
		10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8,
		9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6,
		4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13,
	},
	{
		4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1,
		13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6,
		1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2,
		6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12,
	},
	{
		13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7,
		1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2,
		7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8,
		2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11,
	},
}

const radix64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func saltValue(c byte) uint32 {
	for i := 0; i < len(radix64); i++ {
		if radix64[i] == c {
			return uint32(i)
		}
	}
	return 0
}

// permute maps src (srcBits wide, bit 1 = MSB) through table.
func permute(src uint64, srcBits int, table []int) uint64 {
	var out uint64
	for _, b := range table {
		out = out<<1 | (src>>(srcBits-b))&1
	}
	return out
}

// keySchedule derives the 16 48-bit round keys from the 8 secret bytes.
func keySchedule(secret []byte) [16]uint64 {
	var key uint64
	for i := 0; i < 8; i++ {
		var b byte
		if i < len(secret) {
			b = secret[i] << 1 // low 7 bits, parity position ignored by PC1
		}
		key = key<<8 | uint64(b)
	}

	cd := permute(key, 64, permutedChoice1[:])
	c := uint32(cd >> 28)
	d := uint32(cd & 0x0FFFFFFF)

	var subkeys [16]uint64
	for round := 0; round < 16; round++ {
		for s := 0; s < keyShifts[round]; s++ {
			c = (c<<1 | c>>27) & 0x0FFFFFFF
			d = (d<<1 | d>>27) & 0x0FFFFFFF
		}
		subkeys[round] = permute(uint64(c)<<28|uint64(d), 56, permutedChoice2[:])
	}
	return subkeys
}

// feistel is the DES round function with the crypt salt perturbation: for
// every set salt bit i (i < 12), expanded bits i and i+24 are swapped. The
// expansion numbers its output from the first bit, which sits at the MSB
// here, so E-bit i is value bit 47-i.
func feistel(r uint32, subkey uint64, salt uint32) uint32 {
	e := permute(uint64(r), 32, expansion[:])

	for i := 0; i < 12; i++ {
		if salt>>uint(i)&1 == 1 {
			a := e >> uint(47-i) & 1
			b := e >> uint(23-i) & 1
			if a != b {
				e ^= 1<<uint(47-i) | 1<<uint(23-i)
			}
		}
	}

	e ^= subkey

	var sout uint32
	for i := 0; i < 8; i++ {
		six := byte(e >> uint(42-6*i) & 0x3F)
		row := (six&0x20)>>4 | six&1
		col := six >> 1 & 0x0F
		sout = sout<<4 | uint32(sboxes[i][row<<4|col])
	}

	return uint32(permute(uint64(sout), 32, pbox[:]))
}

// Crypt hashes secret with a two-byte salt, returning the 13-character
// crypt(3) string. Salt bytes outside the radix-64 alphabet count as '.'.
func Crypt(secret []byte, salt [2]byte) string {
	subkeys := keySchedule(secret)
	saltBits := saltValue(salt[0]) | saltValue(salt[1])<<6

	var block uint64
	for iter := 0; iter < 25; iter++ {
		block = permute(block, 64, initialPermutation[:])
		l := uint32(block >> 32)
		r := uint32(block)
		for round := 0; round < 16; round++ {
			l, r = r, l^feistel(r, subkeys[round], saltBits)
		}
		// undo the final swap
		block = permute(uint64(r)<<32|uint64(l), 64, finalPermutation[:])
	}

	out := make([]byte, 13)
	out[0] = salt[0]
	out[1] = salt[1]
	for i := 0; i < 10; i++ {
		out[2+i] = radix64[block>>uint(58-6*i)&0x3F]
	}
	// the last group carries only 4 bits
	out[12] = radix64[block<<2&0x3C]
	return string(out)
}
