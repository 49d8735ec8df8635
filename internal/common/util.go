package common

// WipeByteArray zeroes b in place. Used on passwords once they are sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
