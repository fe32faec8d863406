package rkc

// ComputeBCC returns the Block Check Character for the given bytes: the
// left-fold exclusive-OR starting from zero.
//
// The BCC of a frame covers every byte after STX through ETX inclusive, so
// callers pass that span (STX itself and the trailing BCC byte excluded).
func ComputeBCC(data []byte) byte {
	var bcc byte
	for _, b := range data {
		bcc ^= b
	}

	return bcc
}

// VerifyBCC reports whether the received BCC matches the computed value
// for data.
func VerifyBCC(data []byte, bcc byte) bool {
	return ComputeBCC(data) == bcc
}
