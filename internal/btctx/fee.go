package btctx

// txOverheadVBytes, p2wpkhInputVBytes, and outputVBytes approximate a
// P2WPKH transaction's virtual size: 10 of fixed overhead, 68 per input,
// 31 per output.
const (
	txOverheadVBytes  = 10
	p2wpkhInputVBytes = 68
	outputVBytes      = 31
)

// EstimateP2WPKHVsize estimates the virtual size, in vbytes, of a transaction
// with nInputs P2WPKH inputs and nOutputs outputs.
func EstimateP2WPKHVsize(nInputs, nOutputs int) int {
	return txOverheadVBytes + p2wpkhInputVBytes*nInputs + outputVBytes*nOutputs
}

// EstimateFee estimates the fee, in satoshis, for a transaction of the given
// shape at feeRateSatPerVByte, rounding up to ensure the fee always covers
// the requested rate.
func EstimateFee(nInputs, nOutputs int, feeRateSatPerVByte float64) int64 {
	vsize := EstimateP2WPKHVsize(nInputs, nOutputs)
	fee := float64(vsize) * feeRateSatPerVByte
	return int64(fee) + boolToInt(fee != float64(int64(fee)))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
