package consensushashing

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint8

// Hash type bits from the end of a signature.
const (
	SigHashAll          SigHashType = 0b00000001
	SigHashNone         SigHashType = 0b00000010
	SigHashSingle       SigHashType = 0b00000100
	SigHashAnyOneCanPay SigHashType = 0b10000000

	// SigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	SigHashMask = 0b00000111
)

// IsStandardSigHashType returns true if sht represents a standard SigHashType
func (sht SigHashType) IsStandardSigHashType() bool {
	switch sht {
	case SigHashAll, SigHashNone, SigHashSingle,
		SigHashAll | SigHashAnyOneCanPay, SigHashNone | SigHashAnyOneCanPay, SigHashSingle | SigHashAnyOneCanPay:
		return true
	default:
		return false
	}
}

func (sht SigHashType) isSigHashAll() bool {
	return sht&SigHashMask == SigHashAll
}

func (sht SigHashType) isSigHashNone() bool {
	return sht&SigHashMask == SigHashNone
}

func (sht SigHashType) isSigHashSingle() bool {
	return sht&SigHashMask == SigHashSingle
}

func (sht SigHashType) isSigHashAnyOneCanPay() bool {
	return sht&SigHashAnyOneCanPay == SigHashAnyOneCanPay
}

// String returns the name of the hash type, e.g. "ALL|ANYONECANPAY"
func (sht SigHashType) String() string {
	var name string
	switch {
	case sht.isSigHashAll():
		name = "ALL"
	case sht.isSigHashNone():
		name = "NONE"
	case sht.isSigHashSingle():
		name = "SINGLE"
	default:
		return "UNKNOWN"
	}
	if sht.isSigHashAnyOneCanPay() {
		name += "|ANYONECANPAY"
	}
	return name
}
