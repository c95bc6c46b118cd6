package utils

import (
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses the exchange's string representation of a number
// without going through binary floating point.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("fail to parse decimal: %q: %v", s, err)
	}
	return d, nil
}

// ParseDecimalOrZero parses s, treating empty or absent values as zero.
func ParseDecimalOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return ParseDecimal(s)
}

func HexToBytes(val string) ([]byte, error) {
	if len(val) > 2 && val[:2] == "0x" {
		val = val[2:]
	}
	bytes, err := hex.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("fail to parse hex to bytes: %v", val)
	}
	return bytes, nil
}

func SignatureToVRS(sig []byte) (byte, [32]byte, [32]byte) {
	var v byte
	var r [32]byte
	var s [32]byte

	v = sig[64] + 27
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])

	return v, r, s
}
