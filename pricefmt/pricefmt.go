// Package pricefmt is the one conversion point between the wire's decimal
// price representation and the engine's internal int64 fixed-point
// representation.
package pricefmt

import (
	"fmt"

	"github.com/yanun0323/decimal"
)

// Codec converts decimal prices to/from fixed-point int64 at a configured
// number of decimal places (e.g. scale=2 means "10000" <-> "100.00").
type Codec struct {
	scale int32
	unit  decimal.Decimal
}

func NewCodec(scale int32) Codec {
	return Codec{scale: scale, unit: decimal.NewFromInt(1).Shift(int(scale))}
}

// ParseFixed parses a wire decimal string (e.g. "100.00") into the engine's
// int64 fixed-point representation.
func (c Codec) ParseFixed(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("pricefmt: invalid decimal %q: %w", s, err)
	}
	return d.Mul(c.unit).Round(0).IntPart(), nil
}

// FormatFixed renders a fixed-point int64 price back to a decimal string
// at the codec's configured scale, for outbound events.
func (c Codec) FormatFixed(fixed int64) string {
	return decimal.NewFromInt(fixed).Div(c.unit).StringFixed(int(c.scale))
}
