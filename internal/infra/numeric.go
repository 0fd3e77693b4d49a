package infra

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToFloat converts a nullable PostgreSQL numeric (money, measurements,
// contract years) to an optional float64. NULL maps to nil.
func NumericToFloat(n pgtype.Numeric) (*float64, error) {
	if !n.Valid {
		return nil, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return nil, fmt.Errorf("numeric value is not finite")
	}

	f8, err := n.Float64Value()
	if err != nil {
		return nil, fmt.Errorf("convert numeric: %w", err)
	}
	v := f8.Float64
	return &v, nil
}

// FloatToNumeric converts an optional float64 to pgtype.Numeric. nil maps to
// NULL. The value is encoded from its shortest decimal representation so
// 0.1 is stored as 0.1, not as its binary approximation.
func FloatToNumeric(v *float64) pgtype.Numeric {
	if v == nil {
		return pgtype.Numeric{Valid: false}
	}

	s := strconv.FormatFloat(*v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	digits, ok := new(big.Int).SetString(intPart+frac, 10)
	if !ok {
		return pgtype.Numeric{Valid: false}
	}
	return pgtype.Numeric{
		Int:              digits,
		Exp:              -int32(len(frac)),
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
