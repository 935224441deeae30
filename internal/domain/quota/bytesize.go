package quota

import (
	"fmt"
	"math"
)

const bytesPerGB = 1073741824

// GBValue is a traffic volume expressed in gigabytes. Conversion from
// bytes rounds to two decimals exactly once, at construction; every
// comparison downstream operates on the rounded figure so a volume that
// displays as 100.00 also compares as 100.00.
type GBValue float64

// GBFromBytes converts a byte count into a rounded GBValue.
func GBFromBytes(b int64) GBValue {
	return RoundGB(float64(b) / float64(bytesPerGB))
}

// RoundGB rounds a raw gigabyte figure to two decimals.
func RoundGB(v float64) GBValue {
	return GBValue(math.Round(v*100) / 100)
}

// Float64 returns the rounded value as a plain float64.
func (g GBValue) Float64() float64 {
	return float64(g)
}

// String renders the value with two decimals.
func (g GBValue) String() string {
	return fmt.Sprintf("%.2f", float64(g))
}
