package wire

import "math"

func encodeDouble(f float64) uint64 { return math.Float64bits(f) }

func decodeDouble(v uint64) float64 { return math.Float64frombits(v) }
