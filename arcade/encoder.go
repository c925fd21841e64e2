package arcade

// PongInputs is the length of an encoded PongState.
const PongInputs = 6

// AppendPong appends the normalised encoding of s to dst:
// left paddle Y, right paddle Y, ball X, ball Y, ball velocity X and Y.
// Every value lies in [-1, 1].
func AppendPong(dst []float32, s PongState) []float32 {
	return append(dst,
		norm(s.LeftY, s.Height),
		norm(s.RightY, s.Height),
		norm(s.BallX, s.Width),
		norm(s.BallY, s.Height),
		ratio(s.BallVX, s.Speed),
		ratio(s.BallVY, s.Speed),
	)
}

// EncodePong returns the normalised encoding of s.
func EncodePong(s PongState) []float32 {
	return AppendPong(make([]float32, 0, PongInputs), s)
}

// norm maps v in [0, extent] to [-1, 1].
func norm(v, extent float64) float32 {
	if extent <= 0 {
		return 0
	}
	return clamp1(2*v/extent - 1)
}

// ratio maps v in [-scale, scale] to [-1, 1].
func ratio(v, scale float64) float32 {
	if scale <= 0 {
		return 0
	}
	return clamp1(v / scale)
}

func clamp1(v float64) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}

// PongInputLabels names the encoded inputs in order.
var PongInputLabels = []string{"Own Y", "Opp Y", "Ball X", "Ball Y", "Ball VX", "Ball VY"}

// PongActionLabels names the brain outputs in order.
var PongActionLabels = []string{"Up", "Stay", "Down"}
