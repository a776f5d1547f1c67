package game

const (
	DefaultPlayerHeightOffset  = 1.62
	SneakingPlayerHeightOffset = 1.27

	// Epsilon is the tolerance used when comparing geometric quantities.
	Epsilon = 1e-7
)
