package resource

import "github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"

// PoolBuilderOption is a functional option for configuring a Pool.
type PoolBuilderOption func(*pool)

// WithLabelPrefix sets the prefix of every table label, "sky." by default.
//
// Parameters:
//   - prefix: the label prefix
//
// Returns:
//   - PoolBuilderOption: a function that applies the prefix to a pool
func WithLabelPrefix(prefix string) PoolBuilderOption {
	return func(p *pool) {
		p.labelPrefix = prefix
	}
}

// WithTableFormat sets the texel format of the scattering tables. The transmittance table is
// always full float because it is read back to the CPU.
//
// Parameters:
//   - format: the texel format
//
// Returns:
//   - PoolBuilderOption: a function that applies the format to a pool
func WithTableFormat(format gpu.Format) PoolBuilderOption {
	return func(p *pool) {
		p.tableFormat = format
	}
}
