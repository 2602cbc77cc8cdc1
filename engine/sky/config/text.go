package config

import (
	"fmt"
	"strconv"
)

// The enums marshal to their names in JSON. Unknown names decode to an out-of-range value
// that Validate later replaces with the default and reports.

func (d DensityDistribution) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DensityDistribution) UnmarshalText(b []byte) error {
	*d = DensityDistribution(parseEnum(string(b), []string{"exponential", "tent"}))
	return nil
}

func (p PhaseFunction) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PhaseFunction) UnmarshalText(b []byte) error {
	*p = PhaseFunction(parseEnum(string(b), []string{"isotropic", "rayleigh", "mie"}))
	return nil
}

func (k BodyKind) String() string {
	switch k {
	case BodySun:
		return "sun"
	case BodyMoon:
		return "moon"
	default:
		return fmt.Sprintf("body(%d)", uint32(k))
	}
}

func (k BodyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BodyKind) UnmarshalText(b []byte) error {
	*k = BodyKind(parseEnum(string(b), []string{"sun", "moon"}))
	return nil
}

// parseEnum accepts a name from names or a plain integer.
func parseEnum(s string, names []string) uint32 {
	for i, n := range names {
		if n == s {
			return uint32(i)
		}
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v)
	}
	return uint32(len(names))
}
