package gpu

// Kernel entry point names understood by the compute collaborator.
const (
	KernelTransmittance         = "T"
	KernelGroundIrradiance      = "GI"
	KernelLightPollution        = "LP"
	KernelSingleScattering      = "SS"
	KernelAerialPerspective     = "SSAerialPerspective"
	KernelMultipleScattering    = "MS"
	KernelMultipleScatteringAcc = "MSAcc"
	KernelStars                 = "STAR"
	KernelNebulae               = "NEBULAE"
)

// Table slot names. Kernels bind tables by slot and render passes look them up by the same name
// in the PropertyBlock.
const (
	SlotTransmittance            = "transmittance"
	SlotMultipleScattering       = "multipleScattering"
	SlotSingleScattering         = "singleScattering"
	SlotSingleScatteringNoShadow = "singleScatteringNoShadow"
	SlotMSAccumulation           = "msAccumulation"
	SlotGroundIrradiance         = "groundIrradiance"
	SlotLightPollution           = "lightPollution"
	SlotAerialPerspective        = "aerialPerspective"
	SlotStars                    = "stars"
	SlotNebulae                  = "nebulae"
)

// KernelSlots documents the fixed set of table slots each kernel binds, inputs first.
// Backends use it to build bind group entries, the precompute stage table must agree with it.
var KernelSlots = map[string][]string{
	KernelTransmittance:         {SlotTransmittance},
	KernelGroundIrradiance:      {SlotTransmittance, SlotGroundIrradiance},
	KernelLightPollution:        {SlotTransmittance, SlotLightPollution},
	KernelSingleScattering:      {SlotTransmittance, SlotSingleScattering, SlotSingleScatteringNoShadow},
	KernelAerialPerspective:     {SlotTransmittance, SlotAerialPerspective},
	KernelMultipleScattering:    {SlotTransmittance, SlotMultipleScattering},
	KernelMultipleScatteringAcc: {SlotMultipleScattering, SlotSingleScattering, SlotMSAccumulation},
	KernelStars:                 {SlotStars},
	KernelNebulae:               {SlotNebulae},
}

// TileSize is the work-group edge length every kernel is compiled with.
const TileSize = 8

// DispatchGrid divides a table extent by TileSize in each dimension, rounding up.
// Zero extents produce a zero group count in that dimension.
//
// Parameters:
//   - extent: width, height and depth (or layer count) of the written table
//
// Returns:
//   - [3]uint32: the work-group grid
func DispatchGrid(extent [3]uint32) [3]uint32 {
	var groups [3]uint32
	for i, e := range extent {
		groups[i] = (e + TileSize - 1) / TileSize
	}
	return groups
}

// Access describes how a kernel touches a bound table.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
)

// Binding attaches a table to a named kernel slot.
type Binding struct {
	Slot   string
	Table  Table
	Access Access
}

// DispatchCommand is a single compute dispatch.
type DispatchCommand struct {
	// Kernel is one of the Kernel* entry point names.
	Kernel string
	// Label names the stage for debugging, e.g. "SSAerialPerspective/LOD1".
	Label    string
	Bindings []Binding
	// Uniforms is the raw uniform block handed to the kernel.
	Uniforms []byte
	Groups   [3]uint32
}

// Binding returns the table bound to slot, or nil.
func (c DispatchCommand) Binding(slot string) Table {
	for _, b := range c.Bindings {
		if b.Slot == slot {
			return b.Table
		}
	}
	return nil
}
