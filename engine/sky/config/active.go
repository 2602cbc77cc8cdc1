package config

// ActiveLayers is the compacted list of enabled layers, in slot order.
// Items[i] came from slot Slots[i]; only the first Count entries are meaningful.
type ActiveLayers struct {
	Items [MaxLayers]AtmosphereLayer
	Slots [MaxLayers]int
	Count int
}

// ActiveLayers filters the enabled layers into a fixed-capacity list.
// Disabled layers never take a table slot.
func (c *Config) ActiveLayers() ActiveLayers {
	var a ActiveLayers
	for i := range c.Layers {
		if !c.Layers[i].Enabled {
			continue
		}
		a.Items[a.Count] = c.Layers[i]
		a.Slots[a.Count] = i
		a.Count++
	}
	return a
}

// ActiveBodies is the compacted list of enabled celestial bodies, in slot order.
type ActiveBodies struct {
	Items [MaxBodies]CelestialBody
	Slots [MaxBodies]int
	Count int
}

// ActiveBodies filters the enabled bodies into a fixed-capacity list.
func (c *Config) ActiveBodies() ActiveBodies {
	var a ActiveBodies
	for i := range c.Bodies {
		if !c.Bodies[i].Enabled {
			continue
		}
		a.Items[a.Count] = c.Bodies[i]
		a.Slots[a.Count] = i
		a.Count++
	}
	return a
}
