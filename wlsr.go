package l200geom

// WLSR (wavelength-shifting reflector) constants in mm. The barrel consists
// of a copper support shell, a Tetratex reflector and a thin TPB film.
const (
	wlsrHeight = 3000.0
	// wlsrZBelowTop is the barrel center below the top plate face.
	wlsrZBelowTop = 1410.0
)

// placeWLSR places the three nested WLSR shells into the argon volume.
func (b *builder) placeWLSR() error {
	_, _, z := ToCartesian(0, 0, -wlsrZBelowTop, topPlateZ)
	pos := Vector3{0, 0, z}

	outer := copperColor
	if err := b.place(PlacedVolume{
		Name:     "wlsr_outer",
		Position: pos,
		Assembly: AssemblyWLSR,
		Color:    &outer,
	}); err != nil {
		return err
	}

	ttx := RGBA{1, 1, 1, 1}
	if err := b.place(PlacedVolume{
		Name:     "wlsr_ttx",
		Position: pos,
		Assembly: AssemblyWLSR,
		Color:    &ttx,
	}); err != nil {
		return err
	}

	return b.place(PlacedVolume{
		Name:     "wlsr_tpb",
		Position: pos,
		Assembly: AssemblyWLSR,
	})
}
