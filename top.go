package l200geom

// topPlateThickness is the copper top plate thickness in mm.
const topPlateThickness = 3.0

// placeTopPlate places the copper array top plate. Its top face defines the
// internal z = 0 reference.
func (b *builder) placeTopPlate() error {
	color := RGBA{0.72, 0.45, 0.2, 0.2}
	x, y, z := ToCartesian(0, 0, -topPlateThickness/2, topPlateZ)
	return b.place(PlacedVolume{
		Name:     "top_plate",
		Position: Vector3{x, y, z},
		Assembly: AssemblyTop,
		Color:    &color,
	})
}
