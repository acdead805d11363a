package drawing

// heuristic scores placing the pixel sourced at srcPos onto the canvas
// position tgtPos. Lower is better. The score combines how far the
// source color is from the target color at that position (scaled by the
// position's weight) with how far the pixel has traveled from its home
// position (scaled by proximityImportance).
func heuristic(srcX, srcY, tgtX, tgtY int, srcCol, tgtCol [3]uint8, weight, proximityImportance int64) int64 {
	var colorDist int64
	for i := 0; i < 3; i++ {
		d := int64(srcCol[i]) - int64(tgtCol[i])
		colorDist += d * d
	}
	dx := int64(srcX - tgtX)
	dy := int64(srcY - tgtY)
	return colorDist*weight + (dx*dx+dy*dy)*proximityImportance
}
