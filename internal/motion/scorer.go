//go:build opencv

// Package motion reduces a foreground mask to connected regions and a
// scalar motion score.
package motion

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Score finds the external-boundary connected regions of foreground pixels
// in mask and returns the sum of their enclosed areas together with the
// region boundaries. Regions nested inside others are not counted, so no
// area is double counted. A mask with no foreground pixels yields score 0
// and an empty region list.
//
// Score is a pure function of its input; the caller owns the returned
// PointsVector and must close it.
func Score(mask gocv.Mat) (float64, gocv.PointsVector) {
	regions := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)

	var total float64
	for i := 0; i < regions.Size(); i++ {
		total += gocv.ContourArea(regions.At(i))
	}
	return total, regions
}

// DrawRegions outlines the detected regions on frame for live display.
func DrawRegions(frame *gocv.Mat, regions gocv.PointsVector) {
	green := color.RGBA{G: 255}
	gocv.DrawContours(frame, regions, -1, green, 2)
}
