package perception

import "image"

// CountDark counts pixels in r (clipped to img) whose intensity is at or
// below threshold.
func CountDark(img *image.Gray, r image.Rectangle, threshold uint8) int {
	r = r.Intersect(img.Bounds())
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):]
		for _, v := range row[:r.Dx()] {
			if v <= threshold {
				n++
			}
		}
	}
	return n
}

// Crop returns the part of img inside r, sharing pixels with img.
func Crop(img *image.Gray, r image.Rectangle) *image.Gray {
	return img.SubImage(r.Intersect(img.Bounds())).(*image.Gray)
}
