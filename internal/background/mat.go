package background

import (
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// forStripes runs fn over horizontal row ranges in parallel.
func forStripes(height int, fn func(yStart, yEnd int)) {
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := min(startY+rowsPerWorker, height)
		if startY >= height {
			break
		}
		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			fn(yStart, yEnd)
		}(startY, endY)
	}
	wg.Wait()
}

// rgbaToMat converts straight-alpha RGBA pixels to a 4-channel BGRA Mat.
func rgbaToMat(img *image.NRGBA) gocv.Mat {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC4)

	forStripes(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+4]
				// OpenCV uses BGR order
				mat.SetUCharAt(y, x*4+0, p[2])
				mat.SetUCharAt(y, x*4+1, p[1])
				mat.SetUCharAt(y, x*4+2, p[0])
				mat.SetUCharAt(y, x*4+3, p[3])
			}
		}
	})
	return mat
}

// matToNRGBA converts a BGRA Mat back to straight-alpha RGBA pixels.
func matToNRGBA(mat gocv.Mat) *image.NRGBA {
	h, w := mat.Rows(), mat.Cols()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	forStripes(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+4]
				p[0] = mat.GetUCharAt(y, x*4+2)
				p[1] = mat.GetUCharAt(y, x*4+1)
				p[2] = mat.GetUCharAt(y, x*4+0)
				p[3] = mat.GetUCharAt(y, x*4+3)
			}
		}
	})
	return img
}
