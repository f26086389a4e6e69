package ai

import (
	"fmt"
	"image"
	"image/color"
	"trafficsense/internal/models"

	"gocv.io/x/gocv"
)

const quitKey = 'q'

// PreviewWindow draws detections and the vehicle count on processed frames and shows them.
type PreviewWindow struct {
	window *gocv.Window
}

// NewPreviewWindow opens a display window with the given title.
func NewPreviewWindow(title string) *PreviewWindow {
	return &PreviewWindow{window: gocv.NewWindow(title)}
}

// Show annotates the frame in place and displays it. It reports true when the operator pressed q.
func (p *PreviewWindow) Show(frame models.Frame, detections []models.Detection, count int) (bool, error) {
	mf, ok := frame.(MatFrame)
	if !ok {
		return false, fmt.Errorf("frame %d does not carry a Mat", frame.Index())
	}
	mat := mf.Mat()

	red := color.RGBA{R: 255, G: 0, B: 0, A: 0}
	green := color.RGBA{R: 0, G: 255, B: 0, A: 0}

	for _, d := range detections {
		rect := image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
		if err := gocv.Rectangle(mat, rect, red, 2); err != nil {
			return false, fmt.Errorf("failed to draw rectangle: %v", err)
		}
		label := fmt.Sprintf("%s (%.2f)", d.Label, d.Confidence)
		if err := gocv.PutText(mat, label, image.Pt(d.X, d.Y-5), gocv.FontHersheySimplex, 0.5, red, 1); err != nil {
			return false, fmt.Errorf("failed to draw text: %v", err)
		}
	}

	caption := fmt.Sprintf("Vehicles: %d", count)
	if err := gocv.PutText(mat, caption, image.Pt(20, 40), gocv.FontHersheySimplex, 1.2, green, 3); err != nil {
		return false, fmt.Errorf("failed to draw caption: %v", err)
	}

	p.window.IMShow(*mat)
	return p.window.WaitKey(1)&0xFF == quitKey, nil
}

func (p *PreviewWindow) Close() error {
	return p.window.Close()
}
