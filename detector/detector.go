// Package detector wraps the Pigo face detection library behind the
// small call surface the demos need: face localization plus the two
// pupil positions used to anchor the effect over the face.
package detector

import (
	pigo "github.com/esimov/pigo/core"
)

// Detector struct contains Pigo face detector general settings.
type Detector struct {
	respThreshold float32
	shiftFactor   float64
	scaleFactor   float64
	iouThreshold  float64

	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade
}

// NewDetector initialises the constructor function.
func NewDetector() *Detector {
	return &Detector{
		respThreshold: 5.0,
		shiftFactor:   0.15,
		scaleFactor:   1.1,
		iouThreshold:  0.2,
	}
}

// UnpackCascades unpacks the face and pupil localization cascades
// fetched over the network by the caller.
func (d *Detector) UnpackCascades(faceCascade, puplocCascade []byte) error {
	p := pigo.NewPigo()

	classifier, err := p.Unpack(faceCascade)
	if err != nil {
		return err
	}
	d.classifier = classifier

	plc := pigo.NewPuplocCascade()
	puploc, err := plc.UnpackCascade(puplocCascade)
	if err != nil {
		return err
	}
	d.puploc = puploc

	return nil
}

// DetectFaces runs the cluster detection over the grayscale image data
// and returns the detections as {row, col, scale, q} tuples.
func (d *Detector) DetectFaces(pixels []uint8, rows, cols int) [][]int {
	imgParams := &pigo.ImageParams{
		Pixels: pixels,
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	cParams := pigo.CascadeParams{
		MinSize:     100,
		MaxSize:     600,
		ShiftFactor: d.shiftFactor,
		ScaleFactor: d.scaleFactor,
		ImageParams: *imgParams,
	}

	// Run the classifier over the obtained leaf nodes and return the
	// detection results. The result contains a quadruplet representing
	// the row, column, scale and detection score.
	dets := d.classifier.RunCascade(cParams, 0.0)

	// Calculate the intersection over union (IoU) of two clusters.
	dets = d.classifier.ClusterDetections(dets, d.iouThreshold)

	result := make([][]int, 0, len(dets))
	for _, det := range dets {
		if det.Q < d.respThreshold {
			continue
		}
		result = append(result, []int{det.Row, det.Col, det.Scale, int(det.Q)})
	}
	return result
}

// DetectLeftPupil detects the left pupil inside a face detection result.
func (d *Detector) DetectLeftPupil(det []int, pixels []uint8, rows, cols int) *pigo.Puploc {
	imgParams := pigo.ImageParams{
		Pixels: pixels,
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	puploc := &pigo.Puploc{
		Row:      det[0] - int(0.085*float32(det[2])),
		Col:      det[1] - int(0.185*float32(det[2])),
		Scale:    float32(det[2]) * 0.45,
		Perturbs: 63,
	}
	return d.puploc.RunDetector(*puploc, imgParams, 0.0, false)
}

// DetectRightPupil detects the right pupil inside a face detection result.
func (d *Detector) DetectRightPupil(det []int, pixels []uint8, rows, cols int) *pigo.Puploc {
	imgParams := pigo.ImageParams{
		Pixels: pixels,
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	puploc := &pigo.Puploc{
		Row:      det[0] - int(0.085*float32(det[2])),
		Col:      det[1] + int(0.185*float32(det[2])),
		Scale:    float32(det[2]) * 0.45,
		Perturbs: 63,
	}
	return d.puploc.RunDetector(*puploc, imgParams, 0.0, false)
}
