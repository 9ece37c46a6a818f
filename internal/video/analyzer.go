package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	pigo "github.com/esimov/pigo/core"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrNoFace means the frame carried no detectable face; the job fails
// without retrying, another attempt would see the same frame.
var ErrNoFace = errors.New("no face detected in frame")

// Features are what one analyzed frame yields. Nil color fields mean the
// region could not be measured. Colors are hex-encoded sRGB.
type Features struct {
	SkinColor *string `json:"skin_color"`
	EyeColor  *string `json:"eye_color"`
	HairColor *string `json:"hair_color"`
	Tattoos   bool    `json:"tattoos_detected"`
}

// Empty reports whether the frame yielded nothing usable.
func (f *Features) Empty() bool {
	return f.SkinColor == nil && f.EyeColor == nil && f.HairColor == nil && !f.Tattoos
}

// Analyzer extracts appearance features from a video file on disk.
type Analyzer interface {
	Analyze(ctx context.Context, videoPath string) (*Features, error)
}

// FaceAnalyzer grabs one frame with ffmpeg and measures face regions with a
// pigo cascade classifier.
type FaceAnalyzer struct {
	classifier *pigo.Pigo
}

// NewFaceAnalyzer loads and unpacks the detection cascade.
func NewFaceAnalyzer(cascadeFile string) (*FaceAnalyzer, error) {
	cascade, err := os.ReadFile(cascadeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}
	return &FaceAnalyzer{classifier: classifier}, nil
}

func (a *FaceAnalyzer) Analyze(ctx context.Context, videoPath string) (*Features, error) {
	frame, err := extractFrame(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	face, err := a.detectFace(frame)
	if err != nil {
		return nil, err
	}

	bounds := frame.Bounds()
	// Region geometry relative to the detected face square: skin from the
	// cheek area, eyes from the upper face band, hair from just above the
	// detection.
	half := face.Scale / 2
	faceRect := clampRect(image.Rect(face.Col-half, face.Row-half, face.Col+half, face.Row+half), bounds)
	skinRect := clampRect(insetRect(faceRect, face.Scale/4), bounds)
	eyeRect := clampRect(image.Rect(
		face.Col-face.Scale/4, face.Row-face.Scale/4,
		face.Col+face.Scale/4, face.Row,
	), bounds)
	hairRect := clampRect(image.Rect(
		face.Col-half, face.Row-half-face.Scale/4,
		face.Col+half, face.Row-half,
	), bounds)

	features := &Features{
		SkinColor: dominantColor(frame, skinRect),
		EyeColor:  dominantColor(frame, eyeRect),
		HairColor: dominantColor(frame, hairRect),
		// Body-region tattoo detection needs a separate model; the pipeline
		// records the field but never sets it.
		Tattoos: false,
	}
	return features, nil
}

// extractFrame pulls a single frame one second in, falling back to the very
// first frame for clips shorter than that.
func extractFrame(ctx context.Context, videoPath string) (image.Image, error) {
	frame, err := grabFrameAt(ctx, videoPath, "1")
	if err != nil {
		frame, err = grabFrameAt(ctx, videoPath, "0")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract frame: %w", err)
	}
	return frame, nil
}

func grabFrameAt(ctx context.Context, videoPath, offsetSeconds string) (image.Image, error) {
	var buf bytes.Buffer
	err := ffmpeg.Input(videoPath, ffmpeg.KwArgs{"ss": offsetSeconds}).
		Output("pipe:", ffmpeg.KwArgs{
			"vframes": 1,
			"format":  "image2",
			"vcodec":  "mjpeg",
		}).
		WithOutput(&buf).
		Silent(true).
		Run()
	if err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

// detectFace runs the cascade and returns the highest-confidence cluster.
func (a *FaceAnalyzer) detectFace(img image.Image) (*pigo.Detection, error) {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	pixels := grayscale(img)

	params := pigo.CascadeParams{
		MinSize:     60,
		MaxSize:     1000,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	detections := a.classifier.RunCascade(params, 0.0)
	detections = a.classifier.ClusterDetections(detections, 0.2)

	var best *pigo.Detection
	for i := range detections {
		if detections[i].Q < 5.0 {
			continue
		}
		if best == nil || detections[i].Q > best.Q {
			best = &detections[i]
		}
	}
	if best == nil {
		return nil, ErrNoFace
	}
	return best, nil
}

func grayscale(img image.Image) []uint8 {
	bounds := img.Bounds()
	pixels := make([]uint8, bounds.Dx()*bounds.Dy())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels[i] = uint8((299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000)
			i++
		}
	}
	return pixels
}

// dominantColor is the mean color of the region, hex-encoded. Nil when the
// region is degenerate after clamping.
func dominantColor(img image.Image, rect image.Rectangle) *string {
	if rect.Empty() {
		return nil
	}
	var rSum, gSum, bSum, n uint64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	hex := fmt.Sprintf("#%02x%02x%02x", rSum/n, gSum/n, bSum/n)
	return &hex
}

func clampRect(r image.Rectangle, bounds image.Rectangle) image.Rectangle {
	return r.Intersect(bounds)
}

func insetRect(r image.Rectangle, by int) image.Rectangle {
	return image.Rect(r.Min.X+by, r.Min.Y+by, r.Max.X-by, r.Max.Y-by)
}
