package chart

import (
	"fmt"
	"image"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
)

// Surface is the drawing target for one render
type Surface interface {
	// BulkFill writes c into every pixel directly, bypassing path filling
	BulkFill(c drawing.Color)
	FillPolygon(points []Point, c drawing.Color)
	StrokeLine(from, to Point, c drawing.Color, width float64)
	// DrawText draws text with its left end of baseline at (x, y)
	DrawText(text string, x, y, size float64, c drawing.Color) error
	MeasureText(text string, size float64) float64
	Image() image.Image
}

// SurfaceFactory creates a blank surface of the given size
type SurfaceFactory func(width, height int, face *truetype.Font) (Surface, error)

// RasterSurface draws into an RGBA image with the go-chart raster context
type RasterSurface struct {
	img   *image.RGBA
	gc    *drawing.RasterGraphicContext
	font  *truetype.Font
	faces map[float64]font.Face
}

func NewRasterSurface(width, height int, f *truetype.Font) (Surface, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, fmt.Errorf("creating graphic context: %w", err)
	}
	// Font sizes are pixels.
	gc.SetDPI(72)
	gc.SetFont(f)

	return &RasterSurface{
		img:   img,
		gc:    gc,
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

func (s *RasterSurface) BulkFill(c drawing.Color) {
	pix := s.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

func (s *RasterSurface) FillPolygon(points []Point, c drawing.Color) {
	if len(points) == 0 {
		return
	}
	s.gc.SetFillColor(c)
	s.gc.BeginPath()
	s.gc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		s.gc.LineTo(p.X, p.Y)
	}
	s.gc.Close()
	s.gc.Fill()
}

func (s *RasterSurface) StrokeLine(from, to Point, c drawing.Color, width float64) {
	s.gc.SetStrokeColor(c)
	s.gc.SetLineWidth(width)
	s.gc.BeginPath()
	s.gc.MoveTo(from.X, from.Y)
	s.gc.LineTo(to.X, to.Y)
	s.gc.Stroke()
}

func (s *RasterSurface) DrawText(text string, x, y, size float64, c drawing.Color) error {
	s.gc.SetFillColor(c)
	s.gc.SetFontSize(size)
	if _, err := s.gc.FillStringAt(text, x, y); err != nil {
		return fmt.Errorf("drawing text %q: %w", text, err)
	}
	return nil
}

func (s *RasterSurface) MeasureText(text string, size float64) float64 {
	face, ok := s.faces[size]
	if !ok {
		face = truetype.NewFace(s.font, &truetype.Options{Size: size, DPI: 72})
		s.faces[size] = face
	}
	return float64(font.MeasureString(face, text).Round())
}

func (s *RasterSurface) Image() image.Image {
	return s.img
}
