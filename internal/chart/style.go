package chart

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartStyle is every fixed dimension, color and font size used to paint a
// chart. Values are passed by copy into layout and paint code.
type ChartStyle struct {
	Width  int
	Height int

	// Chart origin offsets from the left and bottom edges of the image
	OriginLeft   float64
	OriginBottom float64

	Hours          int
	HourWidth      float64
	SamplesPerHour int

	TitleBaseline float64
	DateX         float64
	// Gap between the chart bottom and the hour label baseline
	HourLabelOffset float64
	// Gap between level labels and the chart's left edge
	LevelLabelGap float64
	// Shifts level labels down so they sit centred on their gridline
	LevelLabelDrop float64

	Background drawing.Color
	Title      drawing.Color
	Grid       drawing.Color
	MajorGrid  drawing.Color
	Tide       drawing.Color
	NowMarker  drawing.Color

	RegularStroke float64
	HeavyStroke   float64

	TitleFontSize float64
	LabelFontSize float64

	JPEGQuality int

	// TrueType font file; the embedded Roboto face is used when empty
	FontPath string
}

func DefaultChartStyle() ChartStyle {
	return ChartStyle{
		Width:           1920,
		Height:          1080,
		OriginLeft:      120,
		OriginBottom:    70,
		Hours:           24,
		HourWidth:       70,
		SamplesPerHour:  10,
		TitleBaseline:   80,
		DateX:           1520,
		HourLabelOffset: 50,
		LevelLabelGap:   20,
		LevelLabelDrop:  12,
		Background:      drawing.Color{R: 240, G: 240, B: 255, A: 255},
		Title:           drawing.Color{R: 0, G: 0, B: 150, A: 255},
		Grid:            drawing.Color{R: 150, G: 150, B: 150, A: 255},
		MajorGrid:       drawing.Color{R: 50, G: 50, B: 50, A: 255},
		Tide:            drawing.Color{R: 0, G: 100, B: 150, A: 178},
		NowMarker:       drawing.Color{R: 255, G: 0, B: 0, A: 178},
		RegularStroke:   2,
		HeavyStroke:     8,
		TitleFontSize:   60,
		LabelFontSize:   36,
		JPEGQuality:     80,
	}
}

// LoadFont reads a TrueType font from path, or returns the default face
// when path is empty.
func LoadFont(path string) (*truetype.Font, error) {
	if path == "" {
		font, err := gochart.GetDefaultFont()
		if err != nil {
			return nil, fmt.Errorf("loading default font: %w", err)
		}
		return font, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return font, nil
}
