package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/clock"
	"github.com/bbernstein/tidechart/internal/metrics"
	"github.com/bbernstein/tidechart/internal/models"
)

// ErrEncode wraps failures of the JPEG encoder
var ErrEncode = errors.New("encoding chart image")

type Renderer struct {
	style      ChartStyle
	font       *truetype.Font
	newSurface SurfaceFactory
	// displayClock positions the now marker and is never used for the data window
	displayClock clock.Clock
}

type RendererOption func(*Renderer)

func WithDisplayClock(c clock.Clock) RendererOption {
	return func(r *Renderer) {
		r.displayClock = c
	}
}

func WithSurfaceFactory(f SurfaceFactory) RendererOption {
	return func(r *Renderer) {
		r.newSurface = f
	}
}

// NewRenderer loads the style's font and returns a renderer
func NewRenderer(style ChartStyle, opts ...RendererOption) (*Renderer, error) {
	font, err := LoadFont(style.FontPath)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		style:        style,
		font:         font,
		newSurface:   NewRasterSurface,
		displayClock: clock.System{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render draws a day's predictions titled for location and encodes it as
// JPEG. A nil sequence means no data and yields a nil image without drawing.
// An empty sequence still yields a valid image with a flat curve.
func (r *Renderer) Render(predictions []models.Prediction, location, timezone string) (*models.RenderedImage, error) {
	if predictions == nil {
		return nil, nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}

	logger := log.With().
		Str("render_id", uuid.NewString()).
		Str("location", location).
		Logger()
	start := time.Now()

	surface, err := r.newSurface(r.style.Width, r.style.Height, r.font)
	if err != nil {
		return nil, err
	}

	layout := NewLayout(r.style, models.MaxLevel(predictions))
	logger.Debug().
		Int("samples", len(predictions)).
		Int("grid_lines", layout.Tier.LineCount).
		Int("step_feet", layout.Tier.StepFeet).
		Msg("Rendering tide chart")

	p := painter{
		style:   r.style,
		layout:  layout,
		surface: surface,
	}
	now := r.displayClock.Now().In(loc)
	if err := p.paint(predictions, "Tides at "+location, dateLabel(predictions, now, loc), clock.MinutesSinceMidnight(now, loc)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, surface.Image(), &jpeg.Options{Quality: r.style.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	elapsed := time.Since(start)
	metrics.ObserveRender(elapsed)
	logger.Info().
		Int("bytes", buf.Len()).
		Dur("elapsed", elapsed).
		Msg("Rendered tide chart")

	return &models.RenderedImage{
		Data:      buf.Bytes(),
		ImageType: models.ImageTypeJPEG,
	}, nil
}

// painter draws one chart; each step occludes the ones before it
type painter struct {
	style   ChartStyle
	layout  Layout
	surface Surface
}

func (p painter) paint(predictions []models.Prediction, title, date string, nowMinutes int) error {
	p.surface.BulkFill(p.style.Background)

	steps := []func() error{
		func() error { return p.title(title) },
		func() error { return p.date(date) },
		p.levelLabels,
		p.hourLabels,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	p.verticalGrid()
	p.horizontalGrid()
	p.surface.FillPolygon(p.layout.Curve(predictions), p.style.Tide)
	p.nowMarker(nowMinutes)
	return nil
}

func (p painter) title(title string) error {
	width := p.surface.MeasureText(title, p.style.TitleFontSize)
	x := (float64(p.style.Width) - width) / 2
	return p.surface.DrawText(title, x, p.style.TitleBaseline, p.style.TitleFontSize, p.style.Title)
}

func (p painter) date(date string) error {
	return p.surface.DrawText(date, p.style.DateX, p.style.TitleBaseline, p.style.LabelFontSize, p.style.Title)
}

func (p painter) levelLabels() error {
	for _, label := range p.layout.LevelLabels() {
		width := p.surface.MeasureText(label.Text, p.style.LabelFontSize)
		x := p.layout.Origin.X - p.style.LevelLabelGap - width
		if err := p.surface.DrawText(label.Text, x, label.At+p.style.LevelLabelDrop, p.style.LabelFontSize, p.style.Title); err != nil {
			return err
		}
	}
	return nil
}

func (p painter) hourLabels() error {
	y := p.layout.Origin.Y + p.style.HourLabelOffset
	for _, label := range p.layout.HourLabels() {
		width := p.surface.MeasureText(label.Text, p.style.LabelFontSize)
		if err := p.surface.DrawText(label.Text, label.At-width/2, y, p.style.LabelFontSize, p.style.Title); err != nil {
			return err
		}
	}
	return nil
}

func (p painter) verticalGrid() {
	l := p.layout
	for hour := 0; hour <= l.Hours; hour++ {
		x := l.HourX(hour)
		p.surface.StrokeLine(Point{X: x, Y: l.Origin.Y}, Point{X: x, Y: l.Top()}, p.style.Grid, p.style.RegularStroke)
	}
	for _, hour := range l.MajorHourLines() {
		x := l.HourX(hour)
		p.surface.StrokeLine(Point{X: x, Y: l.Origin.Y}, Point{X: x, Y: l.Top()}, p.style.MajorGrid, p.style.HeavyStroke)
	}
}

func (p painter) horizontalGrid() {
	l := p.layout
	for _, y := range l.MinorLevelLines() {
		p.surface.StrokeLine(Point{X: l.Origin.X, Y: y}, Point{X: l.Right(), Y: y}, p.style.Grid, p.style.RegularStroke)
	}
	zero := l.LevelY(0)
	p.surface.StrokeLine(Point{X: l.Origin.X, Y: zero}, Point{X: l.Right(), Y: zero}, p.style.MajorGrid, p.style.HeavyStroke)
}

func (p painter) nowMarker(minutes int) {
	x := p.layout.MinuteX(minutes)
	p.surface.StrokeLine(Point{X: x, Y: p.layout.Origin.Y}, Point{X: x, Y: p.layout.Top()}, p.style.NowMarker, p.style.HeavyStroke)
}

// dateLabel formats the day of the data, e.g. "Jan 2nd, 2006", falling back
// to the display date when there are no samples.
func dateLabel(predictions []models.Prediction, now time.Time, loc *time.Location) string {
	day := now
	if len(predictions) > 0 {
		if t, err := predictions[0].LocalTime(loc); err == nil {
			day = t
		} else {
			log.Warn().Err(err).Msg("Using display date for chart label")
		}
	}
	return fmt.Sprintf("%s %d%s, %d", day.Format("Jan"), day.Day(), ordinalSuffix(day.Day()), day.Year())
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
