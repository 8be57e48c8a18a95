package chart

import (
	"math"
	"strconv"

	"github.com/bbernstein/tidechart/internal/models"
)

// Tier is a fixed vertical grid configuration. LineCount * Spacing is the
// same for every tier so the plot keeps its height as tides grow.
type Tier struct {
	LineCount int
	Spacing   float64
	StepFeet  int
}

var tiers = []struct {
	upTo float64
	tier Tier
}{
	{upTo: 6, tier: Tier{LineCount: 7, Spacing: 128, StepFeet: 1}},
	{upTo: 12, tier: Tier{LineCount: 14, Spacing: 64, StepFeet: 2}},
	{upTo: math.Inf(1), tier: Tier{LineCount: 28, Spacing: 32, StepFeet: 4}},
}

// SelectTier picks the grid tier for the highest level in feet
func SelectTier(maxLevel float64) Tier {
	for _, t := range tiers {
		if maxLevel <= t.upTo {
			return t.tier
		}
	}
	return tiers[len(tiers)-1].tier
}

type Point struct {
	X, Y float64
}

// Layout is the geometry of one render. The chart origin is the bottom-left
// of the plot, one grid unit below 0 ft so small negative tides stay visible.
type Layout struct {
	Origin          Point
	Tier            Tier
	ChartWidth      float64
	ChartHeight     float64
	PixelsPerFoot   float64
	PixelsPerHour   float64
	PixelsPerSample float64
	Hours           int
}

func NewLayout(style ChartStyle, maxLevel float64) Layout {
	tier := SelectTier(math.Max(maxLevel, 0))
	return Layout{
		Origin: Point{
			X: style.OriginLeft,
			Y: float64(style.Height) - style.OriginBottom,
		},
		Tier:            tier,
		ChartWidth:      float64(style.Hours) * style.HourWidth,
		ChartHeight:     float64(tier.LineCount) * tier.Spacing,
		PixelsPerFoot:   tier.Spacing,
		PixelsPerHour:   style.HourWidth,
		PixelsPerSample: style.HourWidth / float64(style.SamplesPerHour),
		Hours:           style.Hours,
	}
}

// Top is the y of the highest gridline
func (l Layout) Top() float64 {
	return l.Origin.Y - l.ChartHeight
}

// Right is the x of the last hour gridline
func (l Layout) Right() float64 {
	return l.Origin.X + l.ChartWidth
}

// LevelY maps a level in feet to a y coordinate, clamped to the plot
func (l Layout) LevelY(level float64) float64 {
	y := l.Origin.Y - (level+1)*l.PixelsPerFoot
	return math.Min(math.Max(y, l.Top()), l.Origin.Y)
}

// SampleX maps a sample index to an x coordinate
func (l Layout) SampleX(i int) float64 {
	return l.Origin.X + float64(i)*l.PixelsPerSample
}

// HourX maps an hour of the day to an x coordinate
func (l Layout) HourX(hour int) float64 {
	return l.Origin.X + float64(hour)*l.PixelsPerHour
}

// MinuteX maps minutes since local midnight to an x coordinate
func (l Layout) MinuteX(minutes int) float64 {
	return l.Origin.X + float64(minutes)*l.PixelsPerHour/60
}

// Curve is the closed outline of the tide area: up from the origin, along
// the samples, one sample further at the last level, then down to the
// bottom-right corner. Samples past the chart width (long DST days) are
// dropped.
func (l Layout) Curve(predictions []models.Prediction) []Point {
	points := make([]Point, 0, len(predictions)+4)
	points = append(points, l.Origin)

	var last Point
	for i, p := range predictions {
		x := l.SampleX(i)
		if x > l.Right() {
			break
		}
		last = Point{X: x, Y: l.LevelY(p.Feet())}
		points = append(points, last)
	}

	if len(points) > 1 {
		points = append(points, Point{X: math.Min(last.X+l.PixelsPerSample, l.Right()), Y: last.Y})
	}

	return append(points, Point{X: l.Right(), Y: l.Origin.Y}, l.Origin)
}

// AxisLabel is a label anchored to a gridline position
type AxisLabel struct {
	Text string
	At   float64
}

// TopLevel is the level in feet of the highest gridline
func (l Layout) TopLevel() int {
	return l.Tier.LineCount - 1
}

// LevelLabels returns one label every StepFeet from 0 ft to the top gridline
func (l Layout) LevelLabels() []AxisLabel {
	var labels []AxisLabel
	for level := 0; level <= l.TopLevel(); level += l.Tier.StepFeet {
		labels = append(labels, AxisLabel{Text: strconv.Itoa(level), At: l.LevelY(float64(level))})
	}
	return labels
}

// HourLabels returns a label every three hours in a 12-hour clock
func (l Layout) HourLabels() []AxisLabel {
	var labels []AxisLabel
	for hour := 0; hour <= l.Hours; hour += 3 {
		labels = append(labels, AxisLabel{Text: HourLabel(hour), At: l.HourX(hour)})
	}
	return labels
}

// HourLabel formats an hour of the day; both midnights read "12 AM"
func HourLabel(hour int) string {
	switch {
	case hour == 0 || hour == 24:
		return "12 AM"
	case hour > 12:
		return strconv.Itoa(hour - 12)
	default:
		return strconv.Itoa(hour)
	}
}

// MinorLevelLines are the y positions of the horizontal grid: the labelled
// levels plus the bottom and top edges of the plot.
func (l Layout) MinorLevelLines() []float64 {
	lines := []float64{l.Origin.Y}
	for _, label := range l.LevelLabels() {
		lines = append(lines, label.At)
	}
	if l.TopLevel()%l.Tier.StepFeet != 0 {
		lines = append(lines, l.Top())
	}
	return lines
}

// MajorHourLines are the hours drawn heavy: both midnights and noon
func (l Layout) MajorHourLines() []int {
	return []int{0, l.Hours / 2, l.Hours}
}
