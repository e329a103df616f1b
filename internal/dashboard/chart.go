package dashboard

import (
	"fmt"
	"math"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
)

// Pie chart geometry, in SVG user units.
const (
	pieCenter = 130.0
	pieRadius = 100.0
	pieLabelR = 118.0
)

// Bar chart geometry, in SVG user units.
const (
	barWidth     = 360.0
	barTop       = 20.0
	barBottom    = 210.0
	barFill      = 0.6
	barLabelBase = 232.0
)

// PieSegment is one drawable slice of the category chart.
type PieSegment struct {
	Name    string
	Color   string
	Value   int
	Percent int
	// Path is empty when the segment covers the whole circle.
	Path   string
	LabelX string
	LabelY string
}

// Bar is one drawable bar of the priority chart.
type Bar struct {
	Name   string
	Color  string
	Value  int
	X      string
	Y      string
	Width  string
	Height string
	LabelX string
}

func num(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func polar(r, angle float64) (float64, float64) {
	return pieCenter + r*math.Cos(angle), pieCenter + r*math.Sin(angle)
}

// pieSegments lays slices out clockwise from twelve o'clock.
func pieSegments(slices []domain.ChartSlice) []PieSegment {
	total := 0
	for _, s := range slices {
		total += s.Value
	}
	if total == 0 {
		return nil
	}

	segments := make([]PieSegment, 0, len(slices))
	start := -math.Pi / 2
	for _, s := range slices {
		share := float64(s.Value) / float64(total)
		end := start + share*2*math.Pi
		mid := (start + end) / 2
		lx, ly := polar(pieLabelR, mid)

		seg := PieSegment{
			Name:    s.Name,
			Color:   s.Color,
			Value:   s.Value,
			Percent: int(math.Round(share * 100)),
			LabelX:  num(lx),
			LabelY:  num(ly),
		}
		if s.Value < total {
			x1, y1 := polar(pieRadius, start)
			x2, y2 := polar(pieRadius, end)
			largeArc := 0
			if share > 0.5 {
				largeArc = 1
			}
			seg.Path = fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
				num(pieCenter), num(pieCenter), num(x1), num(y1),
				num(pieRadius), num(pieRadius), largeArc, num(x2), num(y2))
		}
		segments = append(segments, seg)
		start = end
	}
	return segments
}

// bars scales slices against the largest value.
func bars(slices []domain.ChartSlice) []Bar {
	peak := 0
	for _, s := range slices {
		if s.Value > peak {
			peak = s.Value
		}
	}
	if peak == 0 {
		return nil
	}

	slot := barWidth / float64(len(slices))
	width := slot * barFill
	out := make([]Bar, 0, len(slices))
	for i, s := range slices {
		h := float64(s.Value) / float64(peak) * (barBottom - barTop)
		x := float64(i)*slot + (slot-width)/2
		out = append(out, Bar{
			Name:   s.Name,
			Color:  s.Color,
			Value:  s.Value,
			X:      num(x),
			Y:      num(barBottom - h),
			Width:  num(width),
			Height: num(h),
			LabelX: num(x + width/2),
		})
	}
	return out
}
