package adapter

import (
	"fmt"
	"math"
)

const (
	defaultColorDepth  = "24-bit"
	defaultRefreshRate = 60
	ledBrightnessNits  = 2500
)

var resolutionThresholds = []struct {
	minWidth int
	label    string
}{
	{7680, "8K"},
	{3840, "4K"},
	{2560, "QHD"},
	{1920, "Full HD"},
	{1280, "HD"},
}

func resolutionLabel(width int) string {
	for _, t := range resolutionThresholds {
		if width >= t.minWidth {
			return t.label
		}
	}
	return "SD"
}

var aspectRatios = []struct {
	ratio float64
	label string
}{
	{16.0 / 9.0, "16:9"},
	{9.0 / 16.0, "9:16"},
	{4.0 / 3.0, "4:3"},
	{3.0 / 4.0, "3:4"},
	{21.0 / 9.0, "21:9"},
	{32.0 / 9.0, "32:9"},
	{1, "1:1"},
}

const aspectTolerance = 0.02

// aspectRatioLabel buckets width/height into a common ratio, or the reduced fraction.
func aspectRatioLabel(width, height int) string {
	if width <= 0 || height <= 0 {
		return "unknown"
	}
	r := float64(width) / float64(height)
	for _, a := range aspectRatios {
		if math.Abs(r-a.ratio) <= aspectTolerance {
			return a.label
		}
	}
	g := gcd(width, height)
	return fmt.Sprintf("%d:%d", width/g, height/g)
}

func orientation(width, height int) string {
	switch {
	case width > height:
		return "landscape"
	case width < height:
		return "portrait"
	default:
		return "square"
	}
}

func technology(brightness int) string {
	if brightness >= ledBrightnessNits {
		return "LED"
	}
	return "LCD"
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
