package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Bounds is a device-pixel rectangle in Android's [left,top][right,bottom] form.
type Bounds struct {
	Left, Top, Right, Bottom int
}

// ParseBounds parses a "[left,top][right,bottom]" string.
func ParseBounds(s string) (Bounds, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "][")
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "[") || !strings.HasSuffix(parts[1], "]") {
		return Bounds{}, fmt.Errorf("invalid bounds %q: expected [left,top][right,bottom]", s)
	}
	left, top, err := parsePair(strings.TrimPrefix(parts[0], "["))
	if err != nil {
		return Bounds{}, fmt.Errorf("invalid bounds %q: %w", s, err)
	}
	right, bottom, err := parsePair(strings.TrimSuffix(parts[1], "]"))
	if err != nil {
		return Bounds{}, fmt.Errorf("invalid bounds %q: %w", s, err)
	}
	return Bounds{Left: left, Top: top, Right: right, Bottom: bottom}, nil
}

func parsePair(s string) (int, int, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return 0, 0, fmt.Errorf("expected two comma-separated values, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xy[0]))
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(xy[1]))
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// Center returns the tap point of the rectangle. The result always lies
// within the bounds, including degenerate and inverted rectangles.
func (b Bounds) Center() (int, int) {
	return midpoint(b.Left, b.Right), midpoint(b.Top, b.Bottom)
}

func midpoint(a, b int) int {
	if b < a {
		a, b = b, a
	}
	return a + (b-a)/2
}

// Contains reports whether (x, y) lies inside the rectangle, edges included.
func (b Bounds) Contains(x, y int) bool {
	l, r := b.Left, b.Right
	if r < l {
		l, r = r, l
	}
	t, bt := b.Top, b.Bottom
	if bt < t {
		t, bt = bt, t
	}
	return x >= l && x <= r && y >= t && y <= bt
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.Left, b.Top, b.Right, b.Bottom)
}
