package main

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"

	"github.com/itohio/goplate/pkg/output"
)

const (
	plateRows = 8
	plateCols = 12
	wellPad   = 4
)

// PlateWidget is a custom Fyne widget rendering the 96-well plate as a
// 12x8 grid, one circle per well, colored by the intensities of the well's
// three LED positions.
type PlateWidget struct {
	widget.BaseWidget

	colors int

	// Intensities per well and LED position (protected by mu)
	mu    sync.RWMutex
	wells [96][3]uint16
}

// NewPlateWidget creates the plate view for a plate with the given color
// count.
func NewPlateWidget(colors int) *PlateWidget {
	p := &PlateWidget{colors: colors}
	p.ExtendBaseWidget(p)
	p.Refresh()
	return p
}

// SetChannel records one physical channel update. The caller should batch
// updates and call Refresh via fyne.Do.
func (p *PlateWidget) SetChannel(channel int, intensity uint16) {
	well, position := output.ChannelWell(channel)

	p.mu.Lock()
	p.wells[well][position] = intensity
	p.mu.Unlock()
}

// wellColor mixes a well's LED positions into a display color. Position
// roles depend on how the plate is populated; far red is rendered as a
// deep red so it stays visible on screen.
func (p *PlateWidget) wellColor(well int) color.Color {
	p.mu.RLock()
	v := p.wells[well]
	p.mu.RUnlock()

	scale := func(i uint16) float32 {
		return math32.Sqrt(float32(i) / 4095) // perceptual lift for dim values
	}

	var r, g, b float32
	switch p.colors {
	case 1:
		// All positions blue; show the brightest one.
		b = scale(maxIntensity(v[0], v[1], v[2]))
	case 2:
		// Positions 1+2 far red, position 3 red.
		far := scale(maxIntensity(v[0], v[1]))
		r = maxFloat(scale(v[2]), 0.55*far)
	default:
		// Blue, red, far red.
		b = scale(v[0])
		r = maxFloat(scale(v[1]), 0.55*scale(v[2]))
	}

	return color.NRGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}

func maxIntensity(vals ...uint16) uint16 {
	var m uint16
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func maxFloat(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// CreateRenderer implements fyne.Widget.
func (p *PlateWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &plateRenderer{plate: p}
	r.background = canvas.NewRectangle(color.NRGBA{R: 20, G: 20, B: 24, A: 255})
	for i := range r.circles {
		r.circles[i] = canvas.NewCircle(color.NRGBA{A: 255})
	}
	return r
}

// plateRenderer lays the wells out in the physical plate arrangement:
// well 0 is A1 (top left), numbering runs along each row.
type plateRenderer struct {
	plate      *PlateWidget
	background *canvas.Rectangle
	circles    [96]*canvas.Circle
}

func (r *plateRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	cell := fyne.NewSize(size.Width/plateCols, size.Height/plateRows)
	d := math32.Min(cell.Width, cell.Height) - 2*wellPad
	if d < 1 {
		d = 1
	}

	for well, c := range r.circles {
		row := well / plateCols
		col := well % plateCols
		x := float32(col)*cell.Width + (cell.Width-d)/2
		y := float32(row)*cell.Height + (cell.Height-d)/2
		c.Move(fyne.NewPos(x, y))
		c.Resize(fyne.NewSize(d, d))
	}
}

func (r *plateRenderer) MinSize() fyne.Size {
	return fyne.NewSize(plateCols*24, plateRows*24)
}

func (r *plateRenderer) Refresh() {
	for well, c := range r.circles {
		c.FillColor = r.plate.wellColor(well)
		c.Refresh()
	}
	r.background.Refresh()
}

func (r *plateRenderer) Objects() []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, len(r.circles)+1)
	objects = append(objects, r.background)
	for _, c := range r.circles {
		objects = append(objects, c)
	}
	return objects
}

func (r *plateRenderer) Destroy() {}
