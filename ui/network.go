package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/retroterm/neural"
)

// Network diagram colours.
var (
	ColorNodeInactive = rl.Color{R: 40, G: 60, B: 45, A: 255}
	ColorNodePositive = rl.Color{R: 80, G: 255, B: 120, A: 255}
	ColorNodeNegative = rl.Color{R: 255, G: 170, B: 60, A: 255}
	ColorEdgePositive = rl.Color{R: 60, G: 200, B: 90, A: 100}
	ColorEdgeNegative = rl.Color{R: 220, G: 140, B: 50, A: 100}
	ColorLabelDim     = rl.Color{R: 120, G: 140, B: 120, A: 255}
)

// edgeThreshold hides weights too small to matter.
const edgeThreshold = 0.1

// NetworkView is what DrawNetworkDiagram needs: a network and the
// activations of one forward pass.
type NetworkView struct {
	Net          *neural.Network
	Activations  [][]float32
	InputLabels  []string
	OutputLabels []string
}

// DrawNetworkDiagram renders every layer of the network as a column of
// nodes coloured by activation, with edges coloured by weight sign.
func DrawNetworkDiagram(x, y, width, height int32, view NetworkView) {
	net := view.Net
	if net == nil || len(net.Layers) == 0 || len(view.Activations) != len(net.Layers)+1 {
		rl.DrawText("No network data", x+10, y+10, 12, ColorLabelDim)
		return
	}

	cols := len(view.Activations)
	colWidth := float32(width) / float32(cols)
	nodeRadius := float32(5)

	// Node positions, one column per activation layer.
	nodes := make([][]rl.Vector2, cols)
	for c, acts := range view.Activations {
		spacing := float32(height-20) / float32(max(len(acts), 1))
		offset := (float32(height-20) - float32(len(acts))*spacing) / 2
		cx := float32(x) + float32(c)*colWidth + colWidth/2
		nodes[c] = make([]rl.Vector2, len(acts))
		for i := range acts {
			nodes[c][i] = rl.Vector2{X: cx, Y: float32(y) + 10 + offset + (float32(i)+0.5)*spacing}
		}
	}

	for li := range net.Layers {
		l := &net.Layers[li]
		for o := 0; o < l.Out(); o++ {
			for i := 0; i < l.In(); i++ {
				w := l.Weight(o, i)
				if absFloat(w) < edgeThreshold {
					continue
				}
				drawEdge(nodes[li][i], nodes[li+1][o], w)
			}
		}
	}

	for c, acts := range view.Activations {
		radius := nodeRadius
		if c == cols-1 {
			radius += 2
		}
		for i, a := range acts {
			drawNode(nodes[c][i], radius, a)
		}
	}

	for i, pos := range nodes[0] {
		if i < len(view.InputLabels) {
			rl.DrawText(view.InputLabels[i], int32(pos.X+nodeRadius+4), int32(pos.Y)-5, 10, ColorLabelDim)
		}
	}
	last := nodes[cols-1]
	best := neural.Argmax(view.Activations[cols-1])
	for i, pos := range last {
		if i >= len(view.OutputLabels) {
			continue
		}
		label := view.OutputLabels[i]
		labelWidth := rl.MeasureText(label, 10)
		color := ColorLabelDim
		if i == best {
			color = ColorNodePositive
		}
		rl.DrawText(label, int32(pos.X-nodeRadius)-labelWidth-6, int32(pos.Y)-5, 10, color)
	}
}

func drawNode(pos rl.Vector2, radius, activation float32) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 90, G: 110, B: 90, A: 255})
}

func drawEdge(from, to rl.Vector2, weight float32) {
	thickness := min(max(absFloat(weight)*1.5, 0.5), 3)

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(min(40+int(absFloat(weight)*40), 150))

	rl.DrawLineEx(from, to, thickness, color)
}

// activationColor blends from the inactive colour towards green for
// positive activations and amber for negative ones.
func activationColor(activation float32) rl.Color {
	target := ColorNodePositive
	if activation < 0 {
		target = ColorNodeNegative
	}
	t := float32(math.Min(float64(absFloat(activation)), 1))
	lerp := func(a, b uint8) uint8 { return uint8(float32(a) + t*(float32(b)-float32(a))) }
	return rl.Color{
		R: lerp(ColorNodeInactive.R, target.R),
		G: lerp(ColorNodeInactive.G, target.G),
		B: lerp(ColorNodeInactive.B, target.B),
		A: 255,
	}
}

func absFloat(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
