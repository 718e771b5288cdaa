package timeline

import (
	"fmt"

	"github.com/ivlev/scrollreel/internal/motion"
	"github.com/ivlev/scrollreel/internal/stage"
)

const (
	// SlideStep is the virtual duration of one full slide replace.
	SlideStep = 0.6

	flowTravel = 0.75
	flowFade   = 0.25
)

// SlideSequence builds the horizontal slide choreography. Each step moves
// the outgoing slide to xPercent -100 while the incoming one arrives from
// 100. Three slides get four half-steps instead of two full replaces so
// the middle slide is visible at half-width on both sides.
func SlideSequence(slides []stage.Handle) []Spec {
	if len(slides) < 2 {
		return nil
	}
	ease := motion.Power2InOut

	// An outgoing slide always rests at 0: slide 0 starts there and every
	// other slide has just arrived. Later slides wait at 100 until their
	// first tween begins.
	if len(slides) == 3 {
		var specs []Spec
		for pair := 0; pair < 2; pair++ {
			out, in := slides[pair], slides[pair+1]
			specs = append(specs,
				Spec{
					Label:    fmt.Sprintf("half-%d", pair+1),
					Duration: SlideStep / 2,
					Ease:     ease,
					Tweens: []Tween{
						FromTo(out, motion.XPercent, 0, -50),
						FromTo(in, motion.XPercent, 100, 50),
					},
				},
				Spec{
					Label:    fmt.Sprintf("full-%d", pair+1),
					Duration: SlideStep / 2,
					Ease:     ease,
					Tweens: []Tween{
						FromTo(out, motion.XPercent, -50, -100),
						FromTo(in, motion.XPercent, 50, 0),
					},
				},
			)
		}
		return specs
	}

	specs := make([]Spec, 0, len(slides)-1)
	for i := 0; i+1 < len(slides); i++ {
		specs = append(specs, Spec{
			Label:    fmt.Sprintf("slide-%d", i+1),
			Duration: SlideStep,
			Ease:     ease,
			Tweens: []Tween{
				FromTo(slides[i], motion.XPercent, 0, -100),
				FromTo(slides[i+1], motion.XPercent, 100, 0),
			},
		})
	}
	return specs
}

// FlowNode is one satellite of the module-flow diagram.
type FlowNode struct {
	ID   stage.Handle
	Link stage.Handle
	Path motion.Path

	// OnTravel is attached to the marker travel segment.
	OnTravel func(active bool)
	OnStep   func(local float64)
}

// ModuleFlow activates the hub, then for every node in order sends the
// marker along the node's path while the link and node light up in
// lockstep, then fades the marker out. Each step takes one unit, so the
// timeline lasts len(nodes)+1.
func ModuleFlow(hub, marker stage.Handle, nodes []FlowNode) []Spec {
	specs := []Spec{{
		Label:    "hub",
		Duration: 1,
		Ease:     motion.Power2InOut,
		Tweens: []Tween{
			FromTo(hub, motion.Opacity, 0.3, 1),
			FromTo(hub, motion.Scale, 0.85, 1),
			FromTo(hub, motion.Glow, 0, 1),
			FromTo(marker, motion.Opacity, 0, 0),
		},
	}}

	for _, n := range nodes {
		label := "node-" + string(n.ID)
		travel := []Tween{
			FromTo(marker, motion.Opacity, 1, 1),
			FromTo(n.Link, motion.Opacity, 0.15, 1),
			FromTo(n.ID, motion.Opacity, 0.35, 1),
			FromTo(n.ID, motion.Scale, 0.8, 1),
		}
		if n.Path != nil {
			travel = append(travel, Along(marker, n.Path)...)
		}
		specs = append(specs,
			Spec{
				Label:    label,
				Duration: flowTravel,
				Ease:     motion.Power2InOut,
				Tweens:   travel,
				OnActive: n.OnTravel,
				OnUpdate: n.OnStep,
			},
			Spec{
				Label:    label,
				Duration: flowFade,
				Ease:     motion.Power1Out,
				Tweens:   []Tween{FromTo(marker, motion.Opacity, 1, 0)},
			},
		)
	}
	return specs
}
