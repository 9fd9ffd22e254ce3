// movement/resolver.go
package movement

import (
	"github.com/wfunc/crossroads/board"
)

// StopReason is the exhaustive set of outcomes for a movement resolution.
type StopReason string

const (
	StepsComplete         StopReason = "steps_complete"
	InterruptChoicepoint  StopReason = "interrupt_choicepoint"
	InterruptJunction     StopReason = "interrupt_junction"
	InterruptFinish       StopReason = "interrupt_finish"
	InterruptDraw         StopReason = "interrupt_draw"
	InterruptSpecialEvent StopReason = "interrupt_special_event"
	EndOfPath             StopReason = "end_of_path"
	ErrorBlocked          StopReason = "error_blocked"
	ErrorInvalidPlayer    StopReason = "error_invalid_player"
	ErrorInvalidCoords    StopReason = "error_invalid_coords"
	ErrorUnexpectedOption StopReason = "error_unexpected_option"
)

// IsError reports whether the reason is a data-integrity failure rather than
// a game event.
func (r StopReason) IsError() bool {
	switch r {
	case ErrorBlocked, ErrorInvalidPlayer, ErrorInvalidCoords, ErrorUnexpectedOption:
		return true
	}
	return false
}

// Result is the outcome of a resolution. Position is the final coordinate
// and StepsTaken the number of committed steps, which may be less than
// requested.
type Result struct {
	Reason     StopReason  `json:"reason"`
	Position   board.Coord `json:"position"`
	StepsTaken int         `json:"steps_taken"`
}

// Resolve advances a token from `from` by up to `steps` forward hops.
//
// Per hop the checks run in a fixed order. The region-crossing test runs
// before the landing-type test and wins when both apply: a move whose
// segment touches a junction or choicepoint region stops at that region's
// registered coordinate even if the landing coordinate is itself a draw
// space.
func Resolve(b *board.Board, from board.Coord, steps int) Result {
	pos := from
	taken := 0

	for taken < steps {
		opts := b.NextOptions(pos)
		switch opts.Kind {
		case board.OptionUnknown:
			if opts.Space != nil {
				// Space resolved but offers nowhere to go.
				return Result{Reason: ErrorBlocked, Position: pos, StepsTaken: taken}
			}
			return Result{Reason: ErrorInvalidCoords, Position: pos, StepsTaken: taken}

		case board.OptionFinish:
			// Already at the end; nothing left to walk.
			return Result{Reason: EndOfPath, Position: pos, StepsTaken: taken}

		case board.OptionStart, board.OptionBranch:
			// The resolver never chooses among branches; the caller must
			// resolve the choice first.
			return Result{Reason: ErrorUnexpectedOption, Position: pos, StepsTaken: taken}

		case board.OptionRegular:
			dest := opts.Branches[0].Coord

			if region := crossedRegion(b, pos, dest); region != nil {
				reason := InterruptJunction
				if region.Type == board.SpaceChoicepoint {
					reason = InterruptChoicepoint
				}
				return Result{Reason: reason, Position: region.Coord, StepsTaken: taken + 1}
			}

			destSpace, ok := b.FindSpace(dest, board.DefaultTolerance)
			if !ok {
				return Result{Reason: ErrorInvalidCoords, Position: pos, StepsTaken: taken}
			}

			pos = destSpace.Coord
			taken++

			switch destSpace.Type {
			case board.SpaceFinish:
				return Result{Reason: InterruptFinish, Position: pos, StepsTaken: taken}
			case board.SpaceChoicepoint:
				return Result{Reason: InterruptChoicepoint, Position: pos, StepsTaken: taken}
			case board.SpaceJunction:
				return Result{Reason: InterruptJunction, Position: pos, StepsTaken: taken}
			case board.SpaceDraw:
				return Result{Reason: InterruptDraw, Position: pos, StepsTaken: taken}
			case board.SpaceSpecialEvent:
				return Result{Reason: InterruptSpecialEvent, Position: pos, StepsTaken: taken}
			}
		}
	}

	return Result{Reason: StepsComplete, Position: pos, StepsTaken: taken}
}

// crossedRegion returns the first junction/choicepoint region the segment
// from a to b touches, in the board's fixed trail order. Regions whose
// registered coordinate equals the segment start are skipped so a token
// leaving a branch space is not immediately recaptured by it.
func crossedRegion(b *board.Board, a, dest board.Coord) *board.Space {
	for _, region := range b.BranchRegions() {
		if region.Coord == a {
			continue
		}
		if board.SegmentTouchesPolygon(a, dest, region.Polygon) {
			return region
		}
	}
	return nil
}

// ResolveBackward walks the token backward along its current trail by index,
// clamped at the trail's first space. Backward movement triggers no
// interrupts; only forward movement can enter draws or branch regions. A
// landing that would settle on a junction or choicepoint slides past it,
// because a token parked there has no pending choice and could never roll
// forward again.
func ResolveBackward(b *board.Board, path board.PathColor, from board.Coord, steps int) Result {
	trail, ok := b.PathByColor(path)
	if !ok {
		return Result{Reason: ErrorInvalidCoords, Position: from}
	}

	idx := -1
	for i := range trail.Spaces {
		if from.DistanceTo(trail.Spaces[i].Coord) <= board.DefaultTolerance {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{Reason: ErrorInvalidCoords, Position: from}
	}

	target := idx - steps
	if target < 0 {
		target = 0
	}
	for target > 0 && isBranchSpace(trail.Spaces[target].Type) {
		target--
	}
	for target < idx && isBranchSpace(trail.Spaces[target].Type) {
		target++
	}
	return Result{
		Reason:     StepsComplete,
		Position:   trail.Spaces[target].Coord,
		StepsTaken: idx - target,
	}
}

func isBranchSpace(t board.SpaceType) bool {
	return t == board.SpaceJunction || t == board.SpaceChoicepoint
}
