// board/board.go
package board

import (
	"fmt"
	"math"
)

// PathColor identifies one of the four trails on the board.
type PathColor string

const (
	PathPurple PathColor = "purple"
	PathBlue   PathColor = "blue"
	PathCyan   PathColor = "cyan"
	PathPink   PathColor = "pink"
)

// PathColors returns the trail colors in their fixed lookup order.
func PathColors() []PathColor {
	return []PathColor{PathPurple, PathBlue, PathCyan, PathPink}
}

// SpaceType 表示棋盘格子的类型
type SpaceType int

const (
	SpaceRegular SpaceType = iota
	SpaceDraw
	SpaceSpecialEvent
	SpaceChoicepoint
	SpaceJunction
	SpaceStart
	SpaceFinish
)

func (t SpaceType) String() string {
	switch t {
	case SpaceRegular:
		return "regular"
	case SpaceDraw:
		return "draw"
	case SpaceSpecialEvent:
		return "special_event"
	case SpaceChoicepoint:
		return "choicepoint"
	case SpaceJunction:
		return "junction"
	case SpaceStart:
		return "start"
	case SpaceFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Coord is a board position. Positions are continuous pixel coordinates, so
// lookups are tolerance-based rather than exact.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to another coordinate.
func (c Coord) DistanceTo(o Coord) float64 {
	dx := c.X - o.X
	dy := c.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Branch is one selectable continuation from a branching space, tagged with
// the trail it leads onto.
type Branch struct {
	Coord Coord     `json:"coord"`
	Path  PathColor `json:"path"`
}

// Space 是棋盘图中的一个节点
type Space struct {
	Coord    Coord
	Type     SpaceType
	Path     PathColor
	Next     []Coord  // successor coordinates; empty only for finish
	Polygon  []Coord  // region vertices, set for junction/choicepoint
	Branches []Branch // tagged options, 2+ for junction/choicepoint
}

// Path is one ordered trail of spaces from just after START to just before
// FINISH.
type Path struct {
	Color  PathColor
	Spaces []Space
}

// Board holds the static board graph: four trails sharing one START and one
// FINISH.
type Board struct {
	Start  Space
	Finish Space
	Paths  []Path
}

// DefaultTolerance is the lookup radius used when the caller has no better
// value. Scale/unscale rounding keeps real positions within a few pixels of
// the registered ones.
const DefaultTolerance = 5.0

// FindSpace returns the space whose coordinate lies within tolerance of c.
// The check order is fixed: START, FINISH, then trails in declaration order,
// then spaces in list order.
func (b *Board) FindSpace(c Coord, tolerance float64) (*Space, bool) {
	if c.DistanceTo(b.Start.Coord) <= tolerance {
		return &b.Start, true
	}
	if c.DistanceTo(b.Finish.Coord) <= tolerance {
		return &b.Finish, true
	}
	for i := range b.Paths {
		for j := range b.Paths[i].Spaces {
			space := &b.Paths[i].Spaces[j]
			if c.DistanceTo(space.Coord) <= tolerance {
				return space, true
			}
		}
	}
	return nil, false
}

// PathByColor returns the trail with the given color.
func (b *Board) PathByColor(color PathColor) (*Path, bool) {
	for i := range b.Paths {
		if b.Paths[i].Color == color {
			return &b.Paths[i], true
		}
	}
	return nil, false
}

// OptionKind tags the result of NextOptions.
type OptionKind int

const (
	OptionUnknown OptionKind = iota
	OptionStart
	OptionFinish
	OptionRegular
	OptionBranch
)

func (k OptionKind) String() string {
	switch k {
	case OptionStart:
		return "start"
	case OptionFinish:
		return "finish"
	case OptionRegular:
		return "regular"
	case OptionBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// Options is the tagged result of resolving the continuations from a
// coordinate. Kind OptionUnknown means the lookup failed; callers must treat
// that as fatal for the current operation, never as an empty result.
type Options struct {
	Kind     OptionKind
	Space    *Space
	Branches []Branch
}

// NextOptions resolves the space owning c and reports its continuations.
func (b *Board) NextOptions(c Coord) Options {
	space, ok := b.FindSpace(c, DefaultTolerance)
	if !ok {
		return Options{Kind: OptionUnknown}
	}

	switch space.Type {
	case SpaceStart:
		return Options{Kind: OptionStart, Space: space, Branches: space.Branches}
	case SpaceFinish:
		return Options{Kind: OptionFinish, Space: space}
	case SpaceJunction, SpaceChoicepoint:
		return Options{Kind: OptionBranch, Space: space, Branches: space.Branches}
	default:
		if len(space.Next) == 0 {
			return Options{Kind: OptionUnknown, Space: space}
		}
		return Options{
			Kind:  OptionRegular,
			Space: space,
			Branches: []Branch{
				{Coord: space.Next[0], Path: space.Path},
			},
		}
	}
}

// BranchRegions returns every junction and choicepoint space, in the fixed
// trail order. Movement uses these for the region-crossing test.
func (b *Board) BranchRegions() []*Space {
	var regions []*Space
	for i := range b.Paths {
		for j := range b.Paths[i].Spaces {
			space := &b.Paths[i].Spaces[j]
			if space.Type == SpaceJunction || space.Type == SpaceChoicepoint {
				regions = append(regions, space)
			}
		}
	}
	return regions
}

// Validate checks the structural invariants of the board graph.
func (b *Board) Validate() error {
	if len(b.Start.Branches) != len(b.Paths) {
		return fmt.Errorf("start must offer one branch per trail, got %d for %d trails",
			len(b.Start.Branches), len(b.Paths))
	}
	if len(b.Finish.Next) != 0 {
		return fmt.Errorf("finish must have no successors")
	}
	for i := range b.Paths {
		for j := range b.Paths[i].Spaces {
			space := &b.Paths[i].Spaces[j]
			switch space.Type {
			case SpaceJunction, SpaceChoicepoint:
				if len(space.Branches) < 2 {
					return fmt.Errorf("%s space at (%.0f,%.0f) must offer at least 2 branches",
						space.Type, space.Coord.X, space.Coord.Y)
				}
				if len(space.Polygon) < 3 {
					return fmt.Errorf("%s space at (%.0f,%.0f) must carry a polygon",
						space.Type, space.Coord.X, space.Coord.Y)
				}
			default:
				if len(space.Next) == 0 {
					return fmt.Errorf("space at (%.0f,%.0f) has no successor",
						space.Coord.X, space.Coord.Y)
				}
			}
		}
	}
	return nil
}
