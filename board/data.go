// board/data.go
package board

// Static board layout. Four vertical trails run from the shared START at the
// bottom of the board to the shared FINISH at the top. Every trail carries
// two draw spaces, one junction crossing into the next trail over, and one
// choicepoint crossing the other way, so tokens can change trails twice on
// the way up.

const (
	startX, startY   = 500, 650
	finishX, finishY = 500, 50
	laneStep         = 50
	regionHalf       = 30 // half-width of junction/choicepoint regions
)

type laneSpec struct {
	color  PathColor
	x      float64
	events SpaceType // type of the upper event space on this trail
}

var lanes = []laneSpec{
	{PathPurple, 200, SpaceDraw},
	{PathBlue, 400, SpaceDraw},
	{PathCyan, 600, SpaceSpecialEvent},
	{PathPink, 800, SpaceSpecialEvent},
}

// junctionNeighbor maps each trail to the trail its junction crosses into.
var junctionNeighbor = map[PathColor]PathColor{
	PathPurple: PathBlue,
	PathBlue:   PathCyan,
	PathCyan:   PathPink,
	PathPink:   PathPurple,
}

// choiceNeighbor maps each trail to the trail its choicepoint crosses into.
var choiceNeighbor = map[PathColor]PathColor{
	PathPurple: PathPink,
	PathBlue:   PathPurple,
	PathCyan:   PathBlue,
	PathPink:   PathCyan,
}

func laneX(color PathColor) float64 {
	for _, l := range lanes {
		if l.color == color {
			return l.x
		}
	}
	return 0
}

func squareAround(c Coord, half float64) []Coord {
	return []Coord{
		{X: c.X - half, Y: c.Y - half},
		{X: c.X + half, Y: c.Y - half},
		{X: c.X + half, Y: c.Y + half},
		{X: c.X - half, Y: c.Y + half},
	}
}

func buildLane(spec laneSpec) Path {
	x := spec.x
	finish := Coord{X: finishX, Y: finishY}

	at := func(y float64) Coord { return Coord{X: x, Y: y} }
	next := func(y float64) []Coord { return []Coord{at(y)} }

	junction := Space{
		Coord:   at(350),
		Type:    SpaceJunction,
		Path:    spec.color,
		Next:    next(300),
		Polygon: squareAround(at(350), regionHalf),
		Branches: []Branch{
			{Coord: at(300), Path: spec.color},
			{Coord: Coord{X: laneX(junctionNeighbor[spec.color]), Y: 300}, Path: junctionNeighbor[spec.color]},
		},
	}

	choicepoint := Space{
		Coord:   at(150),
		Type:    SpaceChoicepoint,
		Path:    spec.color,
		Next:    next(100),
		Polygon: squareAround(at(150), regionHalf),
		Branches: []Branch{
			{Coord: at(100), Path: spec.color},
			{Coord: Coord{X: laneX(choiceNeighbor[spec.color]), Y: 100}, Path: choiceNeighbor[spec.color]},
		},
	}

	return Path{
		Color: spec.color,
		Spaces: []Space{
			{Coord: at(600), Type: SpaceRegular, Path: spec.color, Next: next(550)},
			{Coord: at(550), Type: SpaceRegular, Path: spec.color, Next: next(500)},
			{Coord: at(500), Type: SpaceDraw, Path: spec.color, Next: next(450)},
			{Coord: at(450), Type: SpaceRegular, Path: spec.color, Next: next(400)},
			{Coord: at(400), Type: SpaceRegular, Path: spec.color, Next: next(350)},
			junction,
			{Coord: at(300), Type: SpaceRegular, Path: spec.color, Next: next(250)},
			{Coord: at(250), Type: spec.events, Path: spec.color, Next: next(200)},
			{Coord: at(200), Type: SpaceRegular, Path: spec.color, Next: next(150)},
			choicepoint,
			{Coord: at(100), Type: SpaceRegular, Path: spec.color, Next: []Coord{finish}},
		},
	}
}

// NewBoard builds the static four-trail board.
func NewBoard() *Board {
	b := &Board{
		Start: Space{
			Coord: Coord{X: startX, Y: startY},
			Type:  SpaceStart,
		},
		Finish: Space{
			Coord: Coord{X: finishX, Y: finishY},
			Type:  SpaceFinish,
		},
	}
	for _, spec := range lanes {
		b.Paths = append(b.Paths, buildLane(spec))
		first := Coord{X: spec.x, Y: 600}
		b.Start.Next = append(b.Start.Next, first)
		b.Start.Branches = append(b.Start.Branches, Branch{Coord: first, Path: spec.color})
	}
	return b
}
