// Package planar implements a planar, five-digit robotic hand simulated
// with Box2D. The hand consists of a static palm with four fingers
// attached along its top edge and a thumb attached to its right edge.
// Each digit is a chain of three phalanges connected by motorised
// revolute joints which are driven by position control. A static table
// lies below the hand so that fingertips which are lowered far enough
// register touch.
package planar

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"

	"github.com/samuelfneumann/dexterous/utils/floatutils"
)

const (
	FPS float64 = 50

	Gravity float64 = -9.81

	// Palm dimensions, the palm is centred at the origin
	PalmHalfWidth  float64 = 0.8
	PalmHalfHeight float64 = 1.0

	DigitHalfWidth float64 = 0.12

	// The top surface of the table is at TableY
	TableY          float64 = -1.5
	TableHalfWidth  float64 = 8.0
	TableHalfHeight float64 = 0.2

	MaxMotorTorque float64 = 60.0

	// PositionGain converts joint position error (rad) to motor speed
	// (rad/s)
	PositionGain float64 = 10.0

	MinAction float64 = -1.0
	MaxAction float64 = 1.0

	velocityIterations int = 8
	positionIterations int = 3

	// Box2D body types
	staticBody  = 0
	dynamicBody = 2

	// Fixtures sharing a negative group index never collide, so the
	// digits pass through each other and the palm
	handGroup = -1

	// Width of the visible world when rendering
	viewWidth   float64 = 8.0
	viewCentreY float64 = 0.5
)

// digit describes the kinematic layout of a single digit of the hand
type digit struct {
	name string

	// base is the attachment point of the digit on the palm, in palm
	// coordinates
	base box2d.B2Vec2

	// baseAngle is the angle of the digit's first phalanx when its
	// joint angle is 0
	baseAngle float64

	halfLengths []float64
	lower       float64 // Joint lower limit, shared by all joints
	upper       float64 // Joint upper limit, shared by all joints
}

// digits is ordered thumb first, then index (ff), middle (mf), ring (rf)
// and little (lf) finger.
var digits = []digit{
	{
		name:        "th",
		base:        box2d.MakeB2Vec2(PalmHalfWidth, -0.3),
		baseAngle:   -math.Pi / 2,
		halfLengths: []float64{0.5, 0.4, 0.3},
		lower:       -1.0,
		upper:       1.0,
	},
	{
		name:        "ff",
		base:        box2d.MakeB2Vec2(0.6, PalmHalfHeight),
		halfLengths: []float64{0.45, 0.35, 0.25},
		lower:       -0.8,
		upper:       0.8,
	},
	{
		name:        "mf",
		base:        box2d.MakeB2Vec2(0.2, PalmHalfHeight),
		halfLengths: []float64{0.45, 0.35, 0.25},
		lower:       -0.8,
		upper:       0.8,
	},
	{
		name:        "rf",
		base:        box2d.MakeB2Vec2(-0.2, PalmHalfHeight),
		halfLengths: []float64{0.45, 0.35, 0.25},
		lower:       -0.8,
		upper:       0.8,
	},
	{
		name:        "lf",
		base:        box2d.MakeB2Vec2(-0.6, PalmHalfHeight),
		halfLengths: []float64{0.45, 0.35, 0.25},
		lower:       -0.8,
		upper:       0.8,
	},
}

// Hand is a planar robotic hand simulated with Box2D.
//
// Joint positions (qpos) and velocities (qvel) are ordered by digit
// (thumb, index, middle, ring, little) and then from the base of the
// digit to its tip. Joint names are the digit name followed by the
// joint index, e.g. "th0" is the thumb's base joint.
//
// Actions are vectors in [-1, 1]^n, one element per joint, which are
// mapped linearly onto the joint's range of motion and tracked by
// position-controlled motors.
type Hand struct {
	world box2d.B2World
	palm  *box2d.B2Body
	table *box2d.B2Body

	links  [][]*box2d.B2Body // Phalanges of each digit
	joints []*box2d.B2RevoluteJoint
	lower  []float64
	upper  []float64

	targets   []float64 // Position control targets
	frameSkip int

	tableColour color.Color
	palmColour  color.Color
	digitColour color.Color
	thumbColour color.Color
}

// New returns a new planar Hand in its zero pose. The frameSkip
// argument determines how many physics steps are taken per call to
// Step.
func New(frameSkip int) (*Hand, error) {
	if frameSkip <= 0 {
		return nil, fmt.Errorf("new: frameSkip should be positive, got %v",
			frameSkip)
	}

	nq := 0
	for _, d := range digits {
		nq += len(d.halfLengths)
	}

	h := &Hand{
		frameSkip:   frameSkip,
		tableColour: color.RGBA{R: 120, G: 90, B: 60, A: 255},
		palmColour:  color.RGBA{R: 230, G: 190, B: 160, A: 255},
		digitColour: color.RGBA{R: 205, G: 160, B: 130, A: 255},
		thumbColour: color.RGBA{R: 180, G: 70, B: 70, A: 255},
	}
	if err := h.Reset(make([]float64, nq)); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	return h, nil
}

// Nq returns the number of joints in the hand
func (h *Hand) Nq() int {
	return len(h.joints)
}

// JointNames returns the names of the hand's joints, in qpos order
func (h *Hand) JointNames() []string {
	names := make([]string, 0, len(h.joints))
	for _, d := range digits {
		for i := range d.halfLengths {
			names = append(names, fmt.Sprintf("%v%v", d.name, i))
		}
	}
	return names
}

// JointQPosAddrs returns the qpos index of each joint. Every joint of
// the planar hand is a hinge, so joint i is at index i.
func (h *Hand) JointQPosAddrs() []int {
	addrs := make([]int, len(h.joints))
	for i := range addrs {
		addrs[i] = i
	}
	return addrs
}

// DefaultQPos returns the reference pose, with every digit straight
func (h *Hand) DefaultQPos() []float64 {
	return make([]float64, len(h.joints))
}

// UpAxis returns the index of the vertical axis in site positions
func (h *Hand) UpAxis() int {
	return 1
}

// Reset rebuilds the simulation with joint angles qpos and all
// velocities zero. Angles outside a joint's limits are clipped.
func (h *Hand) Reset(qpos []float64) error {
	want := 0
	for _, d := range digits {
		want += len(d.halfLengths)
	}
	if len(qpos) != want {
		return fmt.Errorf("reset: invalid position dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(qpos), want)
	}

	h.world = box2d.MakeB2World(box2d.MakeB2Vec2(0, Gravity))
	h.buildTable()
	h.buildPalm()

	h.links = make([][]*box2d.B2Body, len(digits))
	h.joints = make([]*box2d.B2RevoluteJoint, 0, want)
	h.lower = make([]float64, 0, want)
	h.upper = make([]float64, 0, want)
	h.targets = make([]float64, 0, want)

	index := 0
	for i, d := range digits {
		n := len(d.halfLengths)
		h.links[i] = h.buildDigit(d, qpos[index:index+n])
		index += n
	}
	return nil
}

func (h *Hand) buildTable() {
	def := box2d.MakeB2BodyDef()
	def.Type = staticBody
	def.Position = box2d.MakeB2Vec2(0, TableY-TableHalfHeight)
	h.table = h.world.CreateBody(&def)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(TableHalfWidth, TableHalfHeight)

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Friction = 0.8
	h.table.CreateFixtureFromDef(&fix)
}

func (h *Hand) buildPalm() {
	def := box2d.MakeB2BodyDef()
	def.Type = staticBody
	def.Position = box2d.MakeB2Vec2(0, 0)
	h.palm = h.world.CreateBody(&def)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(PalmHalfWidth, PalmHalfHeight)

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Filter = handFilter()
	h.palm.CreateFixtureFromDef(&fix)
}

// buildDigit creates the phalanges and joints of a digit posed at
// joint angles q, returning the phalanges from base to tip
func (h *Hand) buildDigit(d digit, q []float64) []*box2d.B2Body {
	links := make([]*box2d.B2Body, len(d.halfLengths))

	parent := h.palm
	parentAnchor := d.base
	joint := d.base
	angle := d.baseAngle

	for i, l := range d.halfLengths {
		qi := floatutils.Clip(q[i], d.lower, d.upper)
		angle += qi

		// Each phalanx's long axis is its local y axis
		dir := box2d.MakeB2Vec2(-math.Sin(angle), math.Cos(angle))

		def := box2d.MakeB2BodyDef()
		def.Type = dynamicBody
		def.Position = box2d.MakeB2Vec2(joint.X+dir.X*l, joint.Y+dir.Y*l)
		def.Angle = angle
		link := h.world.CreateBody(&def)

		shape := box2d.NewB2PolygonShape()
		shape.SetAsBox(DigitHalfWidth, l)

		fix := box2d.MakeB2FixtureDef()
		fix.Shape = shape
		fix.Density = 1.0
		fix.Friction = 0.8
		fix.Filter = handFilter()
		link.CreateFixtureFromDef(&fix)

		rjd := box2d.MakeB2RevoluteJointDef()
		rjd.BodyA = parent
		rjd.BodyB = link
		rjd.LocalAnchorA = parentAnchor
		rjd.LocalAnchorB = box2d.MakeB2Vec2(0, -l)
		if i == 0 {
			rjd.ReferenceAngle = d.baseAngle
		}
		rjd.EnableLimit = true
		rjd.LowerAngle = d.lower
		rjd.UpperAngle = d.upper
		rjd.EnableMotor = true
		rjd.MaxMotorTorque = MaxMotorTorque
		rjd.MotorSpeed = 0.0

		j := h.world.CreateJoint(&rjd).(*box2d.B2RevoluteJoint)
		h.joints = append(h.joints, j)
		h.lower = append(h.lower, d.lower)
		h.upper = append(h.upper, d.upper)
		h.targets = append(h.targets, qi)

		links[i] = link
		parent = link
		parentAnchor = box2d.MakeB2Vec2(0, l)
		joint = box2d.MakeB2Vec2(joint.X+2*dir.X*l, joint.Y+2*dir.Y*l)
	}

	return links
}

func handFilter() box2d.B2Filter {
	filter := box2d.MakeB2Filter()
	filter.GroupIndex = handGroup
	return filter
}

// Step sets the position targets of the joints from the control
// vector and advances the simulation by frameSkip physics steps
func (h *Hand) Step(ctrl []float64) error {
	if len(ctrl) != len(h.joints) {
		return fmt.Errorf("step: invalid control dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(ctrl), len(h.joints))
	}

	for i, c := range ctrl {
		c = floatutils.Clip(c, MinAction, MaxAction)
		h.targets[i] = h.lower[i] + (c-MinAction)/(MaxAction-MinAction)*
			(h.upper[i]-h.lower[i])
	}

	for frame := 0; frame < h.frameSkip; frame++ {
		for i, j := range h.joints {
			j.SetMotorSpeed(PositionGain * (h.targets[i] - j.GetJointAngle()))
		}
		h.world.Step(1.0/FPS, velocityIterations, positionIterations)
	}
	return nil
}

// Dt returns the simulated time which passes on each call to Step
func (h *Hand) Dt() float64 {
	return float64(h.frameSkip) / FPS
}

// QPos returns the joint angles of the hand
func (h *Hand) QPos() []float64 {
	qpos := make([]float64, len(h.joints))
	for i, j := range h.joints {
		qpos[i] = j.GetJointAngle()
	}
	return qpos
}

// QVel returns the joint angular velocities of the hand
func (h *Hand) QVel() []float64 {
	qvel := make([]float64, len(h.joints))
	for i, j := range h.joints {
		qvel[i] = j.GetJointSpeed()
	}
	return qvel
}

// ActionBounds returns the element-wise lower and upper bounds on
// control vectors
func (h *Hand) ActionBounds() (low, high []float64) {
	low = make([]float64, len(h.joints))
	high = make([]float64, len(h.joints))
	for i := range low {
		low[i] = MinAction
		high[i] = MaxAction
	}
	return low, high
}

// Touch returns the touch sensor readings of each fingertip, in digit
// order. A reading is 1 if the distal phalanx is in contact with the
// table and 0 otherwise.
func (h *Hand) Touch() []float64 {
	touch := make([]float64, len(digits))
	for i, links := range h.links {
		distal := links[len(links)-1]
		for edge := distal.GetContactList(); edge != nil; edge = edge.Next {
			if edge.Contact.IsTouching() {
				touch[i] = 1.0
				break
			}
		}
	}
	return touch
}

// SitePos returns the (x, y, z) world position of a named site. The
// hand is planar, so z is always 0. Available sites are "palm" and,
// for each digit, "<digit>_base" and "<digit>_tip".
func (h *Hand) SitePos(name string) ([]float64, error) {
	if name == "palm" {
		p := h.palm.GetPosition()
		return []float64{p.X, p.Y, 0}, nil
	}

	for i, d := range digits {
		switch name {
		case d.name + "_base":
			p := h.palm.GetWorldPoint(d.base)
			return []float64{p.X, p.Y, 0}, nil

		case d.name + "_tip":
			last := len(d.halfLengths) - 1
			tip := box2d.MakeB2Vec2(0, d.halfLengths[last])
			p := h.links[i][last].GetWorldPoint(tip)
			return []float64{p.X, p.Y, 0}, nil
		}
	}

	return nil, fmt.Errorf("sitePos: no such site '%v'", name)
}

// worldToPixel converts world coordinates to pixel coordinates in an
// image of width w and height ht
func worldToPixel(v box2d.B2Vec2, w, ht int) (float64, float64) {
	scale := float64(w) / viewWidth
	x := float64(w)/2 + scale*v.X
	y := float64(ht)/2 - scale*(v.Y-viewCentreY)
	return x, y
}

// Render draws the hand and table into a new w x ht image
func (h *Hand) Render(w, ht int) (image.Image, error) {
	if w <= 0 || ht <= 0 {
		return nil, fmt.Errorf("render: invalid image size %vx%v", w, ht)
	}

	dc := gg.NewContext(w, ht)
	dc.SetColor(color.RGBA{R: 30, G: 30, B: 30, A: 255})
	dc.Clear()

	h.drawBody(dc, h.table, h.tableColour, w, ht)
	h.drawBody(dc, h.palm, h.palmColour, w, ht)
	for i, links := range h.links {
		c := h.digitColour
		if digits[i].name == "th" {
			c = h.thumbColour
		}
		for _, link := range links {
			h.drawBody(dc, link, c, w, ht)
		}
	}

	return dc.Image(), nil
}

func (h *Hand) drawBody(dc *gg.Context, body *box2d.B2Body, c color.Color,
	w, ht int) {
	fix := body.GetFixtureList()
	for fix != nil {
		shape, ok := fix.M_shape.(*box2d.B2PolygonShape)
		if !ok {
			fix = fix.M_next
			continue
		}

		dc.ClearPath()
		for i := 0; i < shape.M_count; i++ {
			vertex := box2d.B2TransformVec2Mul(body.M_xf, shape.M_vertices[i])
			x, y := worldToPixel(vertex, w, ht)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
		dc.SetColor(c)
		dc.Fill()

		fix = fix.M_next
	}
}

// Close releases the simulation
func (h *Hand) Close() error {
	h.links = nil
	h.joints = nil
	return nil
}
