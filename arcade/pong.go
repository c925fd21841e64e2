package arcade

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/retroterm/neural"
)

// Pong actions, in brain output order.
const (
	PongUp = iota
	PongStay
	PongDown
	PongActions
)

// PongConfig sizes the arena and sets the pace of play.
type PongConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	PaddleHeight  float64 `yaml:"paddle_height"`
	PaddleInset   float64 `yaml:"paddle_inset"`
	PaddleSpeed   float64 `yaml:"paddle_speed"`
	OpponentSpeed float64 `yaml:"opponent_speed"`
	BallSpeed     float64 `yaml:"ball_speed"`
	MaxTicks      int     `yaml:"max_ticks"`
	PointsToWin   int     `yaml:"points_to_win"`
}

// DefaultPongConfig returns a small arena the opponent can be beaten in.
func DefaultPongConfig() PongConfig {
	return PongConfig{
		Width:         80,
		Height:        40,
		PaddleHeight:  8,
		PaddleInset:   2,
		PaddleSpeed:   1.2,
		OpponentSpeed: 0.45,
		BallSpeed:     1,
		MaxTicks:      3000,
		PointsToWin:   5,
	}
}

// PongState is the physical state of a match. Paddle Y values are centres.
type PongState struct {
	Width, Height  float64
	PaddleHeight   float64
	LeftX, RightX  float64
	LeftY, RightY  float64
	BallX, BallY   float64
	BallVX, BallVY float64
	// Speed is the nominal ball speed, used to normalise velocities.
	Speed float64
}

// Pong is a match between a brain on the left paddle and a tracking
// opponent on the right.
type Pong struct {
	cfg   PongConfig
	rng   *rand.Rand
	brain *neural.Brain
	state PongState

	ticks         int
	hits          int
	pointsFor     int
	pointsAgainst int
	rally         int
	longestRally  int

	inputs []float32
}

// NewPong starts a match. All randomness comes from seed.
func NewPong(cfg PongConfig, brain *neural.Brain, seed int64) *Pong {
	p := &Pong{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		brain:  brain,
		inputs: make([]float32, 0, PongInputs),
		state: PongState{
			Width:        cfg.Width,
			Height:       cfg.Height,
			PaddleHeight: cfg.PaddleHeight,
			LeftX:        cfg.PaddleInset,
			RightX:       cfg.Width - cfg.PaddleInset,
			LeftY:        cfg.Height / 2,
			RightY:       cfg.Height / 2,
			Speed:        cfg.BallSpeed,
		},
	}
	p.serve()
	return p
}

func (p *Pong) serve() {
	s := &p.state
	s.BallX = s.Width / 2
	s.BallY = s.Height / 2
	s.BallVX = p.cfg.BallSpeed
	if p.rng.Intn(2) == 0 {
		s.BallVX = -s.BallVX
	}
	s.BallVY = p.cfg.BallSpeed * (p.rng.Float64() - 0.5)
	p.rally = 0
}

// State returns a copy of the current physical state.
func (p *Pong) State() PongState { return p.state }

func (p *Pong) Brain() *neural.Brain { return p.brain }

func (p *Pong) Ticks() int { return p.ticks }

// Score returns points for and against the brain.
func (p *Pong) Score() (left, right int) { return p.pointsFor, p.pointsAgainst }

func (p *Pong) Done() bool {
	return p.ticks >= p.cfg.MaxTicks ||
		p.pointsFor >= p.cfg.PointsToWin ||
		p.pointsAgainst >= p.cfg.PointsToWin
}

// Rating rewards returns and points scored and penalises points conceded,
// with a small bonus for the longest rally.
func (p *Pong) Rating() float64 {
	return float64(p.hits) + 3*float64(p.pointsFor) - float64(p.pointsAgainst) + 0.1*float64(p.longestRally)
}

func (p *Pong) Stats() map[string]float64 {
	return map[string]float64{
		"hits":           float64(p.hits),
		"points_for":     float64(p.pointsFor),
		"points_against": float64(p.pointsAgainst),
		"longest_rally":  float64(p.longestRally),
	}
}

func (p *Pong) Tick() {
	if p.Done() {
		return
	}
	p.ticks++
	s := &p.state

	// Brain paddle
	p.inputs = AppendPong(p.inputs[:0], p.state)
	switch p.brain.ChooseHighestOutput(p.inputs) {
	case PongUp:
		s.LeftY -= p.cfg.PaddleSpeed
	case PongDown:
		s.LeftY += p.cfg.PaddleSpeed
	}
	s.LeftY = p.clampPaddle(s.LeftY)

	// Opponent tracks the ball at limited speed
	dy := s.BallY - s.RightY
	s.RightY = p.clampPaddle(s.RightY + math.Max(-p.cfg.OpponentSpeed, math.Min(p.cfg.OpponentSpeed, dy)))

	// Ball
	s.BallX += s.BallVX
	s.BallY += s.BallVY
	if s.BallY < 0 {
		s.BallY = -s.BallY
		s.BallVY = -s.BallVY
	} else if s.BallY > s.Height {
		s.BallY = 2*s.Height - s.BallY
		s.BallVY = -s.BallVY
	}

	half := s.PaddleHeight / 2
	switch {
	case s.BallVX < 0 && s.BallX <= s.LeftX:
		if math.Abs(s.BallY-s.LeftY) <= half {
			p.bounce(s.LeftX, s.LeftY)
			p.hits++
		} else {
			p.pointsAgainst++
			p.serve()
		}
	case s.BallVX > 0 && s.BallX >= s.RightX:
		if math.Abs(s.BallY-s.RightY) <= half {
			p.bounce(s.RightX, s.RightY)
		} else {
			p.pointsFor++
			p.serve()
		}
	}
}

// bounce reflects the ball off a paddle at x. Hitting off-centre steepens
// the return.
func (p *Pong) bounce(x, paddleY float64) {
	s := &p.state
	s.BallX = 2*x - s.BallX
	s.BallVX = -s.BallVX
	offset := (s.BallY - paddleY) / (s.PaddleHeight / 2)
	s.BallVY = 0.75 * p.cfg.BallSpeed * offset

	p.rally++
	if p.rally > p.longestRally {
		p.longestRally = p.rally
	}
}

func (p *Pong) clampPaddle(y float64) float64 {
	half := p.state.PaddleHeight / 2
	return math.Max(half, math.Min(p.state.Height-half, y))
}

// PongFactory creates Pong matches with a shared config.
type PongFactory struct {
	Config PongConfig
}

func (f PongFactory) Name() string { return "pong" }

func (f PongFactory) New(brain *neural.Brain, seed int64) Game {
	return NewPong(f.Config, brain, seed)
}

// Probe encodes the serve position of a fresh match.
func (f PongFactory) Probe() []float32 {
	c := f.Config
	return EncodePong(PongState{
		Width:  c.Width,
		Height: c.Height,
		LeftY:  c.Height / 2,
		RightY: c.Height / 2,
		BallX:  c.Width / 2,
		BallY:  c.Height / 2,
		BallVX: c.BallSpeed,
		Speed:  c.BallSpeed,
	})
}

func (f PongFactory) Outputs() int { return PongActions }
