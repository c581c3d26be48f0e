package memory

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is returned by ValidateParameters and NewModel.
var ErrInvalidParameters = errors.New("memory: parameters out of bounds")

// MaxInterval caps the scheduling interval in days.
const MaxInterval = 36500

// MinStability is the smallest stability a graded card can reach. Below it
// a failure leaves stability unchanged.
const MinStability = 0.01

// DefaultParameters are the model weights.
var DefaultParameters = [19]float64{
	0.4072, 1.1829, 3.1262, 15.4722, // w[0..3]  initial stability per grade
	7.2102, 0.5316, 1.0651, 0.0234, // w[4..7]  difficulty
	1.616, 0.1544, 1.0824, // w[8..10] recall stability
	1.9813, 0.0953, 0.2975, 2.2042, // w[11..14] forget stability
	0.2407, 2.9466, // w[15..16] hard penalty, easy bonus
	0.5034, 0.6567, // w[17..18] same-day review
}

var (
	lowerBounds = [19]float64{
		0.01, 0.01, 0.01, 0.01,
		1, 0.001, 0.001, 0.001,
		0, 0, 0.01,
		0.01, 0.001, 0.001, 0,
		0.01, 1,
		0.01, 0,
	}
	upperBounds = [19]float64{
		100, 100, 100, 100,
		10, 4, 4, 0.75,
		4.5, 0.8, 3.5,
		5, 0.25, 0.9, 4,
		1, 6,
		2, 2,
	}
)

// sameDayExponent is the S^-k damping applied to same-day reviews. It stops
// rapid-fire retries from compounding stability growth.
const sameDayExponent = 0.5

// Card is the memory state of one learned item. It is a value type; every
// update produces a new Card.
type Card struct {
	Difficulty float64 `json:"difficulty"`
	Stability  float64 `json:"stability"`
	Interval   int     `json:"interval"`
}

// ValidateParameters checks every weight against its bounds.
func ValidateParameters(p [19]float64) error {
	for i := range p {
		if math.IsNaN(p[i]) || p[i] < lowerBounds[i] || p[i] > upperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				ErrInvalidParameters, i, p[i], lowerBounds[i], upperBounds[i])
		}
	}
	return nil
}

// Model holds a validated parameter set. The zero value is not usable; use
// NewModel or Default.
type Model struct {
	w [19]float64
}

// NewModel validates p and returns a Model.
func NewModel(p [19]float64) (*Model, error) {
	if err := ValidateParameters(p); err != nil {
		return nil, err
	}
	return &Model{w: p}, nil
}

// Default returns a Model using DefaultParameters.
func Default() *Model {
	return &Model{w: DefaultParameters}
}

// Retrievability returns the probability of recall after elapsedDays.
func Retrievability(c Card, elapsedDays float64) float64 {
	if elapsedDays <= 0 || c.Stability <= 0 {
		return 1
	}
	return 1 / (1 + elapsedDays/(9*c.Stability))
}

// NewCard initializes a card from the first grade it receives.
func (m *Model) NewCard(g Grade) Card {
	g = normalize(g)
	s := m.w[g-1]
	return Card{
		Difficulty: clampD(m.initDifficulty(g)),
		Stability:  s,
		Interval:   interval(s),
	}
}

// GradeCard applies a review given daysSinceReview after the previous one.
// Reviews less than a day apart take the damped same-day branch.
func (m *Model) GradeCard(c Card, daysSinceReview float64, g Grade) Card {
	g = normalize(g)
	if daysSinceReview < 0 {
		daysSinceReview = 0
	}

	var s float64
	if daysSinceReview < 1 {
		s = m.sameDayStability(c.Stability, g)
	} else {
		r := Retrievability(c, daysSinceReview)
		if g == Again {
			s = m.forgetStability(c.Difficulty, c.Stability, r)
		} else {
			s = m.recallStability(c.Difficulty, c.Stability, r, g)
		}
	}
	s = math.Max(s, MinStability)

	return Card{
		Difficulty: m.nextDifficulty(c.Difficulty, g),
		Stability:  s,
		Interval:   interval(s),
	}
}

// initDifficulty is D0(G) = w4 - e^(w5·(G-1)) + 1, unclamped.
func (m *Model) initDifficulty(g Grade) float64 {
	return m.w[4] - math.Exp(m.w[5]*float64(g-1)) + 1
}

// nextDifficulty applies ΔD = -w6·(G-3) with linear damping and mean
// reversion toward D0(Easy). Failures never make a card easier and
// successes never make it harder.
func (m *Model) nextDifficulty(d float64, g Grade) float64 {
	delta := -m.w[6] * (float64(g) - 3)
	damped := d + (10-d)*delta/9
	next := m.w[7]*m.initDifficulty(Easy) + (1-m.w[7])*damped
	switch g {
	case Again, Hard:
		next = math.Max(next, d)
	default:
		next = math.Min(next, d)
	}
	return clampD(next)
}

// recallStability is S·(1 + e^w8·(11-D)·S^-w9·(e^(w10·(1-R)) - 1)·penalty·bonus).
// Lower R at review time yields a larger increase.
func (m *Model) recallStability(d, s, r float64, g Grade) float64 {
	hardPenalty := 1.0
	if g == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if g == Easy {
		easyBonus = m.w[16]
	}
	return s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp((1-r)*m.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability is min(w11·D^-w12·((S+1)^w13 - 1)·e^(w14·(1-R)), S·e^(-w17·w18)).
// The second term keeps the result strictly below S.
func (m *Model) forgetStability(d, s, r float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-r)*m.w[14])
	return math.Min(long, s*m.forgetCeiling())
}

// sameDayStability is S·e^(w17·(G-3+w18))·S^-k, bounded per grade.
func (m *Model) sameDayStability(s float64, g Grade) float64 {
	inc := math.Exp(m.w[17]*(float64(g)-3+m.w[18])) * math.Pow(s, -sameDayExponent)
	switch g {
	case Again:
		inc = math.Min(inc, m.forgetCeiling())
	case Hard:
		inc = math.Min(inc, 1)
	default:
		inc = math.Max(inc, 1)
	}
	return s * inc
}

// forgetCeiling is e^(-w17·w18), always < 1 for in-bounds weights with w18 > 0.
func (m *Model) forgetCeiling() float64 {
	c := math.Exp(-m.w[17] * m.w[18])
	if c >= 1 {
		c = 0.95
	}
	return c
}

func interval(s float64) int {
	ivl := int(math.Round(s))
	if ivl < 1 {
		ivl = 1
	}
	if ivl > MaxInterval {
		ivl = MaxInterval
	}
	return ivl
}

// normalize maps out-of-range grades onto the nearest valid one so the math
// never indexes outside the weight table.
func normalize(g Grade) Grade {
	if g < Again {
		return Again
	}
	if g > Easy {
		return Easy
	}
	return g
}

func clampD(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
