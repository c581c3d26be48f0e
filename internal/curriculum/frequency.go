package curriculum

import (
	"math"
	"strconv"
	"strings"
)

// ConcertA is the reference pitch for A4 in hertz.
const ConcertA = 440.0

var pitchClass = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Frequency returns the equal-temperament frequency of a note name such as
// "A4", "C#5", "E♭3" or "Bb2". Unknown names return 0.
func Frequency(unit string) float64 {
	midi, ok := midiNumber(NormalizeUnit(unit))
	if !ok {
		return 0
	}
	return ConcertA * math.Pow(2, float64(midi-69)/12)
}

func midiNumber(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	pc, ok := pitchClass[name[0]]
	if !ok {
		return 0, false
	}
	rest := name[1:]
	for {
		switch {
		case strings.HasPrefix(rest, "#"):
			pc++
			rest = rest[1:]
		case strings.HasPrefix(rest, "♯"):
			pc++
			rest = rest[len("♯"):]
		case strings.HasPrefix(rest, "b"):
			pc--
			rest = rest[1:]
		case strings.HasPrefix(rest, "♭"):
			pc--
			rest = rest[len("♭"):]
		default:
			octave, err := strconv.Atoi(rest)
			if err != nil || octave < -1 || octave > 9 {
				return 0, false
			}
			return (octave+1)*12 + pc, true
		}
	}
}
