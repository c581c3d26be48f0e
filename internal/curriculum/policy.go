package curriculum

import (
	"fmt"
	"time"
)

// Policy holds the progression and session thresholds. Zero values are
// replaced by the defaults below.
type Policy struct {
	PairStreakThreshold   int     `yaml:"pair_streak_threshold,omitempty" json:"pair_streak_threshold,omitempty"`
	WindowSize            int     `yaml:"window_size,omitempty" json:"window_size,omitempty"`
	WindowThreshold       float64 `yaml:"window_threshold,omitempty" json:"window_threshold,omitempty"`
	UnlockCooldown        int     `yaml:"unlock_cooldown,omitempty" json:"unlock_cooldown,omitempty"`
	AccelerationThreshold int     `yaml:"acceleration_threshold,omitempty" json:"acceleration_threshold,omitempty"`
	ReliableThreshold     float64 `yaml:"reliable_threshold,omitempty" json:"reliable_threshold,omitempty"`
	NewPerSession         int     `yaml:"new_per_session,omitempty" json:"new_per_session,omitempty"`
	SessionSize           int     `yaml:"session_size,omitempty" json:"session_size,omitempty"`
	InactivityGapMinutes  int     `yaml:"inactivity_gap_minutes,omitempty" json:"inactivity_gap_minutes,omitempty"`
	OrderingInterval      int     `yaml:"ordering_interval,omitempty" json:"ordering_interval,omitempty"`
	OrderingExitStreak    int     `yaml:"ordering_exit_streak,omitempty" json:"ordering_exit_streak,omitempty"`
	OrderingSize          int     `yaml:"ordering_size,omitempty" json:"ordering_size,omitempty"`
	StrugglingWindow      int     `yaml:"struggling_window,omitempty" json:"struggling_window,omitempty"`
	StrugglingAccuracy    float64 `yaml:"struggling_accuracy,omitempty" json:"struggling_accuracy,omitempty"`
	EasyResponseMs        int     `yaml:"easy_response_ms,omitempty" json:"easy_response_ms,omitempty"`
}

// DefaultPolicy is the policy used when a curriculum leaves fields unset.
var DefaultPolicy = Policy{
	PairStreakThreshold:   4,
	WindowSize:            20,
	WindowThreshold:       0.9,
	UnlockCooldown:        10,
	AccelerationThreshold: 10,
	ReliableThreshold:     0.9,
	NewPerSession:         3,
	SessionSize:           10,
	InactivityGapMinutes:  30,
	OrderingInterval:      25,
	OrderingExitStreak:    3,
	OrderingSize:          4,
	StrugglingWindow:      10,
	StrugglingAccuracy:    0.5,
	EasyResponseMs:        1500,
}

// InactivityGap is the idle time after which a new session starts.
func (p Policy) InactivityGap() time.Duration {
	return time.Duration(p.InactivityGapMinutes) * time.Minute
}

// EasyResponse is the response time under which a first-attempt correct
// answer is graded Easy. Zero disables Easy grading.
func (p Policy) EasyResponse() time.Duration {
	return time.Duration(p.EasyResponseMs) * time.Millisecond
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy
	setInt(&p.PairStreakThreshold, d.PairStreakThreshold)
	setInt(&p.WindowSize, d.WindowSize)
	setFloat(&p.WindowThreshold, d.WindowThreshold)
	setInt(&p.UnlockCooldown, d.UnlockCooldown)
	setInt(&p.AccelerationThreshold, d.AccelerationThreshold)
	setFloat(&p.ReliableThreshold, d.ReliableThreshold)
	setInt(&p.NewPerSession, d.NewPerSession)
	setInt(&p.SessionSize, d.SessionSize)
	setInt(&p.InactivityGapMinutes, d.InactivityGapMinutes)
	setInt(&p.OrderingInterval, d.OrderingInterval)
	setInt(&p.OrderingExitStreak, d.OrderingExitStreak)
	setInt(&p.OrderingSize, d.OrderingSize)
	setInt(&p.StrugglingWindow, d.StrugglingWindow)
	setFloat(&p.StrugglingAccuracy, d.StrugglingAccuracy)
	setInt(&p.EasyResponseMs, d.EasyResponseMs)
	return p
}

func (p Policy) validate() error {
	switch {
	case p.PairStreakThreshold < 1:
		return fmt.Errorf("policy.pair_streak_threshold must be positive")
	case p.WindowSize < 1:
		return fmt.Errorf("policy.window_size must be positive")
	case p.WindowThreshold <= 0 || p.WindowThreshold > 1:
		return fmt.Errorf("policy.window_threshold %v out of range (0, 1]", p.WindowThreshold)
	case p.UnlockCooldown < 0:
		return fmt.Errorf("policy.unlock_cooldown must not be negative")
	case p.AccelerationThreshold < 1:
		return fmt.Errorf("policy.acceleration_threshold must be positive")
	case p.ReliableThreshold <= 0 || p.ReliableThreshold >= 1:
		return fmt.Errorf("policy.reliable_threshold %v out of range (0, 1)", p.ReliableThreshold)
	case p.SessionSize < 1:
		return fmt.Errorf("policy.session_size must be positive")
	case p.NewPerSession < 0 || p.NewPerSession > p.SessionSize:
		return fmt.Errorf("policy.new_per_session must be within [0, session_size]")
	case p.OrderingSize < 2:
		return fmt.Errorf("policy.ordering_size must be at least 2")
	case p.StrugglingAccuracy <= 0 || p.StrugglingAccuracy > 1:
		return fmt.Errorf("policy.struggling_accuracy %v out of range (0, 1]", p.StrugglingAccuracy)
	}
	return nil
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
