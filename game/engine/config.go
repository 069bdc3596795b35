package engine

import (
	"errors"
	"fmt"
)

const (
	MinTimerSeconds     = 30
	MaxTimerSeconds     = 300
	TimerStepSeconds    = 30
	DefaultTimerSeconds = 60
)

var ErrInvalidParameters = errors.New("invalid game parameters")

// Parameters are the options a host picks when creating a game
type Parameters struct {
	TimerSeconds int    `json:"timer_seconds"`
	DictionaryID string `json:"dictionary_id"`
	Mode         Mode   `json:"mode"`
	Level        Level  `json:"level,omitempty"` // solo games only
}

// WithDefaults fills unset fields
func (p Parameters) WithDefaults(defaultDictionary string) Parameters {
	if p.TimerSeconds == 0 {
		p.TimerSeconds = DefaultTimerSeconds
	}
	if p.DictionaryID == "" {
		p.DictionaryID = defaultDictionary
	}
	if p.Mode == "" {
		p.Mode = ModeClassic
	}
	if p.Level == "" {
		p.Level = LevelBeginner
	}
	return p
}

// ValidateParameters checks the timer, the mode and the level
func ValidateParameters(p Parameters) error {
	if p.TimerSeconds < MinTimerSeconds || p.TimerSeconds > MaxTimerSeconds {
		return fmt.Errorf("%w: timer must be between %d and %d seconds", ErrInvalidParameters, MinTimerSeconds, MaxTimerSeconds)
	}
	if p.TimerSeconds%TimerStepSeconds != 0 {
		return fmt.Errorf("%w: timer must be a multiple of %d seconds", ErrInvalidParameters, TimerStepSeconds)
	}
	if p.DictionaryID == "" {
		return fmt.Errorf("%w: dictionary is required", ErrInvalidParameters)
	}
	switch p.Mode {
	case ModeClassic, ModeLog2990:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidParameters, p.Mode)
	}
	switch p.Level {
	case "", LevelBeginner, LevelExpert:
	default:
		return fmt.Errorf("%w: unknown level %q", ErrInvalidParameters, p.Level)
	}
	return nil
}
