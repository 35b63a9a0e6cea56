package model

import (
	"fmt"
	"strings"
)

// Stance is the binary position a comment or group argues.
type Stance string

const (
	StanceFor     Stance = "for"
	StanceAgainst Stance = "against"
)

func (s Stance) Valid() bool {
	return s == StanceFor || s == StanceAgainst
}

// Opposite returns the stance a counter-group must hold.
func (s Stance) Opposite() Stance {
	if s == StanceFor {
		return StanceAgainst
	}
	return StanceFor
}

func ParseStance(raw string) (Stance, error) {
	s := Stance(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: stance must be %q or %q, got %q", ErrInvalidInput, StanceFor, StanceAgainst, raw)
	}
	return s, nil
}
