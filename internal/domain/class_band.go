package domain

import (
	"errors"
	"strings"
)

// ErrInvalidClassBand возвращается для неизвестного уровня класса
var ErrInvalidClassBand = errors.New("invalid class band")

// ClassBand is a fixed skill-level category a slot and an absence must match on
type ClassBand string

const (
	ClassBandBeginner     ClassBand = "beginner"
	ClassBandIntermediate ClassBand = "intermediate"
	ClassBandAdvanced     ClassBand = "advanced"
)

// ClassBands all known class bands in display order
var ClassBands = []ClassBand{
	ClassBandBeginner,
	ClassBandIntermediate,
	ClassBandAdvanced,
}

// IsValid returns true if the band is one of the known bands
func (b ClassBand) IsValid() bool {
	for _, known := range ClassBands {
		if b == known {
			return true
		}
	}
	return false
}

// ParseClassBand converts user input into a ClassBand
func ParseClassBand(s string) (ClassBand, error) {
	band := ClassBand(strings.ToLower(strings.TrimSpace(s)))
	if !band.IsValid() {
		return "", ErrInvalidClassBand
	}
	return band, nil
}
