// Package ganzhi derives sexagesimal (stem-branch) calendar positions:
// four pillars, five-element proportions, shensha markers, ten-god
// relations, and auspicious-day rankings. Everything in this package is
// pure; calendar conversion and timezone data are supplied by the caller.
package ganzhi

import (
	"errors"
	"fmt"
)

// Errors surfaced by pillar derivation. They are distinct values so
// callers can branch on them; lookups never fail silently into a
// valid-looking pillar.
var (
	// ErrMissingInput is returned when a birth date is absent and no
	// pillar can be derived.
	ErrMissingInput = errors.New("birth date or time missing")

	// ErrOutOfRange is returned when the calendar conversion rejects a
	// date outside its supported range.
	ErrOutOfRange = errors.New("calendar conversion out of range")
)

// Element is one of the five phases.
type Element int

// Elements in the order used by Distribution.
const (
	Metal Element = iota
	Wood
	Water
	Fire
	Earth
)

func (e Element) String() string {
	switch e {
	case Metal:
		return "金"
	case Wood:
		return "木"
	case Water:
		return "水"
	case Fire:
		return "火"
	case Earth:
		return "土"
	}
	return "?"
}

// Stems are the ten heavenly stems in cyclic order.
var Stems = []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// Branches are the twelve earthly branches in cyclic order.
var Branches = []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

// stemElements maps each stem to its element (two stems per element).
var stemElements = map[string]Element{
	"甲": Wood, "乙": Wood,
	"丙": Fire, "丁": Fire,
	"戊": Earth, "己": Earth,
	"庚": Metal, "辛": Metal,
	"壬": Water, "癸": Water,
}

// branchElements maps each branch to its element. Earth owns four
// branches; the other elements own two each.
var branchElements = map[string]Element{
	"子": Water, "亥": Water,
	"寅": Wood, "卯": Wood,
	"巳": Fire, "午": Fire,
	"申": Metal, "酉": Metal,
	"丑": Earth, "辰": Earth, "未": Earth, "戌": Earth,
}

// stemIndex returns the cyclic index of a stem, or -1 if unknown.
func stemIndex(stem string) int {
	for i, s := range Stems {
		if s == stem {
			return i
		}
	}
	return -1
}

// branchIndex returns the cyclic index of a branch, or -1 if unknown.
func branchIndex(branch string) int {
	for i, b := range Branches {
		if b == branch {
			return i
		}
	}
	return -1
}

// ElementOfStem returns a stem's element. Unknown stems fall back to
// the first table row so derivation stays total.
func ElementOfStem(stem string) Element {
	if e, ok := stemElements[stem]; ok {
		return e
	}
	return stemElements[Stems[0]]
}

// ElementOfBranch returns a branch's element, with the same first-row
// fallback for unknown branches.
func ElementOfBranch(branch string) Element {
	if e, ok := branchElements[branch]; ok {
		return e
	}
	return branchElements[Branches[0]]
}

// Pillar is an ordered stem-branch pair rendered as a two-rune code.
type Pillar struct {
	Stem   string `json:"stem"`
	Branch string `json:"branch"`
}

// SexagesimalPillar returns the nth pillar of the 60-combination cycle
// (stem mod 10 and branch mod 12 advancing in lock-step).
func SexagesimalPillar(n int) Pillar {
	n = ((n % 60) + 60) % 60
	return Pillar{Stem: Stems[n%10], Branch: Branches[n%12]}
}

// ParsePillar parses a two-rune code such as "甲子".
func ParsePillar(code string) (Pillar, error) {
	runes := []rune(code)
	if len(runes) != 2 {
		return Pillar{}, fmt.Errorf("pillar code must be two runes, got %q", code)
	}
	p := Pillar{Stem: string(runes[0]), Branch: string(runes[1])}
	if stemIndex(p.Stem) < 0 || branchIndex(p.Branch) < 0 {
		return Pillar{}, fmt.Errorf("unknown pillar code %q", code)
	}
	return p, nil
}

func (p Pillar) String() string {
	return p.Stem + p.Branch
}

// IsZero reports whether the pillar is absent.
func (p Pillar) IsZero() bool {
	return p.Stem == "" && p.Branch == ""
}
