package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type ChangeType string

const (
	ChangeDirect     ChangeType = "direct"
	ChangeMerge      ChangeType = "merge"
	ChangeSquash     ChangeType = "squash"
	ChangeOctopus    ChangeType = "octopus"
	ChangeRebase     ChangeType = "rebase"
	ChangeCherryPick ChangeType = "cherry-pick"
	ChangeRevert     ChangeType = "revert"
	ChangeInitial    ChangeType = "initial"
	ChangeAmend      ChangeType = "amend"
)

// ChangeTypes lists every change type in a stable order.
var ChangeTypes = []ChangeType{
	ChangeDirect, ChangeMerge, ChangeSquash, ChangeOctopus, ChangeRebase,
	ChangeCherryPick, ChangeRevert, ChangeInitial, ChangeAmend,
}

func ParseChangeType(s string) (ChangeType, error) {
	ct := ChangeType(strings.TrimSpace(s))
	if !ct.IsValid() {
		return "", errors.Wrapf(ErrUnknownChangeType, "'%v' is not one of %v", s, changeTypeNames())
	}
	return ct, nil
}

func (t ChangeType) IsValid() bool {
	_, ok := changeShapes[t]
	return ok
}

func (t ChangeType) String() string {
	return string(t)
}

// SourceBranchLimits returns how many source branches a change of this type
// can have. Unbounded maximums are math.MaxInt.
func (t ChangeType) SourceBranchLimits() (int, int) {
	s := changeShapes[t]
	return s.min, s.max
}

type changeShape struct {
	min int
	max int
}

func (s changeShape) allows(n int) bool {
	return n >= s.min && n <= s.max
}

func (s changeShape) String() string {
	switch {
	case s.min == s.max:
		return fmt.Sprintf("exactly %v", s.min)
	case s.max == math.MaxInt:
		return fmt.Sprintf("at least %v", s.min)
	case s.min == 0:
		return fmt.Sprintf("at most %v", s.max)
	default:
		return fmt.Sprintf("%v to %v", s.min, s.max)
	}
}

// Number of source branches each change type can have, following Git's
// branch topology.
var changeShapes = map[ChangeType]changeShape{
	ChangeDirect:     {0, 1},
	ChangeRebase:     {0, 1},
	ChangeCherryPick: {0, 1},
	ChangeRevert:     {0, 1},
	ChangeAmend:      {0, 1},
	ChangeInitial:    {0, 0},
	ChangeMerge:      {1, math.MaxInt},
	ChangeSquash:     {1, math.MaxInt},
	ChangeOctopus:    {2, math.MaxInt},
}

func changeTypeNames() string {
	return strings.Join(lo.Map(ChangeTypes, func(t ChangeType, _ int) string { return string(t) }), ", ")
}
