package ui

import (
	"strconv"
	"strings"
)

var priorityLabels = []string{"1 - High", "2 - Medium", "3 - Low"}

const defaultPriorityLabel = "2 - Medium"

// prioritySelect is an option menu over priorityLabels.
type prioritySelect struct {
	label string
}

func newPrioritySelect() prioritySelect {
	return prioritySelect{label: defaultPriorityLabel}
}

func (p prioritySelect) shift(delta int) prioritySelect {
	idx := 1
	for i, l := range priorityLabels {
		if l == p.label {
			idx = i
			break
		}
	}
	p.label = priorityLabels[wrapIndex(idx+delta, len(priorityLabels))]
	return p
}

func (p prioritySelect) value() int {
	return parsePriorityLabel(p.label)
}

// parsePriorityLabel reads the number in front of " - ". Anything it cannot
// use becomes Medium.
func parsePriorityLabel(v string) int {
	head, _, _ := strings.Cut(strings.TrimSpace(v), " - ")
	p, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 2
	}
	return NormalizePriority(p)
}

func priorityLabel(p int) string {
	return priorityLabels[NormalizePriority(p)-1]
}

func priorityName(p int) string {
	_, name, _ := strings.Cut(priorityLabel(p), " - ")
	return name
}

type focus int

const (
	focusSearch focus = iota
	focusName
	focusDesc
	focusDue
	focusPriority
	focusList
	focusDetailName
	focusDetailDesc
	focusDetailDue
	focusDetailPriority
	focusCount
)

func (f focus) inForm() bool {
	return f >= focusName && f <= focusPriority
}

func (f focus) inDetails() bool {
	return f >= focusDetailName && f <= focusDetailPriority
}

type actionKind int

const (
	actionView actionKind = iota
	actionToggle
	actionDelete
	actionConfirmDelete
)

// rowAction is a card command bound to the id of the card it came from.
type rowAction struct {
	kind   actionKind
	taskID int
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
