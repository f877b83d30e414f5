package storage

import "strings"

// Order selects one of the fixed sort specifications ListTasks accepts.
// Only columns named in orderKeys ever reach the ORDER BY clause.
type Order int

const (
	OrderPriorityRecency Order = iota
	OrderRecency
	OrderPriority
)

const DefaultOrder = OrderPriorityRecency

type orderKey struct {
	column string
	desc   bool
}

var orderLabels = [...]string{
	OrderPriorityRecency: "priority,created_at",
	OrderRecency:         "created_at",
	OrderPriority:        "priority",
}

var orderKeys = [...][]orderKey{
	OrderPriorityRecency: {{column: "priority", desc: true}, {column: "created_at", desc: true}},
	OrderRecency:         {{column: "created_at", desc: true}},
	OrderPriority:        {{column: "priority", desc: true}},
}

// Orders lists every order in menu sequence.
func Orders() []Order {
	return []Order{OrderPriorityRecency, OrderRecency, OrderPriority}
}

// ParseOrder resolves a label such as "priority,created_at".
func ParseOrder(label string) (Order, bool) {
	label = strings.TrimSpace(label)
	for _, o := range Orders() {
		if orderLabels[o] == label {
			return o, true
		}
	}
	return DefaultOrder, false
}

func (o Order) valid() bool {
	return o >= 0 && int(o) < len(orderLabels)
}

func (o Order) String() string {
	if !o.valid() {
		return orderLabels[DefaultOrder]
	}
	return orderLabels[o]
}

// Next returns the following order, wrapping around.
func (o Order) Next() Order {
	if !o.valid() {
		return DefaultOrder
	}
	return Order((int(o) + 1) % len(orderLabels))
}

func (o Order) clause() string {
	if !o.valid() {
		o = DefaultOrder
	}
	keys := orderKeys[o]
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		dir := "ASC"
		if k.desc {
			dir = "DESC"
		}
		parts = append(parts, k.column+" "+dir)
	}
	return strings.Join(parts, ", ")
}
