package matching

import (
	"time"

	"tradeanalytics/src/model"
)

// unit is one contract of an execution after quantity explosion.
type unit struct {
	side        model.Side
	price       float64
	at          time.Time
	commission  float64
	symbol      string
	root        string
	description string
}

// positionQueue holds resting units of a single side in arrival order.
// The zero value is an empty queue.
type positionQueue struct {
	side  model.Side
	units []unit
	head  int
}

func (q *positionQueue) Len() int {
	return len(q.units) - q.head
}

// accepts reports whether u extends (or opens) the resting position.
func (q *positionQueue) accepts(u unit) bool {
	return q.Len() == 0 || q.side == u.side
}

func (q *positionQueue) push(u unit) {
	if q.Len() == 0 {
		q.units = q.units[:0]
		q.head = 0
		q.side = u.side
	}
	q.units = append(q.units, u)
}

// pop removes the oldest resting unit. Callers check Len first.
func (q *positionQueue) pop() unit {
	u := q.units[q.head]
	q.units[q.head] = unit{}
	q.head++
	return u
}
