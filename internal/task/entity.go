// AngelaMos | 2026
// entity.go

package task

import (
	"fmt"
	"time"
)

type Status int16

const (
	StatusClosed Status = 0
	StatusOpen   Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("Status(%d)", int16(s))
	}
}

// Task rows change after creation only through status flips and deletion.
type Task struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	DueDate    time.Time `db:"due_date"`
	Priority   int       `db:"priority"`
	PostedDate time.Time `db:"posted_date"`
	Status     Status    `db:"status"`
	UserID     int64     `db:"user_id"`
}

func (t *Task) String() string {
	return fmt.Sprintf("<name %s>", t.Name)
}

// Listed is a task joined with its owner's name for the listing.
type Listed struct {
	Task
	OwnerName string `db:"owner_name"`
}

type Counts struct {
	Open   int64 `db:"open"   json:"open"`
	Closed int64 `db:"closed" json:"closed"`
}
