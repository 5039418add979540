// AngelaMos | 2026
// dto.go

package task

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pierkoo/flasktaskr/internal/web"
)

const (
	MinPriority = 1
	MaxPriority = 10
)

// CreateForm is the add-task form. PostedDate and Status are accepted for
// compatibility with older clients and ignored: the server stamps both.
type CreateForm struct {
	Name       string `form:"name"        validate:"required,max=255"`
	DueDate    string `form:"due_date"    validate:"required,datetime=01/02/2006"`
	Priority   string `form:"priority"    validate:"required,number,priority"`
	PostedDate string `form:"posted_date" validate:"-"`
	Status     string `form:"status"      validate:"-"`
}

var createFields = []web.Field{
	{Name: "name", Label: "Task Name"},
	{Name: "due_date", Label: "Date Due (mm/dd/yyyy)"},
	{Name: "priority", Label: "Priority"},
}

// NewTask is a validated creation request.
type NewTask struct {
	Name     string
	DueDate  time.Time
	Priority int
}

// Normalize trims surrounding whitespace so a blank name fails the
// required rule instead of being stored empty.
func (f *CreateForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.DueDate = strings.TrimSpace(f.DueDate)
	f.Priority = strings.TrimSpace(f.Priority)
}

// Parse converts a validated form. Call only after validation passed.
func (f CreateForm) Parse() (NewTask, error) {
	due, err := time.Parse(web.DateLayout, strings.TrimSpace(f.DueDate))
	if err != nil {
		return NewTask{}, err
	}

	priority, err := strconv.Atoi(strings.TrimSpace(f.Priority))
	if err != nil {
		return NewTask{}, err
	}

	return NewTask{
		Name:     strings.TrimSpace(f.Name),
		DueDate:  due,
		Priority: priority,
	}, nil
}

func validPriority(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n >= MinPriority && n <= MaxPriority
}

func fieldMessage(e validator.FieldError) string {
	if e.Tag() == "priority" {
		return "Not a valid choice."
	}
	return ""
}

func priorities() []int {
	out := make([]int, 0, MaxPriority-MinPriority+1)
	for p := MinPriority; p <= MaxPriority; p++ {
		out = append(out, p)
	}
	return out
}

type tasksPage struct {
	Form       CreateForm
	Board      *Board
	Priorities []int
}
