package tasks

import "errors"

// ErrTaskNotFound matches every TaskNotFoundError.
var ErrTaskNotFound = errors.New("task not found")

// TaskNotFoundError names a task the Manager has no registration for.
type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return "no maintenance task named '" + e.Name + "'"
}

func (e TaskNotFoundError) Is(target error) bool {
	return target == ErrTaskNotFound
}
