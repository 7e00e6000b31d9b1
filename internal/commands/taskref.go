package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"taskfuss/internal/api"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task number required")

// ParseTaskRef parses the 1-based task number printed by the tasks command.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task number: %s", ref)
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid task number: %s", ref)
	}
	return n, nil
}

// TaskAt returns the task printed as number n, in server order.
func TaskAt(tasks []api.Task, n int) (api.Task, error) {
	if n < 1 || n > len(tasks) {
		return api.Task{}, fmt.Errorf("task not found: %d", n)
	}
	return tasks[n-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
