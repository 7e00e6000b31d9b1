// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"taskfuss/internal/api"
)

const (
	// dateLayout renders task dates and timestamps.
	dateLayout = "2006-01-02 15:04"

	// labelWidth pads detail labels so values line up.
	labelWidth = 14
)

// FormatTask formats a task line.
// Format: "{N:>4}  {TITLE}" plus "  [{STATUS}]" when the server sent one.
func FormatTask(w io.Writer, num int, task api.Task) {
	title := normalizeTitle(task.Title)
	if task.Status == "" {
		fmt.Fprintf(w, "%4d  %s\n", num, title)
		return
	}
	fmt.Fprintf(w, "%4d  %s  [%s]\n", num, title, task.Status)
}

// FormatTaskDetail prints every field the task carries, one per line.
// Absent optional fields are skipped.
func FormatTaskDetail(w io.Writer, task api.Task) {
	field(w, "Title", normalizeTitle(task.Title))
	field(w, "ID", fmt.Sprint(task.ID))
	if task.Status != "" {
		field(w, "Status", task.Status)
	}
	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		field(w, "Description", oneLine(*task.Description))
	}
	timeField(w, "Start", task.StartDate)
	timeField(w, "End", task.EndDate)
	timeField(w, "Created", task.CreatedAt)
	timeField(w, "Updated", task.UpdatedAt)
	if task.Requirement != nil {
		field(w, "Requirement", requirementLine(*task.Requirement))
		formatOperands(w, task.Requirement.Operands, 1)
	}
}

// formatOperands prints operands in sort order, one per line, indented
// under the label column by depth.
func formatOperands(w io.Writer, operands []api.Requirement, depth int) {
	ops := append([]api.Requirement(nil), operands...)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].SortOrder < ops[j].SortOrder })
	for _, op := range ops {
		fmt.Fprintf(w, "%*s- %s\n", labelWidth+2*(depth-1), "", requirementLine(op))
		formatOperands(w, op.Operands, depth+1)
	}
}

// requirementLine renders one requirement node.
// Atom:      "{TITLE} ({DATA_TYPE}) {OPERATOR} {TARGET}, current {VALUE}"
// Condition: "{TITLE} [{OPERATOR}]"
func requirementLine(r api.Requirement) string {
	var b strings.Builder
	b.WriteString(normalizeTitle(r.Title))
	if r.Type == api.RequirementCondition {
		if r.Operator != nil {
			fmt.Fprintf(&b, " [%s]", *r.Operator)
		}
		return b.String()
	}
	if r.DataType != nil {
		fmt.Fprintf(&b, " (%s)", *r.DataType)
	}
	if r.Operator != nil && r.TargetValue != nil {
		fmt.Fprintf(&b, " %s %s", *r.Operator, oneLine(*r.TargetValue))
	}
	if r.Value != nil {
		fmt.Fprintf(&b, ", current %s", oneLine(*r.Value))
	}
	return b.String()
}

// FormatUser prints the profile of u. A nil user prints nothing.
func FormatUser(w io.Writer, u *api.User) {
	if u == nil {
		return
	}
	field(w, "Username", u.Username)
	if u.Email != "" {
		field(w, "Email", u.Email)
	}
	field(w, "ID", fmt.Sprint(u.ID))
	if !u.CreatedAt.IsZero() {
		field(w, "Member since", u.CreatedAt.UTC().Format(time.DateOnly))
	}
}

// FormatFieldErrors prints one indented line per rejected field, with the
// server's message unaltered.
func FormatFieldErrors(w io.Writer, fields []api.FieldError) {
	for _, f := range fields {
		fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
	}
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-*s%s\n", labelWidth, label+":", value)
}

func timeField(w io.Writer, label string, t *time.Time) {
	if t == nil || t.IsZero() {
		return
	}
	field(w, label, t.UTC().Format(dateLayout))
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
