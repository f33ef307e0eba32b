package classroom

import (
	"math"
	"sort"
	"strings"

	"github.com/trezcool/darasa/core"
)

// SplitAssignments partitions assignments into those without and with at least one submission.
func SplitAssignments(assignments []Assignment, submissions []Submission) (pending, completed []Assignment) {
	submitted := make(map[int]struct{}, len(submissions))
	for _, s := range submissions {
		submitted[s.AssignmentID] = struct{}{}
	}
	pending = make([]Assignment, 0, len(assignments))
	completed = make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := submitted[a.ID]; ok {
			completed = append(completed, a)
		} else {
			pending = append(pending, a)
		}
	}
	return pending, completed
}

// CompletionRate is the rounded percentage of completed over total; 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// FilterAssignments keeps assignments whose title or description contains search, ignoring case.
func FilterAssignments(assignments []Assignment, search string) []Assignment {
	search = strings.ToLower(core.CleanString(search))
	if search == "" {
		return assignments
	}
	filtered := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if strings.Contains(strings.ToLower(a.Title), search) || strings.Contains(strings.ToLower(a.Description), search) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// assignment fields that can be ordered on
var assignmentComparators = map[string]func(a, b Assignment) int{
	"id":        func(a, b Assignment) int { return a.ID - b.ID },
	"title":     func(a, b Assignment) int { return strings.Compare(a.Title, b.Title) },
	"dueDate":   func(a, b Assignment) int { return compareTimes(a.DueDate.UnixNano(), b.DueDate.UnixNano()) },
	"createdAt": func(a, b Assignment) int { return compareTimes(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano()) },
}

func compareTimes(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortAssignments stable-sorts assignments in place; unknown fields are ignored.
func SortAssignments(assignments []Assignment, orderings []core.Ordering) []Assignment {
	if len(orderings) == 0 {
		return assignments
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		for _, ord := range orderings {
			cmp, ok := assignmentComparators[ord.Field]
			if !ok {
				continue
			}
			c := cmp(assignments[i], assignments[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return assignments
}

type (
	StudentDashboard struct {
		TotalAssignments     int `json:"totalAssignments"`
		PendingAssignments   int `json:"pendingAssignments"`
		CompletedAssignments int `json:"completedAssignments"`
		TotalSubmissions     int `json:"totalSubmissions"`
		CompletionRate       int `json:"completionRate"`
	}

	TeacherDashboard struct {
		TotalAssignments    int `json:"totalAssignments"`
		TotalClasses        int `json:"totalClasses"`
		TotalSubmissions    int `json:"totalSubmissions"`
		UngradedSubmissions int `json:"ungradedSubmissions"`
	}
)

func NewStudentDashboard(assignments []Assignment, submissions []Submission) StudentDashboard {
	pending, completed := SplitAssignments(assignments, submissions)
	return StudentDashboard{
		TotalAssignments:     len(assignments),
		PendingAssignments:   len(pending),
		CompletedAssignments: len(completed),
		TotalSubmissions:     len(submissions),
		CompletionRate:       CompletionRate(len(completed), len(assignments)),
	}
}

func NewTeacherDashboard(classes []Class, assignments []Assignment, submissions []Submission) TeacherDashboard {
	var ungraded int
	for _, s := range submissions {
		if !s.Grade.Valid {
			ungraded++
		}
	}
	return TeacherDashboard{
		TotalAssignments:    len(assignments),
		TotalClasses:        len(classes),
		TotalSubmissions:    len(submissions),
		UngradedSubmissions: ungraded,
	}
}
