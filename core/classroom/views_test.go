package classroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 3, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompletionRate(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestSplitAssignments(t *testing.T) {
	a1, a2, a3 := Assignment{ID: 1}, Assignment{ID: 2}, Assignment{ID: 3}
	submissions := []Submission{{AssignmentID: 2}, {AssignmentID: 2}, {AssignmentID: 42}}

	pending, completed := SplitAssignments([]Assignment{a1, a2, a3}, submissions)
	assert.Equal(t, []Assignment{a1, a3}, pending)
	assert.Equal(t, []Assignment{a2}, completed)

	pending, completed = SplitAssignments(nil, submissions)
	assert.Empty(t, pending)
	assert.Empty(t, completed)
}

func TestFilterAssignments(t *testing.T) {
	a1 := Assignment{ID: 1, Title: "Algebra", Description: "Equations"}
	a2 := Assignment{ID: 2, Title: "Rome", Description: "The empire"}
	all := []Assignment{a1, a2}

	assert.Equal(t, all, FilterAssignments(all, ""))
	assert.Equal(t, all, FilterAssignments(all, "   "))
	assert.Equal(t, []Assignment{a1}, FilterAssignments(all, "ALGE"))
	assert.Equal(t, []Assignment{a2}, FilterAssignments(all, "empire"))
	assert.Empty(t, FilterAssignments(all, "lol"))
}

func TestSortAssignments(t *testing.T) {
	now := time.Now()
	a1 := Assignment{ID: 1, Title: "B", DueDate: now.Add(2 * time.Hour), CreatedAt: now}
	a2 := Assignment{ID: 2, Title: "A", DueDate: now.Add(1 * time.Hour), CreatedAt: now}
	a3 := Assignment{ID: 3, Title: "B", DueDate: now.Add(3 * time.Hour), CreatedAt: now.Add(-time.Hour)}

	tests := []struct {
		ordering string
		want     []Assignment
	}{
		{ordering: "", want: []Assignment{a1, a2, a3}},
		{ordering: "dueDate", want: []Assignment{a2, a1, a3}},
		{ordering: "-dueDate", want: []Assignment{a3, a1, a2}},
		{ordering: "title", want: []Assignment{a2, a1, a3}}, // stable
		{ordering: "-title,-id", want: []Assignment{a3, a1, a2}},
		{ordering: "createdAt", want: []Assignment{a3, a1, a2}},
		{ordering: "unknown", want: []Assignment{a1, a2, a3}},
	}
	for _, tt := range tests {
		t.Run(tt.ordering, func(t *testing.T) {
			list := []Assignment{a1, a2, a3}
			assert.Equal(t, tt.want, SortAssignments(list, core.ParseOrderings(tt.ordering)))
		})
	}
}

func TestNewTeacherDashboard(t *testing.T) {
	submissions := []Submission{{ID: 1, Grade: null.IntFrom(90)}, {ID: 2}, {ID: 3}}
	got := NewTeacherDashboard([]Class{{ID: 1}, {ID: 2}}, []Assignment{{ID: 1}}, submissions)
	assert.Equal(t, TeacherDashboard{TotalAssignments: 1, TotalClasses: 2, TotalSubmissions: 3, UngradedSubmissions: 2}, got)
}
