package domain

import (
	"encoding/json"
	"testing"
)

func TestTaskStatusValid(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, true},
		{TaskStatusInProgress, true},
		{TaskStatusCompleted, true},
		{"done", false},
		{"Pending", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskVisibleTo(t *testing.T) {
	bob := "bob"
	task := Task{CreatedBy: "alice", AssignedTo: &bob}

	if !task.VisibleTo("alice") {
		t.Fatal("owner should see task")
	}
	if !task.VisibleTo("bob") {
		t.Fatal("assignee should see task")
	}
	if task.VisibleTo("carol") {
		t.Fatal("unrelated user should not see task")
	}
	if task.IsOwner("bob") {
		t.Fatal("assignee is not owner")
	}

	task.AssignedTo = nil
	if task.VisibleTo("bob") {
		t.Fatal("unassigned user should not see task")
	}
}

func TestTaskPatchUnmarshalPresence(t *testing.T) {
	var patch TaskPatch
	body := `{"description": "", "assignedTo": null, "status": "completed"}`
	if err := json.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}

	if patch.Title.Set {
		t.Fatal("title was omitted and should not be set")
	}
	if !patch.Description.Set || patch.Description.Value == nil || *patch.Description.Value != "" {
		t.Fatalf("description = %+v, want present empty string", patch.Description)
	}
	if !patch.AssignedTo.Set || patch.AssignedTo.Value != nil {
		t.Fatalf("assignedTo = %+v, want present null", patch.AssignedTo)
	}
	if !patch.Status.Set || patch.Status.Value != TaskStatusCompleted {
		t.Fatalf("status = %+v, want completed", patch.Status)
	}
}

func TestTaskPatchApplyLeavesOmittedFields(t *testing.T) {
	desc := "original"
	bob := "bob"
	task := Task{Title: "Write spec", Description: &desc, Status: TaskStatusPending, AssignedTo: &bob}

	empty := ""
	TaskPatch{Description: NewField(&empty)}.Apply(&task)

	if task.Title != "Write spec" {
		t.Fatalf("title = %q, want unchanged", task.Title)
	}
	if task.Description == nil || *task.Description != "" {
		t.Fatalf("description = %v, want empty string", task.Description)
	}
	if task.Status != TaskStatusPending {
		t.Fatalf("status = %q, want unchanged", task.Status)
	}
	if task.AssignedTo == nil || *task.AssignedTo != "bob" {
		t.Fatalf("assignee = %v, want unchanged", task.AssignedTo)
	}
}
