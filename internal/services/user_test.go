package services

import (
	"net/http"
	"testing"

	"github.com/mkessler/taskhub/internal/models"
)

func TestUserList_Filters(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ada@example.com")
	createTestUser(t, db, "grace@example.com")
	admin := createTestUser(t, db, "root@example.com")
	db.Model(admin).Update("role", "admin")

	svc := NewUserService(db)

	resp, err := svc.List(&UserListRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("Total = %d, expected 3", resp.Total)
	}

	resp, err = svc.List(&UserListRequest{Role: "admin"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].Email != "root@example.com" {
		t.Errorf("role filter returned %+v", resp.Items)
	}

	resp, err = svc.List(&UserListRequest{Email: "grace"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].Email != "grace@example.com" {
		t.Errorf("email filter returned %+v", resp.Items)
	}
}

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "root@example.com")
	target := createTestUser(t, db, "ada@example.com")

	svc := NewUserService(db)

	role := "admin"
	updated, err := svc.Update(admin.ID, target.ID, &UpdateUserRequest{Role: &role})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != "admin" {
		t.Errorf("Role = %q, expected admin", updated.Role)
	}

	_, err = svc.Update(admin.ID, admin.ID, &UpdateUserRequest{Role: &role})
	assertAppError(t, err, http.StatusBadRequest)

	bad := "superuser"
	_, err = svc.Update(admin.ID, target.ID, &UpdateUserRequest{Role: &bad})
	assertAppError(t, err, http.StatusBadRequest)

	_, err = svc.Update(admin.ID, 999, &UpdateUserRequest{Role: &role})
	assertAppError(t, err, http.StatusNotFound)

	_, err = svc.Update(admin.ID, target.ID, &UpdateUserRequest{})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestUserDelete_CascadesAndNullifies(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "root@example.com")
	victim := createTestUser(t, db, "victim@example.com")
	survivor := createTestUser(t, db, "survivor@example.com")

	boardSvc := NewBoardService(db)
	taskSvc := NewTaskService(db)

	// A board the victim owns, with content, disappears with them.
	owned, err := boardSvc.Create(victim.ID, &CreateBoardRequest{Title: "victim's", Members: []uint{survivor.ID}})
	if err != nil {
		t.Fatalf("Create board: %v", err)
	}
	ownedTask, err := taskSvc.Create(victim.ID, &CreateTaskRequest{Board: owned.ID, Title: "gone"})
	if err != nil {
		t.Fatalf("Create task: %v", err)
	}
	commentSvc := NewCommentService(db)
	if _, err := commentSvc.Create(survivor.ID, ownedTask.ID, &CreateCommentRequest{Content: "bye"}); err != nil {
		t.Fatalf("Create comment: %v", err)
	}

	// A foreign board keeps its tasks, with victim references nullified.
	foreign, err := boardSvc.Create(survivor.ID, &CreateBoardRequest{Title: "survivor's", Members: []uint{victim.ID}})
	if err != nil {
		t.Fatalf("Create board: %v", err)
	}
	kept, err := taskSvc.Create(victim.ID, &CreateTaskRequest{
		Board: foreign.ID, Title: "stays", Assignee: &victim.ID, Reviewer: &victim.ID,
	})
	if err != nil {
		t.Fatalf("Create task: %v", err)
	}

	svc := NewUserService(db)
	if err := svc.Delete(admin.ID, victim.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var boards int64
	db.Model(&models.Board{}).Where("id = ?", owned.ID).Count(&boards)
	if boards != 0 {
		t.Error("owned board should be deleted")
	}

	var task models.Task
	if err := db.First(&task, kept.ID).Error; err != nil {
		t.Fatalf("kept task should survive: %v", err)
	}
	if task.AssigneeID != nil || task.ReviewerID != nil || task.CreatedBy != nil {
		t.Errorf("task references should be nullified, got %+v", task)
	}

	var memberships int64
	db.Model(&models.BoardMember{}).Where("user_id = ?", victim.ID).Count(&memberships)
	if memberships != 0 {
		t.Errorf("memberships = %d, expected 0", memberships)
	}

	var gone models.User
	err = db.First(&gone, victim.ID).Error
	if err == nil {
		t.Error("deleted user should not be readable")
	}
}

func TestUserDelete_SelfRejected(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "root@example.com")

	svc := NewUserService(db)
	err := svc.Delete(admin.ID, admin.ID)
	assertAppError(t, err, http.StatusBadRequest)

	err = svc.Delete(admin.ID, 999)
	assertAppError(t, err, http.StatusNotFound)
}
