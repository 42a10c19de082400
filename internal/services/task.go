package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/mkessler/taskhub/internal/models"
	"github.com/mkessler/taskhub/pkg/response"
	"gorm.io/gorm"
)

type TaskService struct {
	db     *gorm.DB
	access *AccessService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, access: NewAccessService(db)}
}

type CreateTaskRequest struct {
	Board       uint   `json:"board" binding:"required"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Assignee    *uint  `json:"assignee"`
	Reviewer    *uint  `json:"reviewer"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD
}

// OptionalUint is a nullable id field for partial updates. A plain pointer
// cannot tell an absent field from an explicit null, so it tracks presence
// separately: Set is true whenever the field appeared in the payload, and a
// null payload value leaves Value nil, which clears the assignment.
type OptionalUint struct {
	Set   bool
	Value *uint
}

var jsonNull = []byte("null")

func (o *OptionalUint) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type PatchTaskRequest struct {
	Board       *uint        `json:"board"`
	Title       *string      `json:"title" binding:"omitempty,max=200"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	Assignee    OptionalUint `json:"assignee"`
	Reviewer    OptionalUint `json:"reviewer"`
	DueDate     *string      `json:"due_date"`
}

func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, response.NewBadRequest("due_date: must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

// Create creates a task on a board the actor owns or is a member of.
// Assignee and reviewer must be current members or the owner of the board.
func (s *TaskService) Create(actorID uint, req *CreateTaskRequest) (*models.Task, error) {
	var board models.Board
	if err := s.db.First(&board, req.Board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("board not found")
		}
		return nil, err
	}

	if !s.access.IsOwnerOrMember(actorID, &board) {
		return nil, response.NewForbidden("you must be a member or the owner of the board to create a task")
	}

	if req.Status == "" {
		req.Status = models.StatusToDo
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.ValidStatus(req.Status) {
		return nil, response.NewBadRequest("status: invalid status value")
	}
	if !models.ValidPriority(req.Priority) {
		return nil, response.NewBadRequest("priority: invalid priority value")
	}

	if req.Assignee != nil && !s.access.CanAssign(*req.Assignee, &board) {
		return nil, response.NewBadRequest("assignee: must be a member of the board")
	}
	if req.Reviewer != nil && !s.access.CanAssign(*req.Reviewer, &board) {
		return nil, response.NewBadRequest("reviewer: must be a member of the board")
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		BoardID:     board.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.Assignee,
		ReviewerID:  req.Reviewer,
		DueDate:     dueDate,
		CreatedBy:   &actorID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListAssignedTo returns the actor's assigned tasks.
func (s *TaskService) ListAssignedTo(actorID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Where("assignee_id = ?", actorID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListReviewing returns the tasks the actor reviews.
func (s *TaskService) ListReviewing(actorID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Where("reviewer_id = ?", actorID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// loadWithBoard fetches a task and its board, 404 before any policy check.
func (s *TaskService) loadWithBoard(taskID uint) (*models.Task, *models.Board, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("task not found")
		}
		return nil, nil, err
	}
	var board models.Board
	if err := s.db.First(&board, task.BoardID).Error; err != nil {
		return nil, nil, err
	}
	return &task, &board, nil
}

// Get returns a task for an owner or member of its board.
func (s *TaskService) Get(actorID, taskID uint) (*models.Task, error) {
	task, board, err := s.loadWithBoard(taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.IsOwnerOrMember(actorID, board) {
		return nil, response.NewForbidden("you must be the owner or a member of this board")
	}
	return task, nil
}

// Patch updates task fields. The board reference is immutable; assignee
// and reviewer must remain members (or the owner) of the existing board.
func (s *TaskService) Patch(actorID, taskID uint, req *PatchTaskRequest) (*models.Task, error) {
	task, board, err := s.loadWithBoard(taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.IsOwnerOrMember(actorID, board) {
		return nil, response.NewForbidden("you must be the owner or a member of this board")
	}

	if req.Board != nil && *req.Board != task.BoardID {
		return nil, response.NewBadRequest("board: the board of a task cannot be changed")
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			return nil, response.NewBadRequest("status: invalid status value")
		}
		updates["status"] = *req.Status
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			return nil, response.NewBadRequest("priority: invalid priority value")
		}
		updates["priority"] = *req.Priority
	}
	if req.Assignee.Set {
		if req.Assignee.Value == nil {
			updates["assignee_id"] = nil
		} else {
			if !s.access.CanAssign(*req.Assignee.Value, board) {
				return nil, response.NewBadRequest("assignee: must be a member of the board")
			}
			updates["assignee_id"] = *req.Assignee.Value
		}
	}
	if req.Reviewer.Set {
		if req.Reviewer.Value == nil {
			updates["reviewer_id"] = nil
		} else {
			if !s.access.CanAssign(*req.Reviewer.Value, board) {
				return nil, response.NewBadRequest("reviewer: must be a member of the board")
			}
			updates["reviewer_id"] = *req.Reviewer.Value
		}
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		updates["due_date"] = dueDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
		// Reload so cleared fields come back as null, not stale values.
		if err := s.db.First(task, task.ID).Error; err != nil {
			return nil, err
		}
	}
	return task, nil
}

// Delete removes a task. Reaching it requires board access; removing it is
// restricted to the task's creator or the board owner.
func (s *TaskService) Delete(actorID, taskID uint) error {
	task, board, err := s.loadWithBoard(taskID)
	if err != nil {
		return err
	}
	if !s.access.IsOwnerOrMember(actorID, board) {
		return response.NewForbidden("you must be the owner or a member of this board")
	}

	isCreator := task.CreatedBy != nil && *task.CreatedBy == actorID
	if !isCreator && !s.access.IsOwner(actorID, board) {
		return response.NewForbidden("only the task creator or the board owner can delete this task")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
}
