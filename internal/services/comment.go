package services

import (
	"errors"

	"github.com/mkessler/taskhub/internal/models"
	"github.com/mkessler/taskhub/pkg/response"
	"gorm.io/gorm"
)

type CommentService struct {
	db     *gorm.DB
	access *AccessService
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db, access: NewAccessService(db)}
}

// CommentOut is the comment payload; the author appears as a display name.
type CommentOut struct {
	ID        uint   `json:"id"`
	CreatedAt string `json:"created_at"`
	Author    string `json:"author"`
	Content   string `json:"content"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *CommentService) loadTaskWithBoard(taskID uint) (*models.Task, *models.Board, error) {
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

func commentOut(c *models.Comment, author *models.User) CommentOut {
	name := author.FullName
	if name == "" {
		name = author.Email
	}
	return CommentOut{
		ID:        c.ID,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Author:    name,
		Content:   c.Content,
	}
}

// List returns a task's comments ordered by creation time. Reading
// comments requires a membership row on the board; owning the board alone
// is not enough.
func (s *CommentService) List(actorID, taskID uint) ([]CommentOut, error) {
	task, _, err := s.loadTaskWithBoard(taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.IsMember(actorID, task.BoardID) {
		return nil, response.NewForbidden("you are not a member of this board")
	}

	var comments []models.Comment
	if err := s.db.Preload("Author").
		Where("task_id = ?", task.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	out := make([]CommentOut, 0, len(comments))
	for i := range comments {
		out = append(out, commentOut(&comments[i], comments[i].Author))
	}
	return out, nil
}

// Create adds a comment authored by the actor. Same strict membership rule
// as List.
func (s *CommentService) Create(actorID, taskID uint, req *CreateCommentRequest) (*CommentOut, error) {
	task, _, err := s.loadTaskWithBoard(taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.IsMember(actorID, task.BoardID) {
		return nil, response.NewForbidden("you must be a member of this board to comment on this task")
	}

	comment := models.Comment{
		TaskID:   task.ID,
		AuthorID: actorID,
		Content:  req.Content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	var author models.User
	if err := s.db.First(&author, actorID).Error; err != nil {
		return nil, err
	}
	out := commentOut(&comment, &author)
	return &out, nil
}

// Delete removes a comment. The actor must be able to reach the task's
// board as owner or member, the comment must belong to the given task, and
// only its author may remove it.
func (s *CommentService) Delete(actorID, taskID, commentID uint) error {
	task, board, err := s.loadTaskWithBoard(taskID)
	if err != nil {
		return err
	}
	if !s.access.IsOwnerOrMember(actorID, board) {
		return response.NewForbidden("you must be a board member to delete a comment of this task")
	}

	var comment models.Comment
	if err := s.db.Where("id = ? AND task_id = ?", commentID, task.ID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("comment not found")
		}
		return err
	}

	if comment.AuthorID != actorID {
		return response.NewForbidden("only the author can delete this comment")
	}

	return s.db.Delete(&comment).Error
}
