package services

import (
	"github.com/mkessler/taskhub/internal/models"
	"gorm.io/gorm"
)

// AccessService holds the authorization predicates shared by boards, tasks
// and comments. Each predicate takes the actor id and a board (or board id),
// never an arbitrary object, and decides a single policy primitive. The
// board owner is implicitly authorized wherever membership is checked,
// except for the comment policies which require an actual membership row.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// IsOwner reports whether the actor owns the board.
func (s *AccessService) IsOwner(actorID uint, board *models.Board) bool {
	return board.OwnerID == actorID
}

// IsMember reports whether the actor has a membership row on the board.
func (s *AccessService) IsMember(actorID, boardID uint) bool {
	var count int64
	s.db.Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, actorID).
		Count(&count)
	return count > 0
}

// IsOwnerOrMember is the default read/update policy for boards and tasks.
func (s *AccessService) IsOwnerOrMember(actorID uint, board *models.Board) bool {
	return s.IsOwner(actorID, board) || s.IsMember(actorID, board.ID)
}

// CanAssign reports whether a user may be set as assignee or reviewer on a
// task of the board: current member or the owner.
func (s *AccessService) CanAssign(userID uint, board *models.Board) bool {
	return board.OwnerID == userID || s.IsMember(userID, board.ID)
}
