package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mkessler/taskhub/internal/models"
	"github.com/mkessler/taskhub/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BoardService struct {
	db     *gorm.DB
	access *AccessService
}

func NewBoardService(db *gorm.DB) *BoardService {
	return &BoardService{db: db, access: NewAccessService(db)}
}

// BoardSummary is the annotated list/create payload. MemberCount is the raw
// membership row count; the owner is not included in it.
type BoardSummary struct {
	ID                 uint   `json:"id"`
	Title              string `json:"title"`
	MemberCount        int64  `json:"member_count"`
	TicketCount        int64  `json:"ticket_count"`
	TasksToDoCount     int64  `json:"tasks_to_do_count"`
	TasksHighPrioCount int64  `json:"tasks_high_prio_count"`
	OwnerID            uint   `json:"owner_id"`
}

// BoardDetail is the single-board payload with expanded relations.
type BoardDetail struct {
	ID      uint          `json:"id"`
	Title   string        `json:"title"`
	OwnerID uint          `json:"owner_id"`
	Owner   UserBrief     `json:"owner"`
	Members []UserBrief   `json:"members"`
	Tasks   []models.Task `json:"tasks"`
}

type CreateBoardRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Members []uint `json:"members"`
}

type PatchBoardRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Members *[]uint `json:"members"`
}

// boardCountersQuery computes all list counters in one grouped join so a
// listing never degenerates into per-board count queries.
const boardCountersQuery = `
SELECT b.id, b.title, b.owner_id,
       COUNT(DISTINCT m.id) AS member_count,
       COUNT(DISTINCT t.id) AS ticket_count,
       COUNT(DISTINCT CASE WHEN t.status = 'to-do' THEN t.id END) AS tasks_to_do_count,
       COUNT(DISTINCT CASE WHEN t.priority = 'high' THEN t.id END) AS tasks_high_prio_count
FROM boards b
LEFT JOIN board_members m ON m.board_id = b.id
LEFT JOIN tasks t ON t.board_id = b.id AND t.deleted_at IS NULL
WHERE b.deleted_at IS NULL`

// ListForUser returns every board the actor owns or is a member of,
// annotated with member and task counters.
func (s *BoardService) ListForUser(actorID uint) ([]BoardSummary, error) {
	var summaries []BoardSummary
	query := boardCountersQuery + `
  AND (b.owner_id = ? OR b.id IN (SELECT board_id FROM board_members WHERE user_id = ?))
GROUP BY b.id, b.title, b.owner_id
ORDER BY b.id`
	if err := s.db.Raw(query, actorID, actorID).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []BoardSummary{}
	}
	return summaries, nil
}

func (s *BoardService) summarize(boardID uint) (*BoardSummary, error) {
	var summary BoardSummary
	query := boardCountersQuery + `
  AND b.id = ?
GROUP BY b.id, b.title, b.owner_id`
	if err := s.db.Raw(query, boardID).Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// resolveMembers validates the requested member ids: every id must belong
// to an existing user, otherwise the whole request is rejected with the
// unknown ids listed. Duplicates and the owner's own id are dropped.
func (s *BoardService) resolveMembers(tx *gorm.DB, ownerID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	if err := tx.Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	var unknown []uint
	seen := make(map[uint]bool, len(ids))
	var members []uint
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !known[id] {
			unknown = append(unknown, id)
			continue
		}
		if id == ownerID {
			continue
		}
		members = append(members, id)
	}

	if len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
		return nil, response.NewBadRequest(fmt.Sprintf("members: unknown user ids %v", unknown))
	}
	return members, nil
}

// insertMembers adds membership rows. The ON CONFLICT clause lets the
// unique (board,user) index absorb concurrent duplicate inserts silently.
func insertMembers(tx *gorm.DB, boardID uint, userIDs []uint) error {
	for _, id := range userIDs {
		member := models.BoardMember{BoardID: boardID, UserID: id}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
			return err
		}
	}
	return nil
}

// Create creates a board owned by the actor and adds the given members.
// Unknown member ids fail the whole request; nothing is created.
func (s *BoardService) Create(actorID uint, req *CreateBoardRequest) (*BoardSummary, error) {
	var boardID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		members, err := s.resolveMembers(tx, actorID, req.Members)
		if err != nil {
			return err
		}

		board := models.Board{Title: req.Title, OwnerID: actorID}
		if err := tx.Create(&board).Error; err != nil {
			return err
		}
		boardID = board.ID

		return insertMembers(tx, board.ID, members)
	})
	if err != nil {
		return nil, err
	}

	return s.summarize(boardID)
}

// load fetches a board or reports NotFound. Existence is checked before
// any permission so a missing board is 404 for every actor.
func (s *BoardService) load(boardID uint) (*models.Board, error) {
	var board models.Board
	if err := s.db.First(&board, boardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("board not found")
		}
		return nil, err
	}
	return &board, nil
}

// Get returns the board detail for an owner or member.
func (s *BoardService) Get(actorID, boardID uint) (*BoardDetail, error) {
	board, err := s.load(boardID)
	if err != nil {
		return nil, err
	}
	if !s.access.IsOwnerOrMember(actorID, board) {
		return nil, response.NewForbidden("you must be the owner or a member of this board")
	}
	return s.detail(board)
}

func (s *BoardService) detail(board *models.Board) (*BoardDetail, error) {
	var owner models.User
	if err := s.db.First(&owner, board.OwnerID).Error; err != nil {
		return nil, err
	}

	var memberUsers []models.User
	if err := s.db.
		Joins("JOIN board_members bm ON bm.user_id = users.id").
		Where("bm.board_id = ?", board.ID).
		Order("bm.id ASC").
		Find(&memberUsers).Error; err != nil {
		return nil, err
	}

	members := make([]UserBrief, 0, len(memberUsers))
	for _, u := range memberUsers {
		members = append(members, UserBrief{ID: u.ID, Email: u.Email, FullName: u.FullName})
	}

	var tasks []models.Task
	if err := s.db.Where("board_id = ?", board.ID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return &BoardDetail{
		ID:      board.ID,
		Title:   board.Title,
		OwnerID: board.OwnerID,
		Owner:   UserBrief{ID: owner.ID, Email: owner.Email, FullName: owner.FullName},
		Members: members,
		Tasks:   tasks,
	}, nil
}

// Patch updates the title and/or fully replaces the member set. Any owner
// or member may patch; title change and member replacement are atomic.
func (s *BoardService) Patch(actorID, boardID uint, req *PatchBoardRequest) (*BoardDetail, error) {
	board, err := s.load(boardID)
	if err != nil {
		return nil, err
	}
	if !s.access.IsOwnerOrMember(actorID, board) {
		return nil, response.NewForbidden("you must be the owner or a member of this board")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Title != nil {
			if err := tx.Model(board).Update("title", *req.Title).Error; err != nil {
				return err
			}
		}

		if req.Members != nil {
			members, err := s.resolveMembers(tx, board.OwnerID, *req.Members)
			if err != nil {
				return err
			}
			// Full replacement, not a merge.
			if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardMember{}).Error; err != nil {
				return err
			}
			if err := insertMembers(tx, board.ID, members); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.detail(board)
}

// Delete removes a board. Only the owner may delete; members, tasks and
// their comments go with it in one transaction.
func (s *BoardService) Delete(actorID, boardID uint) error {
	board, err := s.load(boardID)
	if err != nil {
		return err
	}
	if !s.access.IsOwner(actorID, board) {
		return response.NewForbidden("only the board owner can delete the board")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id IN (?)",
			tx.Model(&models.Task{}).Select("id").Where("board_id = ?", board.ID),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(board).Error
	})
}
