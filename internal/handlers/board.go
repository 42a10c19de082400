package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkessler/taskhub/internal/middleware"
	"github.com/mkessler/taskhub/internal/services"
	"github.com/mkessler/taskhub/pkg/response"
	"gorm.io/gorm"
)

type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(db *gorm.DB) *BoardHandler {
	return &BoardHandler{
		boardService: services.NewBoardService(db),
	}
}

// List returns the boards the actor owns or is a member of, with counters.
// GET /api/boards
func (h *BoardHandler) List(c *gin.Context) {
	boards, err := h.boardService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, boards)
}

// Create creates a board owned by the actor.
// POST /api/boards
func (h *BoardHandler) Create(c *gin.Context) {
	var req services.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	board, err := h.boardService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, board)
}

// GetByID returns a single board with owner, members and tasks.
// GET /api/boards/:id
func (h *BoardHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	board, err := h.boardService.Get(middleware.GetUserID(c), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, board)
}

// Patch updates the title and/or replaces the member set.
// PATCH /api/boards/:id
func (h *BoardHandler) Patch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	var req services.PatchBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	board, err := h.boardService.Patch(middleware.GetUserID(c), uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, board)
}

// Delete removes a board and everything on it. Owner only.
// DELETE /api/boards/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	if err := h.boardService.Delete(middleware.GetUserID(c), uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "board deleted successfully"})
}
