package models

import "time"

// BoardMember links a user to a board. The unique (board, user) index is
// what resolves concurrent duplicate inserts: the losing insert is dropped.
// Rows are hard-deleted so a removed member can be re-added later.
type BoardMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BoardID   uint      `gorm:"uniqueIndex:idx_board_user;not null" json:"board_id"`
	Board     *Board    `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_board_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"joined_at"`
}

func (BoardMember) TableName() string { return "board_members" }
