package services

import (
	"errors"

	"github.com/mkessler/taskhub/internal/models"
	"github.com/mkessler/taskhub/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Email    string `form:"email"`
	Role     string `form:"role"`
}

type UserListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var users []models.User
	var total int64

	query := s.db.Model(&models.User{})
	if req.Email != "" {
		query = query.Where("email LIKE ?", "%"+req.Email+"%")
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("id ASC").Offset(offset).Limit(req.PageSize).Find(&users).Error; err != nil {
		return nil, err
	}

	return &UserListResponse{Total: total, Page: req.Page, PageSize: req.PageSize, Items: users}, nil
}

type UpdateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	FullName *string `json:"fullname"`
}

func (s *UserService) Update(actorID, id uint, req *UpdateUserRequest) (*models.User, error) {
	if id == actorID {
		return nil, response.NewBadRequest("cannot modify your own account")
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Role != nil {
		if *req.Role != "admin" && *req.Role != "user" {
			return nil, response.NewBadRequest("role: must be 'admin' or 'user'")
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}

	if len(updates) == 0 {
		return nil, response.NewBadRequest("no fields to update")
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete soft-deletes a user. Task references survive with their user
// fields nullified, and the user's board memberships are removed; the
// whole operation runs in one transaction.
func (s *UserService) Delete(actorID, id uint) error {
	if id == actorID {
		return response.NewBadRequest("cannot delete your own account")
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("user not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Boards owned by the user go away entirely, with their contents.
		if err := tx.Where("task_id IN (?)",
			tx.Model(&models.Task{}).Select("id").Where("board_id IN (?)",
				tx.Model(&models.Board{}).Select("id").Where("owner_id = ?", id)),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id IN (?)",
			tx.Model(&models.Board{}).Select("id").Where("owner_id = ?", id),
		).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id IN (?)",
			tx.Model(&models.Board{}).Select("id").Where("owner_id = ?", id),
		).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ?", id).Delete(&models.Board{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).Where("assignee_id = ?", id).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("reviewer_id = ?", id).
			Update("reviewer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("created_by = ?", id).
			Update("created_by", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
