package services

import (
	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/pkg/response"
	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

type RoleCreateRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type RoleUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Status      *int    `json:"status" binding:"omitempty,oneof=0 1"`
}

type RoleQuery struct {
	PageRequest
	Name   string `json:"name"`
	Code   string `json:"code"`
	Status *int   `json:"status"`
}

// Create adds a role. The code is unique among live roles.
func (s *RoleService) Create(req *RoleCreateRequest) (*models.Role, error) {
	var count int64
	if err := s.db.Model(&models.Role{}).Where("code = ?", req.Code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("role code already exists")
	}

	role := &models.Role{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Status:      1,
	}
	if err := s.db.Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("role not found")
		}
		return nil, err
	}
	return &role, nil
}

var roleSortColumns = map[string]bool{
	"created_at": true,
	"name":       true,
	"code":       true,
}

func (s *RoleService) Page(req *RoleQuery) (*PageResult, error) {
	req.normalize("created_at")

	query := s.db.Model(&models.Role{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Code != "" {
		query = query.Where("code = ?", req.Code)
	}
	if req.Status != nil {
		query = query.Where("status = ?", *req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var roles []models.Role
	order := req.orderClause(roleSortColumns, "created_at")
	if err := query.Order(order).Offset(req.offset()).Limit(req.Size).Find(&roles).Error; err != nil {
		return nil, err
	}

	return &PageResult{Total: total, Page: req.Page, Size: req.Size, Items: roles}, nil
}

func (s *RoleService) List() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Where("status = ?", 1).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *RoleService) Update(id uint, req *RoleUpdateRequest) (*models.Role, error) {
	role, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return role, nil
	}

	if err := s.db.Model(&models.Role{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete soft-deletes the role and removes its assignment rows.
func (s *RoleService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Role{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewNotFound("role not found")
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error
	})
}

// AssignPermissions replaces the role's permission set.
func (s *RoleService) AssignPermissions(roleID uint, permissionIDs []uint) error {
	if _, err := s.GetByID(roleID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			link := models.RolePermission{RoleID: roleID, PermissionID: permID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// PermissionIDs returns the permission IDs assigned to the role.
func (s *RoleService) PermissionIDs(roleID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Pluck("permission_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AssignToUser replaces the user's role set.
func (s *RoleService) AssignToUser(userID uint, roleIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			link := models.UserRole{UserID: userID, RoleID: roleID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RolesForUser returns the live roles assigned to a user.
func (s *RoleService) RolesForUser(userID uint) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
