package services

import (
	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/pkg/response"
	"gorm.io/gorm"
)

type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

type PermissionCreateRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Code     string `json:"code" binding:"required,max=100"`
	Type     string `json:"type" binding:"omitempty,oneof=menu button api"`
	ParentID uint   `json:"parent_id"`
	Path     string `json:"path" binding:"max=200"`
}

type PermissionUpdateRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=100"`
	Path   *string `json:"path" binding:"omitempty,max=200"`
	Status *int    `json:"status" binding:"omitempty,oneof=0 1"`
}

// PermissionNode is a permission with its children, for tree rendering.
type PermissionNode struct {
	models.Permission
	Children []*PermissionNode `json:"children"`
}

func (s *PermissionService) Create(req *PermissionCreateRequest) (*models.Permission, error) {
	var count int64
	if err := s.db.Model(&models.Permission{}).Where("code = ?", req.Code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("permission code already exists")
	}

	if req.ParentID != 0 {
		if _, err := s.GetByID(req.ParentID); err != nil {
			return nil, response.NewValidationError("parent permission not found")
		}
	}

	permType := req.Type
	if permType == "" {
		permType = "menu"
	}

	perm := &models.Permission{
		Name:     req.Name,
		Code:     req.Code,
		Type:     permType,
		ParentID: req.ParentID,
		Path:     req.Path,
		Status:   1,
	}
	if err := s.db.Create(perm).Error; err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *PermissionService) GetByID(id uint) (*models.Permission, error) {
	var perm models.Permission
	if err := s.db.First(&perm, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("permission not found")
		}
		return nil, err
	}
	return &perm, nil
}

func (s *PermissionService) List() ([]models.Permission, error) {
	var perms []models.Permission
	if err := s.db.Order("parent_id ASC, id ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// Tree returns all permissions arranged by ParentID. Orphaned nodes whose
// parent is missing are lifted to the top level.
func (s *PermissionService) Tree() ([]*PermissionNode, error) {
	perms, err := s.List()
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*PermissionNode, len(perms))
	for i := range perms {
		nodes[perms[i].ID] = &PermissionNode{Permission: perms[i], Children: []*PermissionNode{}}
	}

	var roots []*PermissionNode
	for _, p := range perms {
		node := nodes[p.ID]
		if p.ParentID == 0 {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[p.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, nil
}

func (s *PermissionService) Update(id uint, req *PermissionUpdateRequest) (*models.Permission, error) {
	perm, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Path != nil {
		updates["path"] = *req.Path
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return perm, nil
	}

	if err := s.db.Model(&models.Permission{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes a permission. Permissions with children cannot be deleted.
func (s *PermissionService) Delete(id uint) error {
	var childCount int64
	if err := s.db.Model(&models.Permission{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return err
	}
	if childCount > 0 {
		return response.NewValidationError("permission has child permissions")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Permission{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewNotFound("permission not found")
		}
		return tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error
	})
}

// PermissionsForUser returns the distinct live permissions granted to a user
// through their roles.
func (s *PermissionService) PermissionsForUser(userID uint) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.db.Model(&models.Permission{}).
		Distinct("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.status = ?", userID, 1).
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}
