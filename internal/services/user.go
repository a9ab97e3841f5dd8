package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/store"
	"github.com/biou/admin-console/internal/utils"
	"github.com/biou/admin-console/pkg/logger"
	"github.com/biou/admin-console/pkg/response"
	"gorm.io/gorm"
)

const userCacheTTL = 30 * time.Minute

type UserService struct {
	db    *gorm.DB
	cache store.TTLStore
}

func NewUserService(db *gorm.DB, cache store.TTLStore) *UserService {
	return &UserService{db: db, cache: cache}
}

type UserCreateRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	RealName string `json:"real_name"`
	Avatar   string `json:"avatar"`
}

type UserUpdateRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	RealName *string `json:"real_name"`
	Avatar   *string `json:"avatar"`
}

type UserQuery struct {
	PageRequest
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RealName string `json:"real_name"`
	Status   *int   `json:"status"`
}

type UserStatistics struct {
	Total    int64 `json:"total"`
	Enabled  int64 `json:"enabled"`
	Disabled int64 `json:"disabled"`
}

// Create registers a new local account. Username, email and phone must each
// be unique among live users.
func (s *UserService) Create(req *UserCreateRequest) (*models.User, error) {
	if exists, err := s.UsernameExists(req.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, response.NewConflict("username already exists")
	}
	if req.Email != "" {
		if exists, err := s.EmailExists(req.Email); err != nil {
			return nil, err
		} else if exists {
			return nil, response.NewConflict("email already exists")
		}
	}
	if req.Phone != "" {
		if exists, err := s.PhoneExists(req.Phone); err != nil {
			return nil, err
		} else if exists {
			return nil, response.NewConflict("phone already exists")
		}
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewServerError("failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Password: hashed,
		Email:    req.Email,
		Phone:    req.Phone,
		RealName: req.RealName,
		Avatar:   req.Avatar,
		Status:   models.UserEnabled,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns the user, consulting the cache first.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(context.Background(), store.UserCacheKey(id)); err == nil && ok {
			var user models.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
		}
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	s.cacheUser(&user)
	return &user, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByDingtalkUnionID(unionID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("dingtalk_union_id = ?", unionID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

var userSortColumns = map[string]bool{
	"created_at": true,
	"username":   true,
	"status":     true,
}

// Page returns a filtered page of users.
func (s *UserService) Page(req *UserQuery) (*PageResult, error) {
	req.normalize("created_at")

	query := s.db.Model(&models.User{})
	if req.Username != "" {
		query = query.Where("username LIKE ?", "%"+req.Username+"%")
	}
	if req.Email != "" {
		query = query.Where("email LIKE ?", "%"+req.Email+"%")
	}
	if req.Phone != "" {
		query = query.Where("phone = ?", req.Phone)
	}
	if req.RealName != "" {
		query = query.Where("real_name LIKE ?", "%"+req.RealName+"%")
	}
	if req.Status != nil {
		query = query.Where("status = ?", *req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []models.User
	order := req.orderClause(userSortColumns, "created_at")
	if err := query.Order(order).Offset(req.offset()).Limit(req.Size).Find(&users).Error; err != nil {
		return nil, err
	}

	return &PageResult{Total: total, Page: req.Page, Size: req.Size, Items: users}, nil
}

// ListEnabled returns all enabled users ordered by username.
func (s *UserService) ListEnabled() ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("status = ?", models.UserEnabled).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies a partial profile update.
func (s *UserService) Update(id uint, req *UserUpdateRequest) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		if *req.Email != "" && *req.Email != user.Email {
			if exists, err := s.EmailExists(*req.Email); err != nil {
				return nil, err
			} else if exists {
				return nil, response.NewConflict("email already exists")
			}
		}
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		if *req.Phone != "" && *req.Phone != user.Phone {
			if exists, err := s.PhoneExists(*req.Phone); err != nil {
				return nil, err
			} else if exists {
				return nil, response.NewConflict("phone already exists")
			}
		}
		updates["phone"] = *req.Phone
	}
	if req.RealName != nil {
		updates["real_name"] = *req.RealName
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.evictUser(id)
	return s.GetByID(id)
}

// UpdateStatus enables or disables an account.
func (s *UserService) UpdateStatus(id uint, status int) error {
	if status != models.UserEnabled && status != models.UserDisabled {
		return response.NewValidationError("status must be 0 or 1")
	}

	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("user not found")
	}

	s.evictUser(id)
	return nil
}

// Delete soft-deletes the account.
func (s *UserService) Delete(id uint) error {
	res := s.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("user not found")
	}

	s.evictUser(id)
	return nil
}

// Statistics counts total, enabled and disabled users.
func (s *UserService) Statistics() (*UserStatistics, error) {
	stats := &UserStatistics{}
	if err := s.db.Model(&models.User{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("status = ?", models.UserEnabled).Count(&stats.Enabled).Error; err != nil {
		return nil, err
	}
	stats.Disabled = stats.Total - stats.Enabled
	return stats, nil
}

func (s *UserService) UsernameExists(username string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserService) EmailExists(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserService) PhoneExists(phone string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserService) cacheUser(user *models.User) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(context.Background(), store.UserCacheKey(user.ID), string(data), userCacheTTL); err != nil {
		logger.Debugf("failed to cache user %d: %v", user.ID, err)
	}
}

func (s *UserService) evictUser(id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.Background(), store.UserCacheKey(id)); err != nil {
		logger.Debugf("failed to evict user %d from cache: %v", id, err)
	}
}
