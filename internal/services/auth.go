package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/store"
	"github.com/biou/admin-console/internal/utils"
	"github.com/biou/admin-console/pkg/logger"
	"github.com/biou/admin-console/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const loginStateTTL = 300 * time.Second

// DingTalkProvider abstracts the DingTalk open platform calls so that the
// auth flow can be tested without outbound HTTP.
type DingTalkProvider interface {
	LoginURL(state string) string
	UserInfoByCode(code string) (*DingTalkUserInfo, error)
}

type AuthService struct {
	db       *gorm.DB
	users    *UserService
	logs     *LogService
	dingtalk DingTalkProvider
	store    store.TTLStore
}

func NewAuthService(db *gorm.DB, users *UserService, logs *LogService, dingtalk DingTalkProvider, ttlStore store.TTLStore) *AuthService {
	return &AuthService{
		db:       db,
		users:    users,
		logs:     logs,
		dingtalk: dingtalk,
		store:    ttlStore,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RealName string `json:"real_name"`
	Avatar   string `json:"avatar"`
}

type LoginResult struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	UserInfo     UserInfo `json:"user_info"`
}

type DingTalkLoginURLResult struct {
	LoginURL  string `json:"login_url"`
	State     string `json:"state"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login authenticates a username/password pair. Unknown users and wrong
// passwords produce the same error message; disabled accounts are reported
// distinctly. Every attempt ends up in the login log.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(req.Username)
	if err != nil {
		s.recordLoginAttempt(nil, req.Username, models.LoginTypeLogin, clientIP, userAgent, models.StatusFail, "user not found")
		return nil, response.NewAuthError("invalid username or password")
	}

	if !user.IsEnabled() {
		s.recordLoginAttempt(&user.ID, user.Username, models.LoginTypeLogin, clientIP, userAgent, models.StatusFail, "account disabled")
		return nil, response.NewAuthError("account disabled")
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		s.recordLoginAttempt(&user.ID, user.Username, models.LoginTypeLogin, clientIP, userAgent, models.StatusFail, "wrong password")
		return nil, response.NewAuthError("invalid username or password")
	}

	if err := s.updateLoginInfo(user, clientIP); err != nil {
		logger.Warnf("failed to update login info for user %d: %v", user.ID, err)
	}

	result, err := s.issueTokens(user)
	if err != nil {
		s.recordLoginAttempt(&user.ID, user.Username, models.LoginTypeLogin, clientIP, userAgent, models.StatusFail, "token generation failed")
		return nil, response.NewServerError("failed to generate token")
	}

	s.recordLoginAttempt(&user.ID, user.Username, models.LoginTypeLogin, clientIP, userAgent, models.StatusSuccess, "")
	return result, nil
}

// DingTalkLoginURL creates a single-use login state and returns the scan-code
// authorization URL.
func (s *AuthService) DingTalkLoginURL(ctx context.Context) (*DingTalkLoginURLResult, error) {
	state := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.store.Set(ctx, store.LoginStateKey(state), "valid", loginStateTTL); err != nil {
		return nil, response.NewServerError("failed to store login state")
	}
	return &DingTalkLoginURLResult{
		LoginURL:  s.dingtalk.LoginURL(state),
		State:     state,
		ExpiresIn: int64(loginStateTTL / time.Second),
	}, nil
}

// DingTalkLogin completes the scan-code callback. The state is single-use:
// consuming it removes it atomically, before the code exchange, so two
// callbacks racing on the same state cannot both proceed.
func (s *AuthService) DingTalkLogin(ctx context.Context, code, state, clientIP, userAgent string) (*LoginResult, error) {
	valid, err := s.store.Consume(ctx, store.LoginStateKey(state))
	if err != nil {
		return nil, response.NewServerError("failed to verify login state")
	}
	if !valid {
		s.recordLoginAttempt(nil, "", models.LoginTypeDingTalk, clientIP, userAgent, models.StatusFail, "invalid or expired login state")
		return nil, response.NewAuthError("invalid or expired login state")
	}

	info, err := s.dingtalk.UserInfoByCode(code)
	if err != nil {
		s.recordLoginAttempt(nil, "", models.LoginTypeDingTalk, clientIP, userAgent, models.StatusFail, "code exchange failed")
		return nil, response.NewAuthError("dingtalk login failed")
	}

	user, err := s.users.GetByDingtalkUnionID(info.UnionID)
	if err != nil {
		user, err = s.provisionDingTalkUser(info)
		if err != nil {
			s.recordLoginAttempt(nil, info.Nick, models.LoginTypeDingTalk, clientIP, userAgent, models.StatusFail, "user provisioning failed")
			return nil, response.NewServerError("failed to create user")
		}
	}

	if !user.IsEnabled() {
		s.recordLoginAttempt(&user.ID, user.Username, models.LoginTypeDingTalk, clientIP, userAgent, models.StatusFail, "account disabled")
		return nil, response.NewAuthError("account disabled")
	}

	if err := s.updateLoginInfo(user, clientIP); err != nil {
		logger.Warnf("failed to update login info for user %d: %v", user.ID, err)
	}

	result, err := s.issueTokens(user)
	if err != nil {
		s.recordLoginAttempt(&user.ID, user.Username, models.LoginTypeDingTalk, clientIP, userAgent, models.StatusFail, "token generation failed")
		return nil, response.NewServerError("failed to generate token")
	}

	s.recordLoginAttempt(&user.ID, user.Username, models.LoginTypeDingTalk, clientIP, userAgent, models.StatusSuccess, "")
	return result, nil
}

// Refresh issues a new access token against a valid refresh token. The
// refresh token itself is returned unchanged.
func (s *AuthService) Refresh(refreshToken string) (*LoginResult, error) {
	claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return nil, response.NewAuthError("invalid refresh token")
	}
	if claims.TokenType != utils.TokenTypeRefresh {
		return nil, response.NewAuthError("invalid refresh token")
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, response.NewAuthError("user not found or disabled")
	}
	if !user.IsEnabled() {
		return nil, response.NewAuthError("user not found or disabled")
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, response.NewServerError("failed to generate token")
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    utils.AccessExpireSeconds(),
		UserInfo:     buildUserInfo(user),
	}, nil
}

// Logout blacklists the access token for its remaining validity. Invalid
// tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, accessToken, clientIP, userAgent string) {
	claims, err := utils.ParseToken(accessToken)
	if err != nil {
		return
	}

	remaining := utils.TokenRemainingValidity(accessToken)
	if remaining > 0 {
		if err := s.store.Set(ctx, store.BlacklistKey(accessToken), fmt.Sprintf("%d", claims.UserID), remaining); err != nil {
			logger.Warnf("failed to blacklist token for user %d: %v", claims.UserID, err)
		}
	}

	s.recordLoginAttempt(&claims.UserID, claims.Username, models.LoginTypeLogout, clientIP, userAgent, models.StatusSuccess, "")
}

// Validate reports whether a token is usable: not blacklisted and carrying a
// valid signature and expiry. It never returns an error.
func (s *AuthService) Validate(ctx context.Context, token string) bool {
	blacklisted, err := s.store.Exists(ctx, store.BlacklistKey(token))
	if err != nil || blacklisted {
		return false
	}
	_, err = utils.ParseToken(token)
	return err == nil
}

func (s *AuthService) issueTokens(user *models.User) (*LoginResult, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    utils.AccessExpireSeconds(),
		UserInfo:     buildUserInfo(user),
	}, nil
}

func (s *AuthService) updateLoginInfo(user *models.User, clientIP string) error {
	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = clientIP
	return s.db.Model(user).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": clientIP,
	}).Error
}

var usernameCleaner = regexp.MustCompile(`[^a-zA-Z0-9\p{Han}]`)

func (s *AuthService) provisionDingTalkUser(info *DingTalkUserInfo) (*models.User, error) {
	base := "dingtalk_" + usernameCleaner.ReplaceAllString(info.Nick, "")
	username := base
	for suffix := 1; ; suffix++ {
		if _, err := s.users.GetByUsername(username); err != nil {
			break
		}
		username = fmt.Sprintf("%s_%d", base, suffix)
	}

	user := &models.User{
		Username:        username,
		RealName:        info.Nick,
		DingtalkUnionID: info.UnionID,
		DingtalkUserID:  info.OpenID,
		Status:          models.UserEnabled,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) recordLoginAttempt(userID *uint, username, loginType, clientIP, userAgent, status, message string) {
	s.logs.SaveLoginLog(&models.LoginLog{
		UserID:    userID,
		Username:  username,
		LoginType: loginType,
		IPAddress: clientIP,
		Location:  utils.Location(clientIP),
		Browser:   utils.Browser(userAgent),
		OS:        utils.OS(userAgent),
		Status:    status,
		Message:   message,
		LoginTime: time.Now(),
	})
}

func buildUserInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    user.Phone,
		RealName: user.RealName,
		Avatar:   user.Avatar,
	}
}
