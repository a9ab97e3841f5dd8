package store

import "strconv"

// Key builders shared by the auth service and the auth middleware.

const (
	blacklistPrefix  = "jwt:blacklist:"
	loginStatePrefix = "dingtalk:state:"
	userCachePrefix  = "user:"
)

// BlacklistKey is the key under which a revoked access token lives until
// its natural expiry.
func BlacklistKey(token string) string { return blacklistPrefix + token }

// LoginStateKey is the key for a one-time DingTalk login state nonce.
func LoginStateKey(state string) string { return loginStatePrefix + state }

// UserCacheKey is the key under which a user snapshot is cached by ID.
func UserCacheKey(id uint) string { return userCachePrefix + strconv.FormatUint(uint64(id), 10) }
