package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/biou/admin-console/internal/config"
)

var dingtalkHTTPClient = &http.Client{Timeout: 10 * time.Second}

const (
	dingtalkAPIBase     = "https://oapi.dingtalk.com"
	dingtalkAuthURL     = "https://login.dingtalk.com/oauth2/auth"
	dingtalkTokenURL    = dingtalkAPIBase + "/gettoken"
	dingtalkUserInfoURL = dingtalkAPIBase + "/sns/getuserinfo_bycode"
)

// DingTalkUserInfo is the subset of the scan-login user payload we consume.
type DingTalkUserInfo struct {
	UnionID string `json:"unionid"`
	Nick    string `json:"nick"`
	OpenID  string `json:"openid"`
}

// DingTalkClient talks to the DingTalk open platform for scan-code login.
type DingTalkClient struct {
	appID       string
	appSecret   string
	redirectURI string
	httpClient  *http.Client
}

func NewDingTalkClient(cfg *config.DingTalkConfig) *DingTalkClient {
	return &DingTalkClient{
		appID:       cfg.AppID,
		appSecret:   cfg.AppSecret,
		redirectURI: cfg.RedirectURI,
		httpClient:  dingtalkHTTPClient,
	}
}

// LoginURL builds the scan-code authorization URL carrying the CSRF state.
func (c *DingTalkClient) LoginURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.appID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", "openid")
	q.Set("state", state)
	q.Set("prompt", "consent")
	return dingtalkAuthURL + "?" + q.Encode()
}

// accessToken fetches an app-level access token.
func (c *DingTalkClient) accessToken() (string, error) {
	reqURL := fmt.Sprintf("%s?appkey=%s&appsecret=%s",
		dingtalkTokenURL, url.QueryEscape(c.appID), url.QueryEscape(c.appSecret))

	var result struct {
		ErrCode     int    `json:"errcode"`
		ErrMsg      string `json:"errmsg"`
		AccessToken string `json:"access_token"`
	}
	if err := c.getJSON(reqURL, &result); err != nil {
		return "", err
	}
	if result.ErrCode != 0 {
		return "", fmt.Errorf("dingtalk gettoken failed: %s", result.ErrMsg)
	}
	return result.AccessToken, nil
}

// UserInfoByCode exchanges an authorization code for the user's identity.
func (c *DingTalkClient) UserInfoByCode(code string) (*DingTalkUserInfo, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, err
	}

	reqURL := dingtalkUserInfoURL + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequest("POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		ErrCode  int              `json:"errcode"`
		ErrMsg   string           `json:"errmsg"`
		UserInfo DingTalkUserInfo `json:"user_info"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("dingtalk user info response: %w", err)
	}
	if result.ErrCode != 0 {
		return nil, fmt.Errorf("dingtalk user info failed: %s", result.ErrMsg)
	}
	return &result.UserInfo, nil
}

func (c *DingTalkClient) getJSON(reqURL string, out interface{}) error {
	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("dingtalk response: %w", err)
	}
	return nil
}
