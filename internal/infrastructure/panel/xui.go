package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// XUIClient speaks the 3x-ui panel API: form login yielding a session
// cookie, then JSON calls with that cookie.
type XUIClient struct {
	http *http.Client
}

func NewXUIClient() *XUIClient {
	return &XUIClient{http: newHTTPClient()}
}

type xuiInboundClient struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	LimitIP    int    `json:"limitIp"`
	TotalGB    int64  `json:"totalGB"`
	ExpiryTime int64  `json:"expiryTime"`
	Enable     bool   `json:"enable"`
	SubID      string `json:"subId"`
	TgID       int64  `json:"tgId"`
	Reset      int    `json:"reset"`
}

type xuiAddClientRequest struct {
	ID       int    `json:"id"`
	Settings string `json:"settings"`
}

type xuiResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

func (c *XUIClient) login(ctx context.Context, server entity.Server) (string, error) {
	form := url.Values{}
	form.Set("username", server.Username)
	form.Set("password", server.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		server.URL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("xui login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("xui login: status %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session" {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("xui login: no session cookie in response")
}

func (c *XUIClient) CreateAccount(ctx context.Context, server entity.Server, settings entity.ProvisionSettings) (string, error) {
	session, err := c.login(ctx, server)
	if err != nil {
		return "", err
	}

	clientID := uuid.NewString()
	subID := strings.Split(clientID, "-")[4]

	clientData, err := json.Marshal(map[string][]xuiInboundClient{
		"clients": {{
			ID:         clientID,
			Email:      settings.Label,
			LimitIP:    settings.ConnLimit,
			TotalGB:    settings.QuotaBytes,
			ExpiryTime: settings.ExpiryUnixMS,
			Enable:     true,
			SubID:      subID,
			TgID:       settings.ChatID,
		}},
	})
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(xuiAddClientRequest{ID: settings.InboundID, Settings: string(clientData)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		server.URL+"/panel/api/inbounds/addClient", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "session", Value: session})

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("xui addClient: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("xui addClient: status %d", resp.StatusCode)
	}
	var result xuiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("xui addClient: decode: %w", err)
	}
	if !result.Success {
		return "", fmt.Errorf("xui addClient: panel refused: %s", result.Msg)
	}

	logger.InfoLogger.Printf("xui account %s created on %s", settings.Label, server.URL)
	return fmt.Sprintf("%s/sub/%s", subHost(server), subID), nil
}

// subHost is where subscriptions are served from; panels often expose
// them on a different host/port than the management API.
func subHost(server entity.Server) string {
	if server.SubHost != "" {
		return strings.TrimSuffix(server.SubHost, "/")
	}
	return strings.TrimSuffix(server.URL, "/")
}
