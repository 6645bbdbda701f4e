package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// HiddifyClient speaks the Hiddify panel API. Auth is the admin token
// embedded in the URL path; no login round trip.
type HiddifyClient struct {
	http *http.Client
}

func NewHiddifyClient() *HiddifyClient {
	return &HiddifyClient{http: newHTTPClient()}
}

type hiddifyAddUserRequest struct {
	UUID         string  `json:"uuid"`
	Name         string  `json:"name"`
	CurrentUsage float64 `json:"current_usage_GB"`
	UsageLimitGB int     `json:"usage_limit_GB"`
	PackageDays  int     `json:"package_days"`
	StartDate    string  `json:"start_date"`
	Mode         string  `json:"mode"`
}

func (c *HiddifyClient) CreateAccount(ctx context.Context, server entity.Server, settings entity.ProvisionSettings) (string, error) {
	clientID := uuid.NewString()
	base := strings.TrimSuffix(server.URL, "/")

	payload, err := json.Marshal(hiddifyAddUserRequest{
		UUID:         clientID,
		Name:         settings.Label,
		UsageLimitGB: settings.VolumeGB,
		PackageDays:  settings.DurationDays,
		StartDate:    time.Now().Format("2006-01-02 15:04:05"),
		Mode:         "no_reset",
	})
	if err != nil {
		return "", err
	}

	// server.Username carries the admin proxy UUID for Hiddify panels.
	endpoint := fmt.Sprintf("%s/%s/api/v1/user/", base, server.Username)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("hiddify add user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hiddify add user: status %d", resp.StatusCode)
	}

	logger.InfoLogger.Printf("hiddify account %s created on %s", settings.Label, server.URL)
	return fmt.Sprintf("%s/%s/#%s", base, clientID, settings.Label), nil
}
