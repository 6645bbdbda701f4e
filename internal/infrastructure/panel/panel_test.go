package panel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

func init() {
	logger.Init()
}

func testSettings() entity.ProvisionSettings {
	return entity.ProvisionSettings{
		Label:        "Alice-ab12cd34-42",
		ConnLimit:    3,
		QuotaBytes:   60 * 1024 * 1024 * 1024,
		ExpiryUnixMS: 1_702_592_000_000,
		DurationDays: 30,
		VolumeGB:     60,
		InboundID:    4,
		ChatID:       100,
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	c, err := r.Lookup("xui")
	require.NoError(t, err)
	assert.IsType(t, &XUIClient{}, c)

	c, err = r.Lookup("hiddify")
	require.NoError(t, err)
	assert.IsType(t, &HiddifyClient{}, c)

	_, err = r.Lookup("wireguard")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestXUICreateAccount(t *testing.T) {
	var gotLogin, gotAdd bool
	var addReq xuiAddClientRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			gotLogin = true
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "admin", r.FormValue("username"))
			assert.Equal(t, "secret", r.FormValue("password"))
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "sess-1"})
			w.WriteHeader(http.StatusOK)
		case "/panel/api/inbounds/addClient":
			gotAdd = true
			cookie, err := r.Cookie("session")
			require.NoError(t, err)
			assert.Equal(t, "sess-1", cookie.Value)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&addReq))
			_ = json.NewEncoder(w).Encode(xuiResponse{Success: true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	server := entity.Server{
		URL:      srv.URL,
		Username: "admin",
		Password: "secret",
		SubHost:  "https://sub.example.test:2096",
	}

	subURL, err := NewXUIClient().CreateAccount(context.Background(), server, testSettings())
	require.NoError(t, err)

	assert.True(t, gotLogin)
	assert.True(t, gotAdd)
	assert.Equal(t, 4, addReq.ID)
	assert.True(t, strings.HasPrefix(subURL, "https://sub.example.test:2096/sub/"), subURL)

	var clients map[string][]xuiInboundClient
	require.NoError(t, json.Unmarshal([]byte(addReq.Settings), &clients))
	require.Len(t, clients["clients"], 1)
	cl := clients["clients"][0]
	assert.Equal(t, "Alice-ab12cd34-42", cl.Email)
	assert.Equal(t, int64(60*1024*1024*1024), cl.TotalGB)
	assert.Equal(t, int64(1_702_592_000_000), cl.ExpiryTime)
	assert.Equal(t, 3, cl.LimitIP)
	assert.True(t, cl.Enable)
}

func TestXUICreateAccountPanelRefuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s"})
			return
		}
		_ = json.NewEncoder(w).Encode(xuiResponse{Success: false, Msg: "duplicate email"})
	}))
	defer srv.Close()

	_, err := NewXUIClient().CreateAccount(context.Background(),
		entity.Server{URL: srv.URL}, testSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate email")
}

func TestXUILoginFailureStopsEarly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewXUIClient().CreateAccount(context.Background(),
		entity.Server{URL: srv.URL}, testSettings())
	assert.Error(t, err)
}

func TestHiddifyCreateAccount(t *testing.T) {
	var req hiddifyAddUserRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin-token/api/v1/user/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	server := entity.Server{URL: srv.URL, Username: "admin-token"}
	subURL, err := NewHiddifyClient().CreateAccount(context.Background(), server, testSettings())
	require.NoError(t, err)

	assert.Equal(t, "Alice-ab12cd34-42", req.Name)
	assert.Equal(t, 60, req.UsageLimitGB)
	assert.Equal(t, 30, req.PackageDays)
	assert.Equal(t, "no_reset", req.Mode)
	assert.True(t, strings.HasPrefix(subURL, srv.URL+"/"), subURL)
	assert.True(t, strings.HasSuffix(subURL, "#Alice-ab12cd34-42"), subURL)
}

func TestHiddifyCreateAccountServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHiddifyClient().CreateAccount(context.Background(),
		entity.Server{URL: srv.URL, Username: "tok"}, testSettings())
	assert.Error(t, err)
}
