package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skbidisigma1/groupme-cli/config"
	"github.com/skbidisigma1/groupme-cli/errors"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Token = "test-token"
	cfg.APIBase = baseURL
	cfg.ImageBase = baseURL
	cfg.OAuthBase = baseURL
	cfg.HTTPTimeout = 5 * time.Second
	return cfg
}

func respond(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"meta":     map[string]any{"code": 200},
		"response": payload,
	})
	require.NoError(t, err)
}

func TestNewClientRequiresToken(t *testing.T) {
	cfg := config.Default()
	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingToken)

	_, err = NewClient(nil)
	require.Error(t, err)
}

func TestAuthHeaders(t *testing.T) {
	var gotAuth, gotAccess string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccess = r.Header.Get("X-Access-Token")
		respond(t, w, User{ID: "1"})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "test-token", gotAccess)
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		respond(t, w, User{ID: "42", Name: "Test User"})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", me.ID)
	assert.Equal(t, "Test User", me.Name)
}

func TestListAllGroupsWalksPages(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			respond(t, w, []Group{{ID: "g1", Name: "One"}, {ID: "g2", Name: "Two"}})
		case "2":
			respond(t, w, []Group{{ID: "g3", Name: "Three"}})
		default:
			respond(t, w, []Group{})
		}
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	groups, err := c.ListAllGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"1", "2", "3"}, pages)
	assert.Equal(t, "g3", groups[2].ID)
}

func TestGroupMessagesQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/123/messages", r.URL.Path)
		gotQuery = r.URL.Query()
		respond(t, w, messagesPage{Count: 2, Messages: []Message{
			{ID: "9", Text: "newest"},
			{ID: "8", Text: "older"},
		}})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	msgs, err := c.GroupMessages(context.Background(), "123", "10", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "9", msgs[0].ID)
	assert.Equal(t, "50", gotQuery.Get("limit"))
	assert.Equal(t, "10", gotQuery.Get("before_id"))
}

func TestGroupMessagesLimitClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		respond(t, w, messagesPage{})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	_, err = c.GroupMessages(context.Background(), "123", "", 500)
	require.NoError(t, err)
}

func TestSendGroupMessageGeneratesSourceGUID(t *testing.T) {
	var got map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, map[string]any{"message": Message{ID: "m1", Text: "hi"}})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	msg, err := c.SendGroupMessage(context.Background(), "123", "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.NotEmpty(t, got["message"]["source_guid"])
	assert.Equal(t, "hi", got["message"]["text"])
}

func TestDirectMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/direct_messages", r.URL.Path)
		assert.Equal(t, "777", r.URL.Query().Get("other_user_id"))
		respond(t, w, directMessagesPage{Count: 1, DirectMessages: []Message{{ID: "d1"}}})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	msgs, err := c.DirectMessages(context.Background(), "777", "", 20)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "d1", msgs[0].ID)
}

func TestErrorReplySurfacesMetaErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"meta":{"code":401,"errors":["token invalid"]}}`)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFetch(err))
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "token invalid")
	assert.Contains(t, err.Error(), "401")
}

func TestLikeUnlike(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		respond(t, w, map[string]any{})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.LikeMessage(ctx, "conv", "m1"))
	require.NoError(t, c.UnlikeMessage(ctx, "conv", "m1"))
	assert.Equal(t, []string{"/messages/conv/m1/like", "/messages/conv/m1/unlike"}, paths)
}

func TestUploadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pictures", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Access-Token"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `{"payload":{"url":"https://img.example.test/i.png"}}`)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	u, err := c.UploadImage(context.Background(), []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.test/i.png", u)
}

func TestAuthorizeURL(t *testing.T) {
	u := AuthorizeURL("https://oauth.example.test", "cid", "https://cb", "st")
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", parsed.Path)
	assert.Equal(t, "cid", parsed.Query().Get("client_id"))
	assert.Equal(t, "https://cb", parsed.Query().Get("redirect_uri"))
	assert.Equal(t, "st", parsed.Query().Get("state"))
}

func TestExchangeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "code123", r.Form.Get("code"))
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer"}`)
	}))
	defer srv.Close()

	token, err := ExchangeToken(context.Background(), srv.Client(), srv.URL, "cid", "secret", "code123", "")
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
}

func TestMessageSenderFallback(t *testing.T) {
	assert.Equal(t, "Alice", Message{Name: "Alice", SenderID: "1"}.Sender())
	assert.Equal(t, "1", Message{SenderID: "1"}.Sender())
	assert.Equal(t, "2", Message{UserID: "2"}.Sender())
	assert.Equal(t, 2, Message{FavoritedBy: []string{"a", "b"}}.LikeCount())
}
