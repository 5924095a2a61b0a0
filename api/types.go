package api

import "encoding/json"

// Member is one member of a group
type Member struct {
	UserID   string `json:"user_id,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	ID       string `json:"id,omitempty"` // membership id, used for removal
	Muted    bool   `json:"muted,omitempty"`
	AutoKick bool   `json:"autokicked,omitempty"`

	// Fields used only when adding members
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Group is a group conversation
type Group struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	CreatorUserID string   `json:"creator_user_id,omitempty"`
	CreatedAt     int64    `json:"created_at,omitempty"`
	UpdatedAt     int64    `json:"updated_at,omitempty"`
	OfficeMode    bool     `json:"office_mode,omitempty"`
	Share         bool     `json:"share,omitempty"`
	ShareURL      string   `json:"share_url,omitempty"`
	Members       []Member `json:"members,omitempty"`
}

// Attachment is one message attachment (image, location, emoji, ...)
type Attachment struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`

	// Location attachments
	Lat  string `json:"lat,omitempty"`
	Lng  string `json:"lng,omitempty"`
	Name string `json:"name,omitempty"`

	// Anything the API adds that we do not model explicitly
	Extra json.RawMessage `json:"-"`
}

// Message is one group or direct message. CreatedAt is epoch seconds.
type Message struct {
	ID          string       `json:"id"`
	SourceGUID  string       `json:"source_guid,omitempty"`
	CreatedAt   int64        `json:"created_at,omitempty"`
	GroupID     string       `json:"group_id,omitempty"`
	UserID      string       `json:"user_id,omitempty"`
	SenderID    string       `json:"sender_id,omitempty"`
	SenderType  string       `json:"sender_type,omitempty"`
	RecipientID string       `json:"recipient_id,omitempty"`
	Name        string       `json:"name,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Text        string       `json:"text,omitempty"`
	System      bool         `json:"system,omitempty"`
	FavoritedBy []string     `json:"favorited_by,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Sender returns the display name of the message author, falling back to
// the sender id when the name is absent.
func (m Message) Sender() string {
	if m.Name != "" {
		return m.Name
	}
	if m.SenderID != "" {
		return m.SenderID
	}
	return m.UserID
}

// LikeCount returns the number of users who favorited the message
func (m Message) LikeCount() int {
	return len(m.FavoritedBy)
}

// Chat is a direct-message conversation with one other user
type Chat struct {
	CreatedAt   int64    `json:"created_at,omitempty"`
	UpdatedAt   int64    `json:"updated_at,omitempty"`
	OtherUser   User     `json:"other_user"`
	LastMessage *Message `json:"last_message,omitempty"`
}

// User is an account, either the authenticated user or a chat peer
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

// Bot is a bot attached to a group
type Bot struct {
	BotID       string `json:"bot_id"`
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// MemberAddResult is returned by AddMembers; poll MemberResults with the id
type MemberAddResult struct {
	ResultsID string `json:"results_id"`
}

// MemberResults reports the outcome of a previous AddMembers call
type MemberResults struct {
	Members []Member `json:"members"`
}

// OAuthToken is the reply from the OAuth token exchange
type OAuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// envelope is the top-level REST reply shape: {"meta": ..., "response": ...}
type envelope struct {
	Meta     meta            `json:"meta"`
	Response json.RawMessage `json:"response"`
}

type meta struct {
	Code   int      `json:"code"`
	Errors []string `json:"errors,omitempty"`
}

// messagesPage mirrors the group-messages list reply
type messagesPage struct {
	Count    int       `json:"count"`
	Messages []Message `json:"messages"`
}

// directMessagesPage mirrors the direct-messages list reply
type directMessagesPage struct {
	Count          int       `json:"count"`
	DirectMessages []Message `json:"direct_messages"`
}
