// Package domain defines the persistence models for users, profiles,
// personas, avatars, chat messages, and mood entries. These types are mapped
// with GORM and form the core data layer of the wellness companion backend.
package domain

import (
	"time"
)

// Persona kinds. The "user_defined" sentinel marks the catalog entry whose
// system prompt may be overridden per avatar by CustomPersona.
const (
	PersonaKindPreset      = "preset"
	PersonaKindUserDefined = "user_defined"
)

// Message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Mood entry sources.
const (
	MoodSourceManual = "manual"
	MoodSourceAuto   = "auto"
)

// User is a registered account. Email and username are unique; the password
// is stored only as a bcrypt hash. A user owns exactly one Profile, created
// empty at registration.
type User struct {
	ID           uint      `json:"id"       gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email"    gorm:"type:varchar(255);not null;uniqueIndex"`
	Username     string    `json:"username" gorm:"type:varchar(64);not null;uniqueIndex"`
	PasswordHash string    `json:"-"        gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Profile holds the optional personal facts the context assembler feeds into
// the model prompt. All fields except UserID may be empty; updates are
// partial (only supplied fields change).
type Profile struct {
	ID              uint      `json:"id"               gorm:"primaryKey;autoIncrement"`
	UserID          uint      `json:"user_id"          gorm:"not null;uniqueIndex"`
	Name            string    `json:"name"             gorm:"type:varchar(100)"`
	Gender          string    `json:"gender"           gorm:"type:varchar(16)"`
	AvatarPath      string    `json:"avatar_path"      gorm:"type:varchar(255)"`
	BirthDate       string    `json:"birth_date"       gorm:"type:varchar(10)"` // YYYY-MM-DD
	Goal            string    `json:"goal"             gorm:"type:text"`
	SelfDescription string    `json:"self_description" gorm:"type:text"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// Persona is an immutable, seeded system-prompt template describing an AI
// personality. Kind distinguishes the fixed presets from the single
// user-defined sentinel entry.
type Persona struct {
	ID           uint   `json:"id"            gorm:"primaryKey;autoIncrement"`
	Name         string `json:"name"          gorm:"type:varchar(64);not null;uniqueIndex"`
	SystemPrompt string `json:"system_prompt" gorm:"type:text;not null"`
	Description  string `json:"description"   gorm:"type:varchar(255)"`
	Kind         string `json:"kind"          gorm:"type:varchar(16);not null;default:'preset';check:kind IN ('preset','user_defined')"`
}

// TableName returns the database table name for Persona.
func (Persona) TableName() string { return "personas" }

// IsUserDefined reports whether this persona is the customizable sentinel.
func (p Persona) IsUserDefined() bool { return p.Kind == PersonaKindUserDefined }

// Avatar binds a persona (or a custom override) to a chat identity owned by
// a user. A user may own any number of avatars. Deleting an avatar removes
// its chat messages as well.
type Avatar struct {
	ID              uint      `json:"id"                gorm:"primaryKey;autoIncrement"`
	UserID          uint      `json:"user_id"           gorm:"not null;index:idx_user_avatars"`
	AvatarName      string    `json:"avatar_name"       gorm:"type:varchar(100);not null"`
	AppearanceType  string    `json:"appearance_type"   gorm:"type:varchar(32);not null"`
	CustomImagePath string    `json:"custom_image_path" gorm:"type:varchar(255)"`
	PersonaID       uint      `json:"persona_id"        gorm:"not null"`
	CustomPersona   string    `json:"custom_persona"    gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Persona Persona `json:"-" gorm:"foreignKey:PersonaID;references:ID"`
}

// TableName returns the database table name for Avatar.
func (Avatar) TableName() string { return "avatars" }

// AvatarView is an Avatar joined with its persona's display fields, the shape
// returned by list/get reads.
type AvatarView struct {
	Avatar
	PersonaName        string `json:"persona_name"`
	SystemPrompt       string `json:"system_prompt"`
	PersonaDescription string `json:"persona_description"`
	PersonaKind        string `json:"persona_kind"`
}

// EffectivePrompt resolves the system prompt a chat turn should use: the
// avatar's custom persona text when the bound persona is the user-defined
// sentinel and a custom text is set, the persona's stock prompt otherwise.
func (v AvatarView) EffectivePrompt() string {
	if v.PersonaKind == PersonaKindUserDefined && v.CustomPersona != "" {
		return v.CustomPersona
	}
	return v.SystemPrompt
}

// ChatMessage is a single utterance in a user↔avatar conversation. Rows are
// append-only; the autoincrement ID is monotonic per the insertion order.
type ChatMessage struct {
	ID        uint      `json:"id"        gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id"   gorm:"not null;index:idx_user_avatar_msgs,priority:1"`
	AvatarID  uint      `json:"avatar_id" gorm:"not null;index:idx_user_avatar_msgs,priority:2"`
	Sender    string    `json:"sender"    gorm:"type:varchar(8);not null;check:sender IN ('user','ai')"`
	Message   string    `json:"message"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"timestamp" gorm:"index:idx_user_avatar_msgs,priority:3"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// MoodEntry records one emoji per user per calendar day. Date is stored as a
// zero-padded YYYY-MM-DD string; the (UserID, Date) pair is unique and a new
// write for the same day replaces the prior entry regardless of source.
type MoodEntry struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id"    gorm:"not null;uniqueIndex:ux_mood_user_date,priority:1"`
	Date      string    `json:"date"       gorm:"type:varchar(10);not null;uniqueIndex:ux_mood_user_date,priority:2"`
	MoodEmoji string    `json:"mood_emoji" gorm:"type:varchar(16);not null"`
	Source    string    `json:"source"     gorm:"type:varchar(8);not null;check:source IN ('manual','auto')"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for MoodEntry.
func (MoodEntry) TableName() string { return "mood_entries" }
