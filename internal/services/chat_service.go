// Package services – ChatService
//
// This file implements the context-assembly pipeline: it resolves the
// avatar, persists the incoming message, builds a bounded prompt out of the
// behavioral preamble, the effective persona, optional profile facts, and
// the trimmed history, and makes exactly one call to the external
// chat-completion collaborator.
//
// Upstream failures are absorbed: a reason-specific fallback string is
// persisted as the AI's reply and returned as a soft success, so the
// conversation log always gains a response turn and clients render a chat
// turn uniformly whether or not the model call worked.
//
// Observability: SendMessage is OpenTelemetry-instrumented; spans carry the
// user and avatar identifiers.
package services

import (
	"context"
	"strings"
	"sync"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindmate/mindmate-backend/internal/domain"
	"github.com/mindmate/mindmate-backend/internal/llm"
)

// behaviorPreamble is prepended to every system prompt, ahead of the persona
// content, and takes priority over it.
const behaviorPreamble = "Keep your replies concise and direct. Avoid flowery or ornate language. " +
	"Reply in the language the user writes in and do not mix languages. " +
	"These rules take priority over the persona instructions that follow."

// personalizationHint closes the profile-facts block when any fact is present.
const personalizationHint = "Use this information to make the conversation more personal and caring where appropriate."

// historyLimit is the number of prior entries fed to the model as context.
const historyLimit = 10

// fallbackReplies maps an upstream failure reason to the user-facing string
// persisted as the AI's turn.
var fallbackReplies = map[string]string{
	llm.ReasonInvalidCredential: "The assistant's API key looks invalid. Please check the server configuration.",
	llm.ReasonRateLimited:       "I'm receiving too many requests right now. Please try again in a moment.",
	llm.ReasonModelUnavailable:  "The assistant's model is unavailable right now. Please try again later.",
	llm.ReasonNetwork:           "I couldn't reach the assistant service. Please check the connection and try again.",
	llm.ReasonOther:             "Sorry, I can't reply right now.",
}

// ChatStore defines the persistence contract required by ChatService.
type ChatStore interface {
	// GetAvatar fetches an avatar scoped to its owner, joined with persona fields.
	GetAvatar(ctx context.Context, db *gorm.DB, id, userID uint) (*domain.AvatarView, error)

	// GetProfile fetches the user's profile for personalization facts.
	GetProfile(ctx context.Context, db *gorm.DB, userID uint) (*domain.Profile, error)

	// CreateMessage appends one conversation entry.
	CreateMessage(ctx context.Context, db *gorm.DB, userID, avatarID uint, sender, message string) (*domain.ChatMessage, error)

	// RecentMessages returns at most limit newest entries in ascending order.
	RecentMessages(ctx context.Context, db *gorm.DB, userID, avatarID uint, limit int) ([]domain.ChatMessage, error)
}

// ChatTurn is the outcome of one send: the user's message and the AI's reply
// (which may be a fallback string when the upstream call failed).
type ChatTurn struct {
	UserMessage *domain.ChatMessage
	AIMessage   *domain.ChatMessage
}

// ChatService assembles model prompts and runs chat turns.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the conversation/avatar/profile persistence contract.
	Store ChatStore
	// Model is the external chat-completion collaborator.
	Model llm.ChatCompleter

	// MaxTokens bounds the model's output length per turn.
	MaxTokens int
	// Temperature is the fixed, deterministic-leaning sampling temperature.
	Temperature float64

	// locks serializes appends per (user, avatar) pair.
	locks keyedMutex
}

// NewChatService constructs a ChatService with the configured output bounds.
func NewChatService(db *gorm.DB, store ChatStore, model llm.ChatCompleter, maxTokens int, temperature float64) *ChatService {
	return &ChatService{
		DB:          db,
		Store:       store,
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// SendMessage runs one chat turn: Received → UserMessageSaved →
// {ReplySaved | FallbackSaved}. The user's message is persisted before the
// upstream call so it survives a model failure; there is exactly one call
// attempt per turn and upstream errors never surface to the caller.
func (s *ChatService) SendMessage(ctx context.Context, userID, avatarID uint, message string) (*ChatTurn, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "SendMessage",
		trace.WithAttributes(
			attribute.Int("user.id", int(userID)),
			attribute.Int("avatar.id", int(avatarID)),
		),
	)
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if avatarID == 0 {
		return nil, ErrValidation
	}

	avatar, err := s.Store.GetAvatar(ctx, s.DB, avatarID, userID)
	if err != nil {
		return nil, ErrAvatarNotFound
	}

	// Serialize appends for this (user, avatar) pair so racing turns land
	// in issuance order.
	unlock := s.locks.lock(userID, avatarID)
	defer unlock()

	userMsg, err := s.Store.CreateMessage(ctx, s.DB, userID, avatarID, domain.SenderUser, message)
	if err != nil {
		return nil, err
	}

	systemPrompt := s.buildSystemPrompt(ctx, userID, avatar)
	turns := s.buildTurns(ctx, userID, avatarID, userMsg.ID, message)

	reply, callErr := s.Model.Complete(ctx, systemPrompt, turns, s.MaxTokens, s.Temperature)
	if callErr != nil {
		reply = FallbackReply(callErr)
	}

	aiMsg, err := s.Store.CreateMessage(ctx, s.DB, userID, avatarID, domain.SenderAI, reply)
	if err != nil {
		return nil, err
	}
	return &ChatTurn{UserMessage: userMsg, AIMessage: aiMsg}, nil
}

// History returns at most limit entries for the user in ascending
// chronological order, optionally scoped to one avatar (avatarID == 0 means
// all avatars).
func (s *ChatService) History(ctx context.Context, userID, avatarID uint, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.Store.RecentMessages(ctx, s.DB, userID, avatarID, limit)
}

// buildSystemPrompt composes, in fixed order, the non-negotiable preamble,
// the effective persona prompt, and the profile facts block when any fact is
// present. Profile read failures simply omit the facts; personalization is
// best effort.
func (s *ChatService) buildSystemPrompt(ctx context.Context, userID uint, avatar *domain.AvatarView) string {
	var b strings.Builder
	b.WriteString(behaviorPreamble)
	b.WriteString("\n\n")
	b.WriteString(avatar.EffectivePrompt())

	if profile, err := s.Store.GetProfile(ctx, s.DB, userID); err == nil {
		if facts := profileFacts(profile); len(facts) > 0 {
			b.WriteString("\n\nUser information:\n")
			b.WriteString(strings.Join(facts, "\n"))
			b.WriteString("\n\n")
			b.WriteString(personalizationHint)
		}
	}
	return b.String()
}

// buildTurns maps the trimmed history onto model roles and appends the new
// message as the final turn. The just-saved user row is excluded from the
// history portion so it appears exactly once.
func (s *ChatService) buildTurns(ctx context.Context, userID, avatarID, currentID uint, message string) []llm.Turn {
	history, err := s.Store.RecentMessages(ctx, s.DB, userID, avatarID, historyLimit+1)
	if err != nil {
		history = nil
	}

	turns := make([]llm.Turn, 0, len(history)+1)
	for _, m := range history {
		if m.ID == currentID {
			continue
		}
		role := "assistant"
		if m.Sender == domain.SenderUser {
			role = "user"
		}
		turns = append(turns, llm.Turn{Role: role, Content: m.Message})
	}
	if len(turns) > historyLimit {
		turns = turns[len(turns)-historyLimit:]
	}
	return append(turns, llm.Turn{Role: "user", Content: message})
}

// profileFacts renders the present profile fields as prompt lines.
func profileFacts(p *domain.Profile) []string {
	var facts []string
	if p.Name != "" {
		facts = append(facts, "- The user's name is "+p.Name+".")
	}
	switch p.Gender {
	case "male":
		facts = append(facts, "- The user is male.")
	case "female":
		facts = append(facts, "- The user is female.")
	}
	if p.Goal != "" {
		facts = append(facts, "- The user's personal goal: "+p.Goal)
	}
	if p.BirthDate != "" {
		facts = append(facts, "- The user's birthday is "+p.BirthDate+".")
	}
	if p.SelfDescription != "" {
		facts = append(facts, "- The user describes themselves as: "+p.SelfDescription)
	}
	return facts
}

// FallbackReply picks the user-facing string for an upstream failure.
func FallbackReply(err error) string {
	if msg, ok := fallbackReplies[llm.ReasonOf(err)]; ok {
		return msg
	}
	return fallbackReplies[llm.ReasonOther]
}

// keyedMutex hands out one mutex per (user, avatar) pair. Entries are tiny
// and bounded by the number of active pairs, so they are never evicted.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[[2]uint]*sync.Mutex
}

// lock acquires the pair's mutex and returns its unlock func.
func (k *keyedMutex) lock(userID, avatarID uint) func() {
	key := [2]uint{userID, avatarID}
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[[2]uint]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
