package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

const (
	welcomeText = "Boa regata para a equipa Mad Max! Como posso ajudar hoje?"
	failureText = "Erro ao conectar ao mapa. Por favor, tente novamente."
)

// DefaultLocation is used when no live position is known: Vigo harbour.
var DefaultLocation = core.Position{Lat: 42.2406, Lng: -8.7207}

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("empty message")

// Message is one entry of the chat history.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Links   []Link `json:"groundingLinks,omitempty"`
	IsError bool   `json:"isError,omitempty"`
}

// Conversation keeps the chat history. Requests are single-turn; the history
// is only for display.
type Conversation struct {
	mu       sync.Mutex
	asst     *Assistant
	location func() *core.Position
	messages []Message
}

// NewConversation starts a history with the welcome message. location may be
// nil or return nil, in which case DefaultLocation is used.
func NewConversation(a *Assistant, location func() *core.Position) *Conversation {
	return &Conversation{
		asst:     a,
		location: location,
		messages: []Message{{ID: "welcome", Role: RoleModel, Text: welcomeText}},
	}
}

// Send records text, asks the model and records its answer. On failure an
// error message is recorded and returned together with the error.
func (c *Conversation) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	c.append(Message{ID: uuid.NewString(), Role: RoleUser, Text: text})

	loc := DefaultLocation
	if c.location != nil {
		if p := c.location(); p != nil {
			loc = *p
		}
	}

	reply, err := c.asst.Ask(ctx, text, &loc)
	if err != nil {
		m := Message{ID: uuid.NewString(), Role: RoleModel, Text: failureText, IsError: true}
		c.append(m)
		return m, err
	}

	m := Message{ID: uuid.NewString(), Role: RoleModel, Text: reply.Text, Links: reply.Links}
	c.append(m)
	return m, nil
}

func (c *Conversation) append(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}
