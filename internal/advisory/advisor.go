package advisory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

const (
	RoleUser  = "user"
	RoleModel = "model"

	// historyTurns bounds how many earlier messages are replayed into the prompt.
	historyTurns = 10
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	errNoGenerator   = errors.New("advisory generator not configured")
)

// ClientDirectory resolves client display names.
type ClientDirectory interface {
	ClientName(clientID string) (string, bool)
}

// Advisor asks the generator and records the exchange under chat-history.
type Advisor struct {
	store   *sdk.Store
	gen     Generator
	clients ClientDirectory
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
}

// NewAdvisor constructs an Advisor. clients may be nil.
func NewAdvisor(store *sdk.Store, gen Generator, clients ClientDirectory) *Advisor {
	return &Advisor{
		store:   store,
		gen:     gen,
		clients: clients,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}
}

// History returns the stored conversation for a client, oldest first.
func (a *Advisor) History(clientID string) ([]schema.ChatMessage, error) {
	all, err := sdk.Load[schema.ChatMessage](a.store, sdk.KeyChatHistory)
	if err != nil {
		return nil, err
	}
	out := []schema.ChatMessage{}
	for _, m := range all {
		if m.ClientID == clientID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Ask streams the answer to w as it arrives and returns the full text. Nothing
// is persisted when the generator fails part way.
func (a *Advisor) Ask(ctx context.Context, clientID, question string, att *Attachment, w io.Writer) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if a.gen == nil {
		return "", errNoGenerator
	}
	history, err := a.History(clientID)
	if err != nil {
		return "", err
	}
	name := a.clientName(clientID)
	asked := a.now()

	var answer strings.Builder
	for fragment, err := range a.gen.Generate(ctx, a.prompt(name, history, question), att) {
		if err != nil {
			return "", err
		}
		answer.WriteString(fragment)
		if w != nil {
			if _, err := io.WriteString(w, fragment); err != nil {
				return "", fmt.Errorf("write answer: %w", err)
			}
		}
	}

	replied := a.now()
	err = a.store.Update(func() (map[string]string, error) {
		all, err := sdk.Load[schema.ChatMessage](a.store, sdk.KeyChatHistory)
		if err != nil {
			return nil, err
		}
		chat, err := sdk.Encode(append(all,
			schema.ChatMessage{ID: a.newID(), ClientID: clientID, Role: RoleUser, Text: question, Timestamp: asked},
			schema.ChatMessage{ID: a.newID(), ClientID: clientID, Role: RoleModel, Text: answer.String(), Timestamp: replied},
		))
		if err != nil {
			return nil, fmt.Errorf("encode chat history: %w", err)
		}
		logs, err := a.store.NextLog(schema.ActivityLogEntry{
			ID:         a.newID(),
			ClientID:   clientID,
			ClientName: name,
			Action:     "Advisory Query",
			Timestamp:  replied,
			Detail:     truncate(question, 80),
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{sdk.KeyChatHistory: chat, sdk.KeyActivityLog: logs}, nil
	})
	if err != nil {
		return "", err
	}
	a.logger.Info("advisory answered", "client_id", clientID, "chars", answer.Len())
	return answer.String(), nil
}

func (a *Advisor) clientName(clientID string) string {
	if a.clients != nil {
		if n, ok := a.clients.ClientName(clientID); ok {
			return n
		}
	}
	return clientID
}

func (a *Advisor) prompt(clientName string, history []schema.ChatMessage, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\n", clientName)
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	if len(history) > 0 {
		b.WriteString("\nEarlier conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Text)
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
