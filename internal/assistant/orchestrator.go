package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"routinely/internal/catalog"
	"routinely/internal/session"
)

// SystemPrompt seeds every conversation. It scopes the assistant to the
// product catalog domain.
const SystemPrompt = "You are a helpful beauty advisor. You answer questions about skincare, haircare, makeup, fragrance and related routines, and you help the user build personalized routines from the products they have selected. Politely decline questions outside these topics."

// routinePreamble introduces the selected product data in the synthesized
// routine instruction.
const routinePreamble = "Create a personalized routine using only the following selected products. Explain the order of application, when to use each product, and any tips for combining them. Products:"

// Orchestrator runs the two request flows, chat and routine generation,
// against a single conversation. At most one request may be outstanding at
// a time; concurrent calls fail fast with ErrRequestInFlight instead of
// queueing.
type Orchestrator struct {
	client    *Client
	history   *session.History
	selection *session.SelectionStore
	model     string
	logger    *slog.Logger

	inFlight atomic.Bool
}

// NewOrchestrator wires the gateway client to the session state.
func NewOrchestrator(client *Client, history *session.History, selection *session.SelectionStore, model string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client:    client,
		history:   history,
		selection: selection,
		model:     model,
		logger:    logger,
	}
}

// History exposes the conversation for rendering and export.
func (o *Orchestrator) History() *session.History {
	return o.history
}

// Selection exposes the selection store.
func (o *Orchestrator) Selection() *session.SelectionStore {
	return o.selection
}

// Chat sends a free-form user message with the full conversation as
// context and returns the assistant reply.
//
// The user turn is committed to history before the request goes out and is
// not rolled back on failure. The assistant turn is appended only on
// success, so a failed request leaves an unanswered user turn that the
// next request naturally retransmits.
func (o *Orchestrator) Chat(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return "", ErrRequestInFlight
	}
	defer o.inFlight.Store(false)

	o.history.AppendUser(text)

	start := time.Now()
	reply, err := o.client.ChatCompletion(ctx, o.history.Snapshot(), o.model)
	if err != nil {
		o.logger.Error("chat request failed", "error", err, "duration", time.Since(start))
		return "", err
	}

	o.logger.Debug("chat request completed", "duration", time.Since(start), "history_len", o.history.Len())
	o.history.AppendAssistant(reply)
	return reply, nil
}

// GenerateRoutine asks the assistant for a routine built from the current
// selection. The synthesized instruction rides along as an ephemeral user
// turn: it is sent with the full prior conversation but never stored, so
// only the assistant's routine text enters the history.
//
// An empty selection fails with ErrEmptySelection before any network
// activity.
func (o *Orchestrator) GenerateRoutine(ctx context.Context) (string, error) {
	products := o.selection.Products()
	if len(products) == 0 {
		return "", ErrEmptySelection
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return "", ErrRequestInFlight
	}
	defer o.inFlight.Store(false)

	instruction, err := buildRoutineInstruction(products)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reply, err := o.client.ChatCompletion(ctx, o.history.Snapshot(session.Message{
		Role:    session.RoleUser,
		Content: instruction,
	}), o.model)
	if err != nil {
		o.logger.Error("routine request failed", "error", err, "duration", time.Since(start), "products", len(products))
		return "", err
	}

	o.logger.Debug("routine request completed", "duration", time.Since(start), "products", len(products))
	o.history.AppendAssistant(reply)
	return reply, nil
}

// routineProduct is the reduced product view embedded in the routine
// instruction. Ids and image URLs are deliberately left out.
type routineProduct struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func buildRoutineInstruction(products []catalog.Product) (string, error) {
	reduced := make([]routineProduct, len(products))
	for i, p := range products {
		reduced[i] = routineProduct{
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    p.Category,
			Description: p.Description,
		}
	}

	data, err := json.MarshalIndent(reduced, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal selected products: %w", err)
	}
	return routinePreamble + "\n" + string(data), nil
}
