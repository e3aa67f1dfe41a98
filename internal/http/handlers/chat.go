package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fitroom-server/internal/domain"
	"fitroom-server/internal/providers/chat"
	"fitroom-server/internal/storage"
)

const fashionPersona = "You are a friendly and knowledgeable fashion assistant. " +
	"Provide helpful, specific fashion advice: outfit combinations, fit, color " +
	"matching, and styling for occasions. Keep answers conversational and concise."

const modelPhotoAddendum = " The user has shared a photo of themselves wearing " +
	"their current outfit; refer to what you can see in it when giving advice."

type chatRequest struct {
	Message   string        `json:"message"`
	History   []domain.Turn `json:"history"`
	SessionID string        `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

func (a *App) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Request must be JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.error(w, http.StatusBadRequest, "No message provided")
		return
	}

	token := req.SessionID
	key, err := a.Tokens.Parse(token)
	if err != nil {
		// Unknown or expired tokens start a fresh session.
		token, key, err = a.Tokens.Mint()
		if err != nil {
			a.Logger.Error().Err(err).Msg("mint session token")
			a.error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	stored, _, err := a.Sessions.Get(r.Context(), key)
	if err != nil {
		a.Logger.Error().Err(err).Msg("load session history")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	system := fashionPersona
	var photo []byte
	if a.Files.Exists(storage.ModelPhotoName) {
		if data, readErr := a.Files.Read(storage.ModelPhotoName); readErr == nil {
			photo = data
			system += modelPhotoAddendum
		}
	}

	messages := buildMessages(req.History, req.Message, photo)

	ctx, cancel := context.WithTimeout(r.Context(), a.Config.ChatTimeout)
	defer cancel()
	reply, err := a.ChatClient.Complete(ctx, chat.Request{
		System:    system,
		Messages:  messages,
		MaxTokens: chat.DefaultMaxTokens,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("provider", a.ChatClient.Provider()).Msg("chat completion failed")
		a.error(w, http.StatusInternalServerError, "Failed to get response from AI service")
		return
	}

	updated := append(stored,
		domain.Turn{Role: domain.RoleUser, Content: req.Message},
		domain.Turn{Role: domain.RoleAssistant, Content: reply},
	)
	if err := a.Sessions.Put(r.Context(), key, updated); err != nil {
		// The reply already cost an upstream call; return it and log the loss.
		a.Logger.Error().Err(err).Str("session", key).Msg("persist session history")
	}

	a.json(w, http.StatusOK, chatResponse{Response: reply, SessionID: token})
}

func (a *App) ChatClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	// An unverifiable token means there is nothing to clear.
	if key, err := a.Tokens.Parse(req.SessionID); err == nil {
		if delErr := a.Sessions.Delete(r.Context(), key); delErr != nil {
			a.Logger.Error().Err(delErr).Str("session", key).Msg("clear session")
		}
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Conversation cleared"})
}

// buildMessages turns the caller-supplied history plus the new message into
// provider turns. System turns smuggled into the history are dropped; the
// model photo, when present, rides on the final user turn.
func buildMessages(history []domain.Turn, message string, photo []byte) []chat.Message {
	var messages []chat.Message
	for _, turn := range history {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, chat.Message{Role: turn.Role, Text: turn.Content})
	}
	last := chat.Message{Role: domain.RoleUser, Text: message}
	if len(photo) > 0 {
		last.ImageData = photo
		last.ImageMIME = "image/jpeg"
	}
	return append(messages, last)
}
