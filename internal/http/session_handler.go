package http

import (
	"net/http"
	"strings"
)

// Session stands in for the identity provider's sign-in callback.
type Session interface {
	Current() (string, bool)
	SignIn(userID string)
	SignOut()
}

type SessionHandler struct {
	session Session
}

func NewSessionHandler(session Session) *SessionHandler {
	return &SessionHandler{session: session}
}

type SignInRequestDTO struct {
	UserID string `json:"user_id"`
}

type SessionResponseDTO struct {
	UserID   string `json:"user_id,omitempty"`
	SignedIn bool   `json:"signed_in"`
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.session.Current()
	respondJSON(w, r, http.StatusOK, SessionResponseDTO{UserID: userID, SignedIn: ok})
}

// SignIn answers 202: the cart is rebound and refetched asynchronously.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_user_id", "user_id is required")
		return
	}

	h.session.SignIn(userID)
	respondJSON(w, r, http.StatusAccepted, SessionResponseDTO{UserID: userID, SignedIn: true})
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.session.SignOut()
	w.WriteHeader(http.StatusNoContent)
}
