package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/14ChannelBBS/Qua/internal/api"
	"github.com/14ChannelBBS/Qua/internal/domain"
	"github.com/14ChannelBBS/Qua/internal/service"
)

// tokenCookieMaxAge keeps verification tokens alive for ten years.
const tokenCookieMaxAge = 10 * 365 * 24 * 60 * 60

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var body api.CreateThreadRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}
	ip, err := getIP(r)
	if err != nil {
		writeError(w, err)
		return
	}

	thread, err := h.post.CreateThread(r.Context(), domain.ThreadCreationData{
		Board:     mux.Vars(r)["board"],
		Title:     body.Title,
		Name:      body.Name,
		Command:   body.Command,
		Content:   body.Content,
		Cookies:   cookieMap(r),
		IpAddress: ip,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.FromThread(thread))
}

func (h *Handler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	board, key, err := threadVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body api.CreateResponseRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}
	ip, err := getIP(r)
	if err != nil {
		writeError(w, err)
		return
	}

	response, err := h.post.CreateResponse(r.Context(), domain.ResponseCreationData{
		Board:     board,
		ThreadKey: key,
		Name:      body.Name,
		Command:   body.Command,
		Content:   body.Content,
		Cookies:   cookieMap(r),
		IpAddress: ip,
	})
	if errors.Is(err, service.ErrPostedButNoContent) {
		// the reactions were applied; nothing was created
		writeJSON(w, http.StatusOK, map[string]any{"detail": "POSTED_BUT_NO_CONTENT"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.FromResponse(response))
}

func (h *Handler) Verification(w http.ResponseWriter, r *http.Request) {
	var body api.VerificationRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}
	ip, err := getIP(r)
	if err != nil {
		writeError(w, err)
		return
	}

	identity, err := h.identity.Mint(r.Context(), body.TurnstileResponse, ip)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   service.TokenCookie,
		Value:  identity.Token,
		Path:   "/",
		MaxAge: tokenCookieMaxAge,
	})
	writeJSON(w, http.StatusOK, api.VerificationResponse{
		Detail:  "VERIFICATION_SUCCESSFUL",
		Message: "認証が完了しました。",
		Token:   identity.Token,
	})
}
