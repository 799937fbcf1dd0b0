package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/14ChannelBBS/Qua/internal/api"
	"github.com/14ChannelBBS/Qua/internal/domain"
)

func (h *Handler) GetBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.board.Boards()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromBoards(boards))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.board.Get(mux.Vars(r)["board"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromBoard(board))
}

func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	page := 0
	if pageQuery := r.URL.Query().Get("page"); pageQuery != "" {
		var err error
		if page, err = strconv.Atoi(pageQuery); err != nil {
			http.Error(w, "invalid page: must be an integer", http.StatusBadRequest)
			return
		}
	}

	threads, err := h.board.Threads(mux.Vars(r)["board"], page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromThreads(threads))
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	board, key, err := threadVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	thread, err := h.board.Thread(board, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromThread(thread))
}

func (h *Handler) GetResponses(w http.ResponseWriter, r *http.Request) {
	board, key, err := threadVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	thread, err := h.board.Thread(board, key)
	if err != nil {
		writeError(w, err)
		return
	}
	responses, err := h.board.Responses(board, key)
	if err != nil {
		writeError(w, err)
		return
	}

	rendered := h.post.RenderResponses(&thread, responses, domain.DeviceOfficialClient)
	writeJSON(w, http.StatusOK, api.FromResponses(rendered))
}

func threadVars(r *http.Request) (domain.BoardId, domain.ThreadKey, error) {
	vars := mux.Vars(r)
	key, err := strconv.ParseInt(vars["thread"], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid thread key: must be an integer")
	}
	return vars["board"], key, nil
}
