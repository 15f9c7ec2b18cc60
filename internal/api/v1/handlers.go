package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"dynipupdater/api/types"
	"dynipupdater/internal/app"
	"dynipupdater/internal/logbuffer"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	app     *app.App
	logs    *logbuffer.Buffer
	onClose func()
}

// NewHandler serves a's state. onClose, if set, is called after a close
// request has revoked the rules; logs may be nil.
func NewHandler(a *app.App, logs *logbuffer.Buffer, onClose func()) *Handler {
	return &Handler{app: a, logs: logs, onClose: onClose}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	WriteJson(w, http.StatusOK, types.StatusRes{
		PublicIP:   h.app.PublicIP(),
		DeviceName: h.app.Config().Settings.DeviceName,
		Closed:     h.app.Closed(),
		Open:       ToRuleResultsRes(h.app.OpenResults()),
		Close:      ToRuleResultsRes(h.app.CloseResults()),
	})
}

// Close is the explicit user action equivalent of closing the window. It
// shares the latch with the signal handler.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	log.Info().Str("remote", r.RemoteAddr).Msg("close requested over api")
	results, err := h.app.Close(context.WithoutCancel(r.Context()))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("failed to close rules: %v", err))
		return
	}
	WriteJson(w, http.StatusOK, types.CloseRes{Close: ToRuleResultsRes(results)})
	if h.onClose != nil {
		h.onClose()
	}
}

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		WriteJson(w, http.StatusOK, types.LogsRes{Logs: []types.LogEntryRes{}})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	WriteJson(w, http.StatusOK, ToLogsRes(h.logs.Entries(r.URL.Query().Get("level"), limit)))
}
