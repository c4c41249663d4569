package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"Tunelist/core/catalog"
	"Tunelist/core/library"
	"Tunelist/logger"
	"Tunelist/model"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// APIHandler 处理所有 /lists 下的请求
type APIHandler struct {
	svc *library.Service
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(svc *library.Service) *APIHandler {
	return &APIHandler{svc: svc}
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreatePlaylistHandler handles POST /lists.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	playlist, err := h.svc.CreatePlaylist(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", playlistLocation(playlist.Name))
	writeJSON(w, http.StatusCreated, playlist)
}

// ListPlaylistsHandler handles GET /lists.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.svc.ListPlaylists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler handles GET /lists/{name}.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}

	playlist, err := h.svc.GetPlaylist(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler handles DELETE /lists/{name}.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}

	if err := h.svc.DeletePlaylist(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTrackHandler handles POST /lists/{name}/tracks.
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}

	var in model.TrackInput
	if !decodeBody(w, r, &in) {
		return
	}

	track, err := h.svc.AddTrack(r.Context(), name, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", trackLocation(name, track.ID))
	writeJSON(w, http.StatusCreated, track)
}

// ListTracksHandler handles GET /lists/{name}/tracks.
func (h *APIHandler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}

	tracks, err := h.svc.ListTracks(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// DeleteTrackHandler handles DELETE /lists/{name}/tracks/{id}.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}

	// 非数字 id 不可能属于任何歌单
	trackID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	if err := h.svc.DeleteTrack(r.Context(), name, trackID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler handles GET /healthz.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func playlistLocation(name string) string {
	return "/lists/" + url.PathEscape(name)
}

func trackLocation(playlistName string, trackID uint64) string {
	return fmt.Sprintf("%s/tracks/%d", playlistLocation(playlistName), trackID)
}

// pathVar 读取并反转义路由变量，路由器使用编码后的路径匹配
func pathVar(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	value, err := url.PathUnescape(mux.Vars(r)[key])
	if err != nil {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}
	return value, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Debug("[API] 解析请求体失败", logger.String("requestId", RequestIDFromContext(r.Context())), logger.ErrorField(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("[API] 写入响应失败", logger.ErrorField(err))
	}
}

// writeError maps service errors to status codes. Unknown errors become 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, library.ErrInvalidArgument), errors.Is(err, library.ErrInvalidGenre):
		status = http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, library.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrValidationUnavailable):
		http.Error(w, "Genre validation is currently unavailable", http.StatusServiceUnavailable)
		return
	default:
		logger.Error("[API] 请求处理失败",
			logger.String("requestId", RequestIDFromContext(r.Context())),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Error(w, err.Error(), status)
}
