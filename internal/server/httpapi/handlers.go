package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/logging"
	"github.com/clockd/clockd/internal/server/models"
	"github.com/clockd/clockd/internal/server/services"
	"github.com/clockd/clockd/internal/syncapi"
)

type handler struct {
	users  *services.UserService
	sync   *services.SyncService
	logger logging.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, syncapi.ErrorResponse{Error: err.Error()})
}

func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, syncapi.PingResponse{Status: "ok"})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req syncapi.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, errors.New("username and password are required"))
		return
	}

	if _, err := h.users.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, common.ErrorAlreadyExists)
			return
		}
		h.logger.Error(r.Context(), "register failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal)
		return
	}

	writeJSON(w, http.StatusOK, syncapi.PingResponse{Status: "ok"})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req syncapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	userID, pair, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal)
		return
	}

	writeJSON(w, http.StatusOK, syncapi.TokenResponse{
		UserID:       userID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req syncapi.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	userID, pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRefreshTokenExpired):
			writeError(w, http.StatusUnauthorized, common.ErrRefreshTokenExpired)
		case errors.Is(err, common.ErrorUnauthorized):
			writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
		default:
			h.logger.Error(r.Context(), "refresh failed", "error", err)
			writeError(w, http.StatusInternalServerError, common.ErrorInternal)
		}
		return
	}

	writeJSON(w, http.StatusOK, syncapi.TokenResponse{
		UserID:       userID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// sinceParam parses the since query parameter. Absent means 0, i.e. a full
// fetch.
func sinceParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (h *handler) fetchItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
		return
	}

	since, err := sinceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid since parameter"))
		return
	}

	items, err := h.sync.ItemsSince(r.Context(), userID, since)
	if err != nil {
		h.logger.Error(r.Context(), "fetch items failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal)
		return
	}

	resp := syncapi.FetchItemsResponse{Items: make([]syncapi.Item, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, itemToWire(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) pushItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
		return
	}

	var req syncapi.PushItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	in := make([]*models.Item, 0, len(req.Items))
	for i := range req.Items {
		in = append(in, itemFromWire(&req.Items[i]))
	}

	stamped, err := h.sync.PushItems(r.Context(), userID, in)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "push items failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal)
		return
	}

	resp := syncapi.PushItemsResponse{Items: make([]syncapi.Item, 0, len(stamped))}
	for _, item := range stamped {
		resp.Items = append(resp.Items, itemToWire(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) fetchRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
		return
	}

	since, err := sinceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid since parameter"))
		return
	}

	records, err := h.sync.RecordsSince(r.Context(), userID, since)
	if err != nil {
		h.logger.Error(r.Context(), "fetch records failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal)
		return
	}

	resp := syncapi.FetchRecordsResponse{Records: make([]syncapi.Record, 0, len(records))}
	for _, record := range records {
		resp.Records = append(resp.Records, recordToWire(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) pushRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
		return
	}

	var req syncapi.PushRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	in := make([]*models.Record, 0, len(req.Records))
	for i := range req.Records {
		in = append(in, recordFromWire(&req.Records[i]))
	}

	stamped, err := h.sync.PushRecords(r.Context(), userID, in)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "push records failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal)
		return
	}

	resp := syncapi.PushRecordsResponse{Records: make([]syncapi.Record, 0, len(stamped))}
	for _, record := range stamped {
		resp.Records = append(resp.Records, recordToWire(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

func itemToWire(item *models.Item) syncapi.Item {
	return syncapi.Item{
		ItemID:       item.ItemID,
		UserID:       item.UserID,
		Name:         item.Name,
		Description:  item.Description,
		ClockInCount: item.ClockInCount,
		LastModified: item.LastModified,
		Deleted:      item.Deleted,
	}
}

func itemFromWire(item *syncapi.Item) *models.Item {
	return &models.Item{
		ItemID:       item.ItemID,
		UserID:       item.UserID,
		Name:         item.Name,
		Description:  item.Description,
		ClockInCount: item.ClockInCount,
		LastModified: item.LastModified,
		Deleted:      item.Deleted,
	}
}

func recordToWire(record *models.Record) syncapi.Record {
	return syncapi.Record{
		RecordID:     record.RecordID,
		UserID:       record.UserID,
		ItemID:       record.ItemID,
		Timestamp:    record.Timestamp,
		LastModified: record.LastModified,
		Deleted:      record.Deleted,
	}
}

func recordFromWire(record *syncapi.Record) *models.Record {
	return &models.Record{
		RecordID:     record.RecordID,
		UserID:       record.UserID,
		ItemID:       record.ItemID,
		Timestamp:    record.Timestamp,
		LastModified: record.LastModified,
		Deleted:      record.Deleted,
	}
}
