// Package syncapi defines the JSON wire types shared by the client's remote
// adapter and the server's HTTP handlers.
//
// Timestamps travel as unix milliseconds. The local-only dirty flag is
// deliberately not part of the wire format: whether a copy is synced is a
// per-device fact, not a property of the document.
package syncapi

// Item is the remote document for a habit.
type Item struct {
	ItemID       string `json:"itemId"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ClockInCount int64  `json:"clockInCount"`
	LastModified int64  `json:"lastModified"`
	Deleted      bool   `json:"isDeleted"`
}

// Record is the remote document for a single check-in.
type Record struct {
	RecordID     string `json:"recordId"`
	UserID       string `json:"userId"`
	ItemID       string `json:"itemId"`
	Timestamp    int64  `json:"timestamp"`
	LastModified int64  `json:"lastModified"`
	Deleted      bool   `json:"isDeleted"`
}

type PushItemsRequest struct {
	Items []Item `json:"items"`
}

// PushItemsResponse echoes the accepted items with the server-observed
// lastModified stamped at write time.
type PushItemsResponse struct {
	Items []Item `json:"items"`
}

type PushRecordsRequest struct {
	Records []Record `json:"records"`
}

type PushRecordsResponse struct {
	Records []Record `json:"records"`
}

type FetchItemsResponse struct {
	Items []Item `json:"items"`
}

type FetchRecordsResponse struct {
	Records []Record `json:"records"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
