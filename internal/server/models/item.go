package models

// Item is the per-user remote document for a habit. LastModified is stamped
// by the server clock at upsert time; clients never set it on the way in.
type Item struct {
	ItemID       string
	UserID       string
	Name         string
	Description  string
	ClockInCount int64
	LastModified int64
	Deleted      bool
}

// Record is the remote document for a single check-in.
type Record struct {
	RecordID     string
	UserID       string
	ItemID       string
	Timestamp    int64
	LastModified int64
	Deleted      bool
}
