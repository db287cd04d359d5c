package models

import "time"

// Domain models matching the database schema in db/migrations/*/00001_init.sql

// Status is the moderation state of a submitted pass. The service only ever
// writes StatusNew; the other values are set by moderators out of band.
type Status string

const (
	StatusNew      Status = "new"
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// PassRecord is a row of pereval_added with its JSON columns decoded.
type PassRecord struct {
	ID          int64      `json:"id" db:"id"`
	RawData     RawData    `json:"raw_data" db:"raw_data"`
	Images      Images     `json:"images" db:"images"`
	Status      Status     `json:"status" db:"status"`
	DateAdded   time.Time  `json:"date_added" db:"date_added"`
	DateUpdated *time.Time `json:"date_updated,omitempty" db:"date_updated"`
}

// PerevalPatch carries the optional parts of an update. A nil RawData or
// Images means "keep the stored value"; a non-nil empty value replaces it.
type PerevalPatch struct {
	RawData RawData `json:"raw_data,omitempty"`
	Images  Images  `json:"images,omitempty"`
}

// ImageBlob is an uploaded binary image stored in pereval_images.
type ImageBlob struct {
	ID        int64     `json:"id" db:"id"`
	Data      []byte    `json:"-" db:"img"`
	DateAdded time.Time `json:"date_added" db:"date_added"`
}

type Area struct {
	ID       int64  `json:"id" db:"id"`
	ParentID int64  `json:"parent_id" db:"id_parent"`
	Title    string `json:"title" db:"title"`
}

type ActivityType struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// FromMillis converts a stored unix-millisecond timestamp to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
