package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// Attachment is a file uploaded against a mentorship log. FilePath is the
// object key in the bucket.
type Attachment struct {
	ID              string    `json:"id"`
	MentorshipLogID string    `json:"mentorship_log_id"`
	FileName        string    `json:"file_name"`
	FilePath        string    `json:"file_path"`
	FileSize        *int64    `json:"file_size"`
	FileType        *string   `json:"file_type"`
	UploadedBy      *string   `json:"uploaded_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// AttachmentURLResponse is returned by GET /api/attachments/url/:id.
type AttachmentURLResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadFile is one file of a multipart upload, already read into memory.
type UploadFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AttachmentColumns is the select list matching ScanAttachment.
const AttachmentColumns = `a.id, a.mentorship_log_id, a.file_name, a.file_path, a.file_size,
	a.file_type, a.uploaded_by, a.created_at`

// ScanAttachment scans a row selected with AttachmentColumns.
func ScanAttachment(row pgx.Row) (*Attachment, error) {
	var a Attachment
	err := row.Scan(
		&a.ID,
		&a.MentorshipLogID,
		&a.FileName,
		&a.FilePath,
		&a.FileSize,
		&a.FileType,
		&a.UploadedBy,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ScanAttachments scans every row and closes rows.
func ScanAttachments(rows pgx.Rows) ([]*Attachment, error) {
	defer rows.Close()

	items := []*Attachment{}
	for rows.Next() {
		a, err := ScanAttachment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
