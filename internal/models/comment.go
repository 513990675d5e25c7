package models

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
)

// Comment is feedback left on a mentorship log.
type Comment struct {
	ID                  string     `json:"id"`
	MentorshipLogID     string     `json:"mentorship_log_id"`
	UserID              string     `json:"user_id"`
	CommentText         string     `json:"comment_text"`
	IsSpecialistComment bool       `json:"is_specialist_comment"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	UserName            string     `json:"user_name"`
	UserRole            authz.Role `json:"user_role"`
}

// CommentRequest is the payload for creating or editing a comment.
type CommentRequest struct {
	CommentText string `json:"comment_text" binding:"required,min=1,max=5000"`
}

// CommentColumns is the select list matching ScanComment.
const CommentColumns = `c.id, c.mentorship_log_id, c.user_id, c.comment_text,
	c.is_specialist_comment, c.created_at, c.updated_at, u.name, u.role::text`

// ScanComment scans a row selected with CommentColumns, joined to users u.
func ScanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	var role string

	err := row.Scan(
		&c.ID,
		&c.MentorshipLogID,
		&c.UserID,
		&c.CommentText,
		&c.IsSpecialistComment,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.UserName,
		&role,
	)
	if err != nil {
		return nil, err
	}
	c.UserRole = authz.Role(role)
	return &c, nil
}

// ScanComments scans every row and closes rows.
func ScanComments(rows pgx.Rows) ([]*Comment, error) {
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		c, err := ScanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
