// Package history keeps a local log of completed reviews.
package history

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrDuplicate = errors.New("review already recorded")
)

// Review is one stored review of one file.
type Review struct {
	ID        string
	Repo      string
	Ref       string
	Path      string
	Provider  string
	Content   string
	Error     *string
	Duration  time.Duration
	CreatedAt time.Time
}

// Failed reports whether the review ended with an error.
func (r *Review) Failed() bool {
	return r.Error != nil
}

type ListOptions struct {
	Repo  string
	Path  string
	Limit int
}

type Store interface {
	Add(review *Review) error
	Get(id string) (*Review, error)
	List(opts ListOptions) ([]Review, error)
	Delete(id string) error
	Close() error
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
