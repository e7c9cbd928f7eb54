// Package services contains server-side business logic. Each service owns
// one resource, talks to storage through repomanager so it can run the same
// repositories on the pool or inside dbx.WithTx, and returns sentinel errors
// from internal/common for the transport layer to map.
package services

import (
	"context"
	"strings"
)

// Mailer delivers HTML email.
type Mailer interface {
	SendHTML(ctx context.Context, to, subject, body string) error
}

// PhotoStore keeps profile photos in object storage.
type PhotoStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// PhotoUpload is a profile photo received with a request.
type PhotoUpload struct {
	Data []byte
}

// Page is a 1-indexed pagination request.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
