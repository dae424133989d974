package scheduler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"rentapi/internal/repository"
)

// Deduper decides whether a reminder candidate may be persisted. A candidate
// is suppressed when a notification carrying the same dedupe key was created
// inside the suppression window. Matching is by exact key, not by rendered
// text, so wording changes cannot silently disable suppression.
type Deduper struct {
	repo   repository.NotificationRepository
	window time.Duration
}

func NewDeduper(repo repository.NotificationRepository, window time.Duration) *Deduper {
	return &Deduper{repo: repo, window: window}
}

// Window returns the suppression window.
func (d *Deduper) Window() time.Duration {
	return d.window
}

// DedupeKey derives the idempotency key for one (recipient, tier, subject)
// reminder. The tier threshold participates so a subject migrating from NEAR
// to IMMINENT re-arms immediately rather than waiting out the window.
func DedupeKey(recipientID, titleCode, subjectKind, subjectID string, tierDays int) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		recipientID,
		titleCode,
		subjectKind,
		subjectID,
		strconv.Itoa(tierDays),
	}, "|")))
	return hex.EncodeToString(h[:])
}

// ShouldCreate reports whether no matching notification exists inside the
// window ending at now.
func (d *Deduper) ShouldCreate(ctx context.Context, key string, now time.Time) (bool, error) {
	exists, err := d.repo.ExistsWithDedupeKey(ctx, key, now.Add(-d.window))
	if err != nil {
		return false, err
	}
	return !exists, nil
}
