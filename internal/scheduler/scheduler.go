package scheduler

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rentapi/internal/deadline"
	"rentapi/internal/model"
	"rentapi/internal/numbering"
	"rentapi/internal/repository"
	"rentapi/internal/service"
	"rentapi/internal/storage"
)

// Action selects which part of the sweep a manual trigger runs. The empty
// action is the full sweep: reminders always, maintenance when the day is
// the first of the month.
type Action string

const (
	ActionFull          Action = ""
	ActionReminders     Action = "reminders"
	ActionCleanup       Action = "cleanup"
	ActionMonthlyReport Action = "monthly-report"
)

// ParseAction validates an action string from a trigger request.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionFull, ActionReminders, ActionCleanup, ActionMonthlyReport:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown scheduler action %q", s)
	}
}

func (a Action) String() string {
	if a == ActionFull {
		return "full"
	}
	return string(a)
}

// Summary tallies one invocation. Per-subject failures are counted, never
// fatal: deadline reminders are best-effort infrastructure, not a critical
// transaction.
type Summary struct {
	InvoiceReminders  int   `json:"invoice_reminders"`
	ContractReminders int   `json:"contract_reminders"`
	Suppressed        int   `json:"suppressed"`
	Failed            int   `json:"failed"`
	PurgedEvents      int64 `json:"purged_events"`
	Reports           int   `json:"reports"`
	ReportFailures    int   `json:"report_failures"`
	MaintenanceRan    bool  `json:"maintenance_ran"`
}

// Scheduler orchestrates one stateless sweep: scan deadlines, filter through
// the deduper, persist surviving reminders, and on the first of the month
// run retention cleanup and per-owner report synthesis. Every step is
// idempotent, so overlapping invocations (a retried timer, a manual trigger
// racing the cron) need no cross-process lock.
type Scheduler struct {
	scanner       *deadline.Scanner
	deduper       *Deduper
	notifications repository.NotificationRepository
	documents     repository.DocumentRepository
	activity      service.ActivityService
	store         storage.Storage
	th            deadline.Thresholds
	retentionDays int
	metrics       *Metrics
	log           *zap.Logger
}

func New(
	scanner *deadline.Scanner,
	deduper *Deduper,
	notifications repository.NotificationRepository,
	documents repository.DocumentRepository,
	activity service.ActivityService,
	store storage.Storage,
	th deadline.Thresholds,
	retentionDays int,
	metrics *Metrics,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		scanner:       scanner,
		deduper:       deduper,
		notifications: notifications,
		documents:     documents,
		activity:      activity,
		store:         store,
		th:            th,
		retentionDays: retentionDays,
		metrics:       metrics,
		log:           log,
	}
}

// Run executes one invocation at the given instant. now is threaded through
// every step so calendar-boundary behavior is deterministic under test.
// The returned error covers only whole-invocation failures (the deadline
// scan itself); per-subject and maintenance failures land in the Summary.
func (s *Scheduler) Run(ctx context.Context, now time.Time, action Action) (Summary, error) {
	var sum Summary
	var err error

	switch action {
	case ActionReminders:
		err = s.runReminders(ctx, now, &sum)
	case ActionCleanup:
		s.runCleanup(ctx, now, &sum)
	case ActionMonthlyReport:
		s.runMonthlyReports(ctx, now, &sum)
	case ActionFull:
		err = s.runReminders(ctx, now, &sum)
		if now.Day() == 1 {
			sum.MaintenanceRan = true
			s.runCleanup(ctx, now, &sum)
			s.runMonthlyReports(ctx, now, &sum)
		}
	default:
		return sum, fmt.Errorf("unknown scheduler action %q", action)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.runs.WithLabelValues(action.String(), status).Inc()

	s.log.Info("scheduler run finished",
		zap.String("action", action.String()),
		zap.Time("now", now),
		zap.Int("invoice_reminders", sum.InvoiceReminders),
		zap.Int("contract_reminders", sum.ContractReminders),
		zap.Int("suppressed", sum.Suppressed),
		zap.Int("failed", sum.Failed),
		zap.Int64("purged_events", sum.PurgedEvents),
		zap.Int("reports", sum.Reports),
	)
	return sum, err
}

func (s *Scheduler) runReminders(ctx context.Context, now time.Time, sum *Summary) error {
	candidates, err := s.scanner.Scan(ctx, now)
	if err != nil {
		return fmt.Errorf("deadline scan: %w", err)
	}

	for _, c := range candidates {
		msg, err := renderReminder(c)
		if err != nil {
			// One subject's formatting failure never aborts the batch.
			s.log.Error("render reminder failed",
				zap.String("subject_id", c.Subject.ID),
				zap.String("subject_kind", string(c.Subject.Kind)),
				zap.Error(err),
			)
			sum.Failed++
			continue
		}

		key := DedupeKey(c.Subject.OwnerID, msg.titleCode, string(c.Subject.Kind), c.Subject.ID, s.th.Days(c.Tier))
		create, err := s.deduper.ShouldCreate(ctx, key, now)
		if err != nil {
			s.log.Error("dedupe lookup failed",
				zap.String("subject_id", c.Subject.ID),
				zap.Error(err),
			)
			sum.Failed++
			continue
		}
		if !create {
			sum.Suppressed++
			s.metrics.suppressed.Inc()
			continue
		}

		_, err = s.notifications.Create(ctx, &model.Notification{
			ID:          uuid.NewString(),
			RecipientID: c.Subject.OwnerID,
			Title:       msg.title,
			Body:        msg.body,
			SubjectRef:  msg.subjectRef,
			DedupeKey:   key,
			CreatedAt:   now,
		})
		if err != nil {
			s.log.Error("persist reminder failed",
				zap.String("subject_id", c.Subject.ID),
				zap.Error(err),
			)
			sum.Failed++
			continue
		}

		switch c.Subject.Kind {
		case deadline.SubjectInvoice:
			sum.InvoiceReminders++
		case deadline.SubjectContract:
			sum.ContractReminders++
		}
		s.metrics.created.WithLabelValues(string(c.Subject.Kind)).Inc()
	}

	return nil
}

func (s *Scheduler) runCleanup(ctx context.Context, now time.Time, sum *Summary) {
	deleted, err := s.activity.Purge(ctx, now, s.retentionDays)
	if err != nil {
		// Maintenance failures never roll back the reminder pass.
		s.log.Error("retention purge failed", zap.Error(err))
		return
	}
	sum.PurgedEvents = deleted
	s.metrics.purged.Add(float64(deleted))

	s.activity.Record(ctx, &model.ActivityEvent{
		ActorUserID: "system",
		Action:      model.ActionPurge,
		EntityKind:  model.EntityUser,
		Description: fmt.Sprintf("retention purge removed %d activity events older than %d days", deleted, s.retentionDays),
		Metadata: map[string]string{
			"deleted": strconv.FormatInt(deleted, 10),
		},
		CreatedAt: now,
	})
}

func (s *Scheduler) runMonthlyReports(ctx context.Context, now time.Time, sum *Summary) {
	// Reports always cover the period before the one now falls in.
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	period := numbering.PeriodOf(prev)
	label := prev.Format("January 2006")

	owners, err := s.documents.ListOwnerIDs(ctx)
	if err != nil {
		s.log.Error("list owners for monthly reports failed", zap.Error(err))
		sum.ReportFailures++
		return
	}

	for _, owner := range owners {
		if err := s.synthesizeReport(ctx, now, owner, period, label, sum); err != nil {
			// One owner's failure never blocks the rest.
			s.log.Error("monthly report failed",
				zap.String("owner_id", owner),
				zap.Int("period", period),
				zap.Error(err),
			)
			sum.ReportFailures++
		}
	}
}

func (s *Scheduler) synthesizeReport(ctx context.Context, now time.Time, owner string, period int, label string, sum *Summary) error {
	key := DedupeKey(owner, "monthly_report", "report", strconv.Itoa(period), 0)
	create, err := s.deduper.ShouldCreate(ctx, key, now)
	if err != nil {
		return fmt.Errorf("dedupe lookup: %w", err)
	}
	if !create {
		sum.Suppressed++
		s.metrics.suppressed.Inc()
		return nil
	}

	ps, err := s.documents.PeriodSummary(ctx, owner, period)
	if err != nil {
		return fmt.Errorf("period summary: %w", err)
	}

	objKey := fmt.Sprintf("reports/%s/%d.csv", owner, period)
	body, err := renderReportCSV(period, ps)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if _, err := s.store.Put(ctx, objKey, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "text/csv",
	}); err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	link, err := s.store.PresignGet(ctx, objKey, 7*24*time.Hour)
	if err != nil {
		// The artifact exists; fall back to its key so the notification
		// still points somewhere resolvable.
		s.log.Warn("presign report link failed", zap.String("key", objKey), zap.Error(err))
		link = objKey
	}

	_, err = s.notifications.Create(ctx, &model.Notification{
		ID:          uuid.NewString(),
		RecipientID: owner,
		Title:       "Monthly Report Ready",
		Body: fmt.Sprintf("Your %s report is ready: %d invoice(s) totalling Rp %s and %d receipt(s) totalling Rp %s. Download: %s",
			label, ps.InvoiceCount, formatAmount(ps.InvoiceTotal), ps.ReceiptCount, formatAmount(ps.ReceiptTotal), link),
		SubjectRef: objKey,
		DedupeKey:  key,
		CreatedAt:  now,
	})
	if err != nil {
		return fmt.Errorf("persist report notification: %w", err)
	}

	sum.Reports++
	s.metrics.created.WithLabelValues("report").Inc()
	return nil
}

func renderReportCSV(period int, ps *repository.PeriodSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{
		{"period", "invoice_count", "invoice_total", "receipt_count", "receipt_total"},
		{
			strconv.Itoa(period),
			strconv.Itoa(ps.InvoiceCount),
			ps.InvoiceTotal.String(),
			strconv.Itoa(ps.ReceiptCount),
			ps.ReceiptTotal.String(),
		},
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
