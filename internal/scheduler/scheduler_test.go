package scheduler

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rentapi/internal/deadline"
	"rentapi/internal/model"
	"rentapi/internal/repository"
	repoMocks "rentapi/internal/repository/mocks"
	svcMocks "rentapi/internal/service/mocks"
	"rentapi/internal/storage"
	storageMocks "rentapi/internal/storage/mocks"
)

// notificationStore is a stateful in-memory NotificationRepository so
// repeated sweeps observe what earlier sweeps persisted.
type notificationStore struct {
	mu      sync.Mutex
	items   []model.Notification
	failFor map[string]error
}

func newNotificationStore() *notificationStore {
	return &notificationStore{failFor: map[string]error{}}
}

func (s *notificationStore) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[n.RecipientID]; err != nil {
		return nil, err
	}
	s.items = append(s.items, *n)
	return n, nil
}

func (s *notificationStore) ExistsWithDedupeKey(ctx context.Context, dedupeKey string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.DedupeKey == dedupeKey && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *notificationStore) ListByRecipient(ctx context.Context, recipientID string, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	return &repository.PageResult[model.Notification]{}, nil
}

func (s *notificationStore) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return 0, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id, recipientID string) error { return nil }

func (s *notificationStore) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return 0, nil
}

func (s *notificationStore) Delete(ctx context.Context, id, recipientID string) error { return nil }

type fixture struct {
	docs      *repoMocks.MockDocumentRepository
	contracts *repoMocks.MockContractRepository
	notifs    *notificationStore
	activity  *svcMocks.MockActivityService
	store     *storageMocks.MockStorage
	sched     *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		docs:      new(repoMocks.MockDocumentRepository),
		contracts: new(repoMocks.MockContractRepository),
		notifs:    newNotificationStore(),
		activity:  new(svcMocks.MockActivityService),
		store:     new(storageMocks.MockStorage),
	}

	th := deadline.DefaultThresholds()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f.sched = New(
		deadline.NewScanner(f.docs, f.contracts, th),
		NewDeduper(f.notifs, 24*time.Hour),
		f.notifs,
		f.docs,
		f.activity,
		f.store,
		th,
		90,
		metrics,
		zap.NewNop(),
	)
	return f
}

func TestScheduler_RemindersSuppressedWithinWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	dueDate := now.Add(72 * time.Hour)
	endDate := now.AddDate(0, 0, 14)

	f := newFixture(t)
	f.docs.On("ListPendingDueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Document{
		{
			ID:      "doc-1",
			OwnerID: "owner-1",
			Kind:    model.KindInvoice,
			Number:  "INV-202507-0001",
			Amount:  decimal.NewFromInt(18000),
			Status:  model.InvoiceStatusPending,
			DueDate: &dueDate,
		},
	}, nil)
	f.contracts.On("ListActiveEndingBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Contract{
		{ID: "ct-1", OwnerID: "owner-2", RoomName: "A-101", Status: model.ContractStatusActive, EndDate: endDate},
	}, nil)

	sum, err := f.sched.Run(ctx, now, ActionReminders)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InvoiceReminders)
	assert.Equal(t, 1, sum.ContractReminders)
	assert.Equal(t, 0, sum.Suppressed)
	require.Len(t, f.notifs.items, 2)

	invoice := f.notifs.items[0]
	assert.Equal(t, "owner-1", invoice.RecipientID)
	assert.Equal(t, "Invoice Due Soon", invoice.Title)
	assert.Contains(t, invoice.Body, "INV-202507-0001")
	assert.Contains(t, invoice.Body, "Rp 18,000")
	assert.Equal(t, "INV-202507-0001", invoice.SubjectRef)
	assert.NotEmpty(t, invoice.DedupeKey)

	// A re-run one hour later finds the same candidates and creates nothing.
	sum, err = f.sched.Run(ctx, now.Add(time.Hour), ActionReminders)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.InvoiceReminders)
	assert.Equal(t, 0, sum.ContractReminders)
	assert.Equal(t, 2, sum.Suppressed)
	assert.Len(t, f.notifs.items, 2)

	// Past the 24h window the same candidates arm again.
	sum, err = f.sched.Run(ctx, now.Add(25*time.Hour), ActionReminders)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InvoiceReminders)
	assert.Equal(t, 1, sum.ContractReminders)
	assert.Equal(t, 0, sum.Suppressed)
	assert.Len(t, f.notifs.items, 4)
}

func TestScheduler_TierMigrationReArmsInsideWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	dueDate := now.Add(26 * time.Hour) // 2 days remaining, near tier

	f := newFixture(t)
	f.docs.On("ListPendingDueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Document{
		{
			ID:      "doc-1",
			OwnerID: "owner-1",
			Kind:    model.KindInvoice,
			Number:  "INV-202507-0001",
			Amount:  decimal.NewFromInt(5000),
			Status:  model.InvoiceStatusPending,
			DueDate: &dueDate,
		},
	}, nil)
	f.contracts.On("ListActiveEndingBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Contract{}, nil)

	sum, err := f.sched.Run(ctx, now, ActionReminders)
	require.NoError(t, err)
	require.Equal(t, 1, sum.InvoiceReminders)
	assert.Equal(t, "Invoice Due Soon", f.notifs.items[0].Title)

	// Twenty hours later the invoice has crossed into the imminent tier.
	// The tighter tier carries a different dedupe key, so the escalation is
	// delivered even though the near reminder is still inside its window.
	sum, err = f.sched.Run(ctx, now.Add(20*time.Hour), ActionReminders)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InvoiceReminders)
	assert.Equal(t, 0, sum.Suppressed)
	require.Len(t, f.notifs.items, 2)
	assert.Equal(t, "Invoice Due Tomorrow", f.notifs.items[1].Title)
}

func TestScheduler_PartialFailureContinuesBatch(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	dueA := now.Add(48 * time.Hour)
	dueB := now.Add(60 * time.Hour)

	f := newFixture(t)
	f.notifs.failFor["owner-a"] = errors.New("insert failed")
	f.docs.On("ListPendingDueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Document{
		{ID: "doc-a", OwnerID: "owner-a", Kind: model.KindInvoice, Number: "INV-202507-0001",
			Amount: decimal.NewFromInt(100), Status: model.InvoiceStatusPending, DueDate: &dueA},
		{ID: "doc-b", OwnerID: "owner-b", Kind: model.KindInvoice, Number: "INV-202507-0002",
			Amount: decimal.NewFromInt(200), Status: model.InvoiceStatusPending, DueDate: &dueB},
	}, nil)
	f.contracts.On("ListActiveEndingBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Contract{}, nil)

	sum, err := f.sched.Run(ctx, now, ActionReminders)

	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.InvoiceReminders)
	require.Len(t, f.notifs.items, 1)
	assert.Equal(t, "owner-b", f.notifs.items[0].RecipientID)
}

func TestScheduler_ScanFailureAbortsRun(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)

	f := newFixture(t)
	f.docs.On("ListPendingDueBetween", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	_, err := f.sched.Run(ctx, now, ActionReminders)

	assert.ErrorContains(t, err, "deadline scan")
	assert.Empty(t, f.notifs.items)
}

func TestScheduler_FullSweepRunsMaintenanceOnFirstOfMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.August, 1, 2, 0, 0, 0, time.UTC)

	f := newFixture(t)
	f.docs.On("ListPendingDueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Document{}, nil)
	f.contracts.On("ListActiveEndingBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Contract{}, nil)

	f.activity.On("Purge", mock.Anything, now, 90).Return(int64(12), nil)
	f.activity.On("Record", mock.Anything, mock.AnythingOfType("*model.ActivityEvent")).Return()

	f.docs.On("ListOwnerIDs", mock.Anything).Return([]string{"owner-1"}, nil)
	f.docs.On("PeriodSummary", mock.Anything, "owner-1", 202507).Return(&repository.PeriodSummary{
		InvoiceCount: 3,
		ReceiptCount: 2,
		InvoiceTotal: decimal.NewFromInt(450000),
		ReceiptTotal: decimal.NewFromInt(300000),
	}, nil)

	var uploaded []byte
	f.store.On("Put", mock.Anything, "reports/owner-1/202507.csv", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			r := args.Get(2).(io.Reader)
			uploaded, _ = io.ReadAll(r)
		}).
		Return(storage.ObjectInfo{Key: "reports/owner-1/202507.csv"}, nil)
	f.store.On("PresignGet", mock.Anything, "reports/owner-1/202507.csv", 7*24*time.Hour).
		Return("https://example.test/reports/owner-1/202507.csv", nil)

	sum, err := f.sched.Run(ctx, now, ActionFull)

	require.NoError(t, err)
	assert.True(t, sum.MaintenanceRan)
	assert.Equal(t, int64(12), sum.PurgedEvents)
	assert.Equal(t, 1, sum.Reports)
	assert.Equal(t, 0, sum.ReportFailures)

	require.Len(t, f.notifs.items, 1)
	report := f.notifs.items[0]
	assert.Equal(t, "owner-1", report.RecipientID)
	assert.Equal(t, "Monthly Report Ready", report.Title)
	assert.Contains(t, report.Body, "July 2025")
	assert.Contains(t, report.Body, "Rp 450,000")
	assert.Contains(t, report.Body, "https://example.test/reports/owner-1/202507.csv")

	lines := strings.Split(strings.TrimSpace(string(uploaded)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "period,invoice_count,invoice_total,receipt_count,receipt_total", lines[0])
	assert.Equal(t, "202507,3,450000,2,300000", lines[1])

	f.activity.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func TestScheduler_FullSweepSkipsMaintenanceMidMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.August, 2, 2, 0, 0, 0, time.UTC)

	f := newFixture(t)
	f.docs.On("ListPendingDueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Document{}, nil)
	f.contracts.On("ListActiveEndingBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.Contract{}, nil)

	sum, err := f.sched.Run(ctx, now, ActionFull)

	require.NoError(t, err)
	assert.False(t, sum.MaintenanceRan)
	f.activity.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything, mock.Anything)
	f.docs.AssertNotCalled(t, "ListOwnerIDs", mock.Anything)
}

func TestScheduler_MonthlyReportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC)

	f := newFixture(t)
	f.docs.On("ListOwnerIDs", mock.Anything).Return([]string{"owner-1"}, nil)
	f.docs.On("PeriodSummary", mock.Anything, "owner-1", 202507).Return(&repository.PeriodSummary{
		InvoiceCount: 1,
		InvoiceTotal: decimal.NewFromInt(1000),
		ReceiptTotal: decimal.Zero,
	}, nil).Once()
	f.store.On("Put", mock.Anything, "reports/owner-1/202507.csv", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "reports/owner-1/202507.csv"}, nil).Once()
	f.store.On("PresignGet", mock.Anything, "reports/owner-1/202507.csv", 7*24*time.Hour).
		Return("https://example.test/r.csv", nil).Once()

	sum, err := f.sched.Run(ctx, now, ActionMonthlyReport)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Reports)
	require.Len(t, f.notifs.items, 1)

	// A second manual trigger inside the window is fully suppressed: no new
	// summary query, no new upload, no new notification.
	sum, err = f.sched.Run(ctx, now.Add(time.Hour), ActionMonthlyReport)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Reports)
	assert.Equal(t, 1, sum.Suppressed)
	assert.Len(t, f.notifs.items, 1)
	f.store.AssertExpectations(t)
}

func TestScheduler_PresignFailureFallsBackToObjectKey(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC)

	f := newFixture(t)
	f.docs.On("ListOwnerIDs", mock.Anything).Return([]string{"owner-1"}, nil)
	f.docs.On("PeriodSummary", mock.Anything, "owner-1", 202507).Return(&repository.PeriodSummary{
		InvoiceTotal: decimal.Zero,
		ReceiptTotal: decimal.Zero,
	}, nil)
	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)
	f.store.On("PresignGet", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("minio unreachable"))

	sum, err := f.sched.Run(ctx, now, ActionMonthlyReport)

	require.NoError(t, err)
	assert.Equal(t, 1, sum.Reports)
	require.Len(t, f.notifs.items, 1)
	assert.Contains(t, f.notifs.items[0].Body, "reports/owner-1/202507.csv")
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"", "reminders", "cleanup", "monthly-report"} {
		a, err := ParseAction(valid)
		require.NoError(t, err, "action %q", valid)
		assert.Equal(t, Action(valid), a)
	}

	_, err := ParseAction("defrag")
	assert.Error(t, err)
}
