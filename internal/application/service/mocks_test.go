package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/domain/route"
)

type mockStore struct {
	bills *mockBillResource
}

func (m *mockStore) Bills() port.BillResource {
	return m.bills
}

type mockBillResource struct {
	mock.Mock
}

func (m *mockBillResource) List(ctx context.Context) ([]entity.Bill, error) {
	args := m.Called(ctx)
	bills, _ := args.Get(0).([]entity.Bill)
	return bills, args.Error(1)
}

func (m *mockBillResource) Create(ctx context.Context, bill *entity.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *mockBillResource) Update(ctx context.Context, bill *entity.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

type mockNavigator struct {
	mock.Mock
}

func (m *mockNavigator) Navigate(r route.Route) {
	m.Called(r)
}

type mockModal struct {
	mock.Mock
}

func (m *mockModal) Show(content port.ModalContent) {
	m.Called(content)
}

type mockReceipts struct {
	mock.Mock
}

func (m *mockReceipts) SaveReceipt(ctx context.Context, fileName string, content []byte) (*port.StoredReceipt, error) {
	args := m.Called(ctx, fileName, content)
	stored, _ := args.Get(0).(*port.StoredReceipt)
	return stored, args.Error(1)
}

func (m *mockReceipts) DeleteReceipt(ctx context.Context, fileURL string) error {
	return m.Called(ctx, fileURL).Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt *event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

type attrIcon map[string]string

func (a attrIcon) Attr(name string) string {
	return a[name]
}

type logEntry struct {
	level         string
	msg           string
	keysAndValues []interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.record("info", msg, keysAndValues)
}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.record("error", msg, keysAndValues)
}

func (l *recordingLogger) record(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, keysAndValues: kv})
}

func (l *recordingLogger) errors() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}

func fixtureBills() []entity.Bill {
	return []entity.Bill{
		{
			ID:       "47qAXb6fIm2zOKkLzMro",
			Email:    "a@a",
			Type:     entity.ExpenseTypeHotel,
			Name:     "encore",
			Date:     "2004-04-04",
			Amount:   decimal.NewFromInt(400),
			VAT:      "80",
			Pct:      20,
			FileURL:  "https://test.storage.tld/v0/b/billable/receipt-1.jpg",
			FileName: "preview-facture-free-201801-pdf-1.jpg",
			Status:   entity.BillStatusPending,
		},
		{
			ID:           "BeKy5Mo4jkmdfPGYpTxZ",
			Email:        "a@a",
			Type:         entity.ExpenseTypeTransports,
			Name:         "test1",
			Date:         "2001-01-01",
			Amount:       decimal.NewFromInt(100),
			VAT:          "",
			Pct:          20,
			FileURL:      "https://test.storage.tld/v0/b/billable/receipt-2.jpg",
			FileName:     "1592770761.jpeg",
			Status:       entity.BillStatusRefused,
			CommentAdmin: "en fait non",
		},
		{
			ID:           "UIUZtnPQvnbFnB0ozvJh",
			Email:        "a@a",
			Type:         entity.ExpenseTypeOnlineService,
			Name:         "test3",
			Date:         "2003-03-03",
			Amount:       decimal.NewFromInt(300),
			VAT:          "60",
			Pct:          20,
			FileURL:      "https://test.storage.tld/v0/b/billable/receipt-3.jpg",
			FileName:     "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png",
			Status:       entity.BillStatusAccepted,
			CommentAdmin: "bon bah d'accord",
		},
		{
			ID:         "qcCK3SzECmaZAGRrHjaC",
			Email:      "a@a",
			Type:       entity.ExpenseTypeRestaurants,
			Name:       "test2",
			Date:       "2002-02-02",
			Amount:     decimal.NewFromInt(200),
			VAT:        "40",
			Pct:        20,
			Commentary: "test2",
			FileURL:    "https://test.storage.tld/v0/b/billable/receipt-4.jpg",
			FileName:   "preview-facture-free-201801-pdf-1.jpg",
			Status:     entity.BillStatusRefused,
		},
	}
}
