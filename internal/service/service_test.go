package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/bearphone-pos/internal/model"
)

type stubRepo struct {
	created   *model.Sale
	createErr error

	sales    []model.Sale
	listErr  error
	getSale  *model.Sale
	getErr   error
	stats    *model.DashboardStats
	statsErr error
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) CreateSale(ctx context.Context, sale *model.Sale) (*model.Sale, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	stored := *sale
	stored.ID = 1
	stored.CreatedAt = time.Now()
	s.created = &stored
	return &stored, nil
}

func (s *stubRepo) ListSales(ctx context.Context) ([]model.Sale, error) {
	return s.sales, s.listErr
}

func (s *stubRepo) GetSaleByID(ctx context.Context, id int64) (*model.Sale, error) {
	return s.getSale, s.getErr
}

func (s *stubRepo) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	return s.stats, s.statsErr
}

type stubMessenger struct {
	configured bool
	sendErr    error

	sent chan sentMessage
}

type sentMessage struct {
	phone string
	body  string
}

func newStubMessenger() *stubMessenger {
	return &stubMessenger{
		configured: true,
		sent:       make(chan sentMessage, 1),
	}
}

func (m *stubMessenger) Configured() bool { return m.configured }

func (m *stubMessenger) SendMessage(ctx context.Context, phone, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent <- sentMessage{phone: phone, body: body}
	return nil
}

func newTestService(t *testing.T, repo *stubRepo, m *stubMessenger) *Service {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewService(repo, m, logger, "http://localhost:8080", time.Second)
}

func validInput() CreateSaleInput {
	return CreateSaleInput{
		CustomerName:     "Ali",
		Phone:            "0501234567",
		ItemDescription:  "Screen",
		Quantity:         2,
		Price:            100,
		Discount:         10,
		Paid:             150,
		WarrantyDuration: string(model.WarrantyOneMonth),
	}
}

func TestCreateSale_DerivedFields(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, newStubMessenger())

	stored, err := svc.CreateSale(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateSale error: %v", err)
	}

	if stored.NetAmountCents != 19000 {
		t.Fatalf("net = %d, want 19000", stored.NetAmountCents)
	}
	if stored.RemainingCents != 4000 {
		t.Fatalf("remaining = %d, want 4000", stored.RemainingCents)
	}
	if stored.WarrantyExpiry == nil {
		t.Fatalf("warranty expiry must be present for one month warranty")
	}

	wantExpiry := stored.SaleDate.AddDate(0, 0, 30)
	if !stored.WarrantyExpiry.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want %v", stored.WarrantyExpiry, wantExpiry)
	}

	if stored.SaleDate.IsZero() {
		t.Fatalf("sale date must be assigned server-side")
	}
}

func TestCreateSale_NoWarranty(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, newStubMessenger())

	in := validInput()
	in.WarrantyDuration = string(model.WarrantyNone)

	stored, err := svc.CreateSale(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateSale error: %v", err)
	}
	if stored.WarrantyExpiry != nil {
		t.Fatalf("expiry = %v, want nil without warranty", stored.WarrantyExpiry)
	}
}

func TestCreateSale_DefaultQuantity(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, newStubMessenger())

	in := validInput()
	in.Quantity = 0
	in.Discount = 0
	in.Paid = 0

	stored, err := svc.CreateSale(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateSale error: %v", err)
	}
	if stored.Quantity != 1 {
		t.Fatalf("quantity = %d, want default 1", stored.Quantity)
	}
	if stored.NetAmountCents != 10000 {
		t.Fatalf("net = %d, want 10000", stored.NetAmountCents)
	}
}

func TestCreateSale_ValidationRejectsBeforePersistence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateSaleInput)
	}{
		{name: "missing customer name", mutate: func(in *CreateSaleInput) { in.CustomerName = "  " }},
		{name: "missing phone", mutate: func(in *CreateSaleInput) { in.Phone = "" }},
		{name: "missing item description", mutate: func(in *CreateSaleInput) { in.ItemDescription = "" }},
		{name: "non-positive price", mutate: func(in *CreateSaleInput) { in.Price = 0 }},
		{name: "negative discount", mutate: func(in *CreateSaleInput) { in.Discount = -1 }},
		{name: "negative paid", mutate: func(in *CreateSaleInput) { in.Paid = -1 }},
		{name: "negative quantity", mutate: func(in *CreateSaleInput) { in.Quantity = -2 }},
		{name: "unknown warranty", mutate: func(in *CreateSaleInput) { in.WarrantyDuration = "lifetime" }},
		{name: "discount exceeds total", mutate: func(in *CreateSaleInput) { in.Discount = 1000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{}
			messenger := newStubMessenger()
			svc := newTestService(t, repo, messenger)

			in := validInput()
			tt.mutate(&in)

			_, err := svc.CreateSale(context.Background(), in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if repo.created != nil {
				t.Fatalf("record must not be created on validation failure")
			}
			select {
			case msg := <-messenger.sent:
				t.Fatalf("unexpected notification: %+v", msg)
			default:
			}
		})
	}
}

func TestCreateSale_PersistenceFailure(t *testing.T) {
	repo := &stubRepo{createErr: errors.New("connection refused")}
	svc := newTestService(t, repo, newStubMessenger())

	_, err := svc.CreateSale(context.Background(), validInput())
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("persistence failure must not be reported as validation failure")
	}
}

func TestNotificationDispatch(t *testing.T) {
	repo := &stubRepo{}
	messenger := newStubMessenger()
	svc := newTestService(t, repo, messenger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.StartNotificationWorker(ctx)

	stored, err := svc.CreateSale(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateSale error: %v", err)
	}

	select {
	case msg := <-messenger.sent:
		if msg.phone != "966501234567" {
			t.Fatalf("phone = %q, want normalized 966501234567", msg.phone)
		}
		wantID := "رقم الفاتورة: 1"
		if !containsAll(msg.body, wantID, "190.00", "/api/sales/1/pdf", model.NotesPlaceholder) {
			t.Fatalf("unexpected message body: %q", msg.body)
		}
		_ = stored
	case <-time.After(2 * time.Second):
		t.Fatalf("notification was not dispatched")
	}
}

func TestNotificationFailureDoesNotAffectCreate(t *testing.T) {
	repo := &stubRepo{}
	messenger := newStubMessenger()
	messenger.sendErr = errors.New("ultramsg unavailable")
	svc := newTestService(t, repo, messenger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.StartNotificationWorker(ctx)

	stored, err := svc.CreateSale(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateSale must succeed regardless of dispatch: %v", err)
	}
	if stored.ID == 0 {
		t.Fatalf("stored sale must have an id")
	}
}

func TestNotificationSkippedWithoutCredentials(t *testing.T) {
	repo := &stubRepo{}
	messenger := newStubMessenger()
	messenger.configured = false
	svc := newTestService(t, repo, messenger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.StartNotificationWorker(ctx)

	if _, err := svc.CreateSale(ctx, validInput()); err != nil {
		t.Fatalf("CreateSale error: %v", err)
	}

	select {
	case msg := <-messenger.sent:
		t.Fatalf("unexpected notification without credentials: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
