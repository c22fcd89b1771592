// Package service реализует бизнес-логику POS-системы Bear Phone.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/bearphone-pos/internal/model"
	"github.com/mmeshcher/bearphone-pos/internal/sale"
	"github.com/mmeshcher/bearphone-pos/internal/validation"
)

// ErrValidation помечает ошибки проверки входных данных; обработчик HTTP
// отвечает на них кодом 400.
var ErrValidation = errors.New("invalid sale input")

// Размер очереди отложенных уведомлений. При переполнении уведомление
// отбрасывается с записью в журнал, создание продажи не блокируется.
const notifyQueueSize = 64

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateSale(ctx context.Context, s *model.Sale) (*model.Sale, error)
	ListSales(ctx context.Context) ([]model.Sale, error)
	GetSaleByID(ctx context.Context, id int64) (*model.Sale, error)
	GetStats(ctx context.Context) (*model.DashboardStats, error)
}

// Messenger описывает контракт отправки сообщений клиенту.
type Messenger interface {
	Configured() bool
	SendMessage(ctx context.Context, phone, body string) error
}

// CreateSaleInput содержит поля новой продажи в риалах, как они приходят от клиента.
type CreateSaleInput struct {
	CustomerName     string
	Phone            string
	ItemDescription  string
	Quantity         int
	Price            float64
	Discount         float64
	Paid             float64
	WarrantyDuration string
	Notes            string
}

// Service содержит бизнес-логику POS-системы.
type Service struct {
	repo            Repository
	messenger       Messenger
	logger          *zap.Logger
	baseURL         string
	dispatchTimeout time.Duration
	notifyQueue     chan *model.Sale
}

// NewService создаёт сервис с указанными репозиторием и мессенджером.
// baseURL используется для ссылок на счёт в уведомлениях.
func NewService(repo Repository, messenger Messenger, logger *zap.Logger, baseURL string, dispatchTimeout time.Duration) *Service {
	return &Service{
		repo:            repo,
		messenger:       messenger,
		logger:          logger,
		baseURL:         strings.TrimRight(baseURL, "/"),
		dispatchTimeout: dispatchTimeout,
		notifyQueue:     make(chan *model.Sale, notifyQueueSize),
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func validateInput(in CreateSaleInput) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if strings.TrimSpace(in.ItemDescription) == "" {
		return fmt.Errorf("%w: item description is required", ErrValidation)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if in.Discount < 0 {
		return fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	if in.Paid < 0 {
		return fmt.Errorf("%w: paid amount must not be negative", ErrValidation)
	}
	return nil
}

// CreateSale проверяет входные данные, вычисляет производные поля и сохраняет
// продажу. Уведомление клиенту ставится в очередь и не влияет на результат.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*model.Sale, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	duration := model.WarrantyDuration(in.WarrantyDuration)
	if _, err := model.WarrantyOffsetDays(duration); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	priceCents := toCents(in.Price)
	discountCents := toCents(in.Discount)
	paidCents := toCents(in.Paid)

	netCents := sale.NetAmount(quantity, priceCents, discountCents)
	if netCents < 0 {
		return nil, fmt.Errorf("%w: discount exceeds the total", ErrValidation)
	}

	// Дата продажи назначается сервером; клиентское значение не принимается.
	saleDate := time.Now()

	expiry, err := sale.WarrantyExpiry(saleDate, duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	stored, err := s.repo.CreateSale(ctx, &model.Sale{
		CustomerName:     strings.TrimSpace(in.CustomerName),
		Phone:            strings.TrimSpace(in.Phone),
		ItemDescription:  strings.TrimSpace(in.ItemDescription),
		Quantity:         quantity,
		PriceCents:       priceCents,
		DiscountCents:    discountCents,
		NetAmountCents:   netCents,
		PaidCents:        paidCents,
		RemainingCents:   sale.Remaining(netCents, paidCents),
		WarrantyDuration: duration,
		WarrantyExpiry:   expiry,
		Notes:            strings.TrimSpace(in.Notes),
		SaleDate:         saleDate,
	})
	if err != nil {
		return nil, err
	}

	s.enqueueNotification(stored)

	return stored, nil
}

// ListSales возвращает все продажи, самые свежие первыми.
func (s *Service) ListSales(ctx context.Context) ([]model.Sale, error) {
	return s.repo.ListSales(ctx)
}

// GetSaleByID возвращает продажу по идентификатору.
func (s *Service) GetSaleByID(ctx context.Context, id int64) (*model.Sale, error) {
	return s.repo.GetSaleByID(ctx, id)
}

// GetStats возвращает показатели панели управления.
func (s *Service) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	return s.repo.GetStats(ctx)
}

func (s *Service) enqueueNotification(stored *model.Sale) {
	select {
	case s.notifyQueue <- stored:
	default:
		s.logger.Warn("notification queue full, dropping dispatch",
			zap.Int64("saleID", stored.ID))
	}
}

// StartNotificationWorker запускает фоновую доставку уведомлений о продажах.
// Ошибки доставки записываются в журнал и никогда не влияют на создание продажи.
func (s *Service) StartNotificationWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case stored := <-s.notifyQueue:
			s.dispatch(ctx, stored)
		}
	}
}

func (s *Service) dispatch(ctx context.Context, stored *model.Sale) {
	if s.messenger == nil || !s.messenger.Configured() {
		s.logger.Warn("whatsapp credentials not configured, skipping notification",
			zap.Int64("saleID", stored.ID))
		return
	}

	phone := validation.NormalizePhone(stored.Phone)
	body := s.buildMessage(stored)

	sendCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	if err := s.messenger.SendMessage(sendCtx, phone, body); err != nil {
		s.logger.Error("send whatsapp notification",
			zap.Int64("saleID", stored.ID),
			zap.String("phone", phone),
			zap.Error(err))
		return
	}

	s.logger.Info("whatsapp notification sent",
		zap.Int64("saleID", stored.ID),
		zap.String("phone", phone))
}

func (s *Service) buildMessage(stored *model.Sale) string {
	return fmt.Sprintf(`مرحباً بك في *BEAR PHONE* 🐻

تم إصدار فاتورتك بنجاح:
🧾 رقم الفاتورة: %d
💰 الصافي: %.2f ريال
📝 ملاحظات: %s

📍 رابط الفاتورة: %s/api/sales/%d/pdf`,
		stored.ID,
		float64(stored.NetAmountCents)/100,
		stored.NotesOrPlaceholder(),
		s.baseURL,
		stored.ID,
	)
}
