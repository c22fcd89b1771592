// Package model содержит доменные сущности POS-системы Bear Phone.
package model

import (
	"errors"
	"time"
)

// ErrInvalidWarranty возвращается при неизвестном значении срока гарантии.
var ErrInvalidWarranty = errors.New("invalid warranty duration")

// NotesPlaceholder — текст, подставляемый вместо пустых примечаний
// в счёте и в уведомлении.
const NotesPlaceholder = "لا يوجد"

// WarrantyDuration описывает срок гарантии на проданный товар.
// Значения совпадают с арабскими подписями, отображаемыми в счёте.
type WarrantyDuration string

const (
	WarrantyNone        WarrantyDuration = "بدون ضمان"
	WarrantyOneWeek     WarrantyDuration = "أسبوع واحد"
	WarrantyOneMonth    WarrantyDuration = "شهر واحد"
	WarrantyThreeMonths WarrantyDuration = "3 أشهر"
	WarrantySixMonths   WarrantyDuration = "6 أشهر"
	WarrantyOneYear     WarrantyDuration = "سنة واحدة"
	WarrantyTwoYears    WarrantyDuration = "سنتين"
)

var warrantyDays = map[WarrantyDuration]int{
	WarrantyNone:        0,
	WarrantyOneWeek:     7,
	WarrantyOneMonth:    30,
	WarrantyThreeMonths: 90,
	WarrantySixMonths:   180,
	WarrantyOneYear:     365,
	WarrantyTwoYears:    730,
}

// WarrantyOffsetDays возвращает число календарных дней гарантии для указанного
// срока. Неизвестное значение не подменяется значением по умолчанию.
func WarrantyOffsetDays(d WarrantyDuration) (int, error) {
	days, ok := warrantyDays[d]
	if !ok {
		return 0, ErrInvalidWarranty
	}
	return days, nil
}

// Sale описывает одну продажу. Денежные поля хранятся в халалах
// (сотых долях риала) и конвертируются в риалы на границе API.
type Sale struct {
	ID               int64
	CustomerName     string
	Phone            string
	ItemDescription  string
	Quantity         int
	PriceCents       int64
	DiscountCents    int64
	NetAmountCents   int64
	PaidCents        int64
	RemainingCents   int64
	WarrantyDuration WarrantyDuration
	WarrantyExpiry   *time.Time
	Notes            string
	SaleDate         time.Time
	CreatedAt        time.Time
}

// NotesOrPlaceholder возвращает примечания продажи либо фиксированную
// заглушку, если примечания пусты или состоят из пробелов.
func (s *Sale) NotesOrPlaceholder() string {
	if isBlank(s.Notes) {
		return NotesPlaceholder
	}
	return s.Notes
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// DashboardStats содержит агрегированные показатели для панели управления.
type DashboardStats struct {
	TotalSales       int64   `json:"totalSales"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ActiveWarranties int64   `json:"activeWarranties"`
	TodaySales       int64   `json:"todaySales"`
}
