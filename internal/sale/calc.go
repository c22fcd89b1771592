// Package sale содержит чистые функции расчёта сумм и гарантии по продаже.
package sale

import (
	"time"

	"github.com/mmeshcher/bearphone-pos/internal/model"
)

// NetAmount возвращает сумму к оплате в халалах: количество * цена - скидка.
func NetAmount(quantity int, priceCents, discountCents int64) int64 {
	return int64(quantity)*priceCents - discountCents
}

// Remaining возвращает остаток долга клиента в халалах. Значение может быть
// отрицательным, если оплачено больше суммы к оплате; округление до нуля
// выполняется только при отображении.
func Remaining(netCents, paidCents int64) int64 {
	return netCents - paidCents
}

// WarrantyExpiry возвращает дату окончания гарантии для указанных даты продажи
// и срока гарантии. Для срока без гарантии возвращается nil. Смещение
// прибавляется календарными днями, поэтому переход на летнее время не влияет
// на число дней.
func WarrantyExpiry(saleDate time.Time, d model.WarrantyDuration) (*time.Time, error) {
	days, err := model.WarrantyOffsetDays(d)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		return nil, nil
	}
	expiry := saleDate.AddDate(0, 0, days)
	return &expiry, nil
}
