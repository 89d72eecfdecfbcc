package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StatusPolicy parámetros de la derivación de estado (servicio de dominio).
type StatusPolicy struct {
	LowStockThreshold decimal.Decimal // umbral global; Ingredient.MinStock lo reemplaza
	CheckStaleDays    int             // días sin revisión antes de pending_check
}

// DefaultStatusPolicy umbral 5 y revisión semanal.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{LowStockThreshold: decimal.NewFromInt(5), CheckStaleDays: 7}
}

// ThresholdFor devuelve el umbral de stock bajo efectivo para el insumo.
func (p StatusPolicy) ThresholdFor(ing *entity.Ingredient) decimal.Decimal {
	if ing.MinStock != nil {
		return *ing.MinStock
	}
	return p.LowStockThreshold
}

// DeriveStatus calcula el estado del insumo en el instante now.
// Precedencia: expired > low > pending_check > normal.
// Las fechas se comparan como días calendario en la zona de now.
func DeriveStatus(ing *entity.Ingredient, p StatusPolicy, now time.Time) string {
	today := StartOfDay(now)
	if ing.ExpiryDate != nil && CalendarDate(*ing.ExpiryDate, now.Location()).Before(today) {
		return entity.IngredientStatusExpired
	}
	if ing.Quantity.LessThan(p.ThresholdFor(ing)) {
		return entity.IngredientStatusLow
	}
	if ing.LastCheckDate != nil {
		if DaysBetween(*ing.LastCheckDate, now) > p.CheckStaleDays {
			return entity.IngredientStatusPendingCheck
		}
	}
	return entity.IngredientStatusNormal
}

// StartOfDay trunca t a la medianoche de su zona horaria.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDate reinterpreta el día calendario de d (año, mes, día) como medianoche en loc.
func CalendarDate(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// DaysBetween días calendario de from a to (negativo si to es anterior).
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
