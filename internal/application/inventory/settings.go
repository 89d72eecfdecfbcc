package inventory

import (
	"time"

	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
)

// Settings parámetros del Stock Store y del Ledger (vienen de pkg/config).
type Settings struct {
	Policy           domaininv.StatusPolicy
	ExpiringSoonDays int
	// Now reloj inyectable; nil = time.Now.
	Now func() time.Time
}

// DefaultSettings umbral 5, revisión semanal, ventana de vencimiento de 7 días.
func DefaultSettings() Settings {
	return Settings{Policy: domaininv.DefaultStatusPolicy(), ExpiringSoonDays: 7}
}

func (s Settings) clock() func() time.Time {
	if s.Now != nil {
		return s.Now
	}
	return time.Now
}
