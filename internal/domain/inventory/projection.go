package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Balance resultado del fold sobre los asientos de un insumo.
type Balance struct {
	In      decimal.Decimal
	Out     decimal.Decimal
	Entries int
}

// Quantity cantidad proyectada: entradas - salidas.
func (b Balance) Quantity() decimal.Decimal { return b.In.Sub(b.Out) }

// Project recorre los asientos y acumula entradas y salidas.
// Los asientos de otros insumos no deben venir en ops.
func Project(ops []*entity.InventoryOperation) Balance {
	b := Balance{In: decimal.Zero, Out: decimal.Zero}
	for _, op := range ops {
		switch op.OperationType {
		case entity.OperationTypeIN:
			b.In = b.In.Add(op.Quantity)
		case entity.OperationTypeOUT:
			b.Out = b.Out.Add(op.Quantity)
		default:
			continue
		}
		b.Entries++
	}
	return b
}

// CanWithdraw indica si una salida de qty deja el saldo en cero o más.
func (b Balance) CanWithdraw(qty decimal.Decimal) bool {
	return !b.Quantity().Sub(qty).IsNegative()
}
