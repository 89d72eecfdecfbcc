package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almacen-api/internal/domain"
)

func TestErrorDeValidacion(t *testing.T) {
	ve := &domain.ValidationError{}
	assert.NoError(t, ve.OrNil())

	ve.Add("quantity", "debe ser mayor que cero")
	ve.Add("quantity", "otro mensaje")
	ve.Add("name", "requerido")

	err := ve.OrNil()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "debe ser mayor que cero", ve.Fields["quantity"], "el primer mensaje gana")
	assert.Contains(t, err.Error(), "name: requerido; quantity:")
}

func TestErroresPorCampo(t *testing.T) {
	assert.Nil(t, domain.FieldErrors(nil))
	assert.Equal(t, map[string]string{"a": "b"}, domain.FieldErrors(fmt.Errorf("envuelto: %w", domain.NewValidationError("a", "b"))))
	assert.Contains(t, domain.FieldErrors(fmt.Errorf("línea 2: %w", domain.ErrInsufficientStock)), "quantity")
	assert.Contains(t, domain.FieldErrors(domain.ErrNotFound), "ingredient_id")
	assert.Contains(t, domain.FieldErrors(errors.New("boom")), "non_field_errors")
}
