package event

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/garyjia/billed/internal/domain/entity"
)

func TestBillCreated(t *testing.T) {
	bill := &entity.Bill{ID: "b1", Email: "a@a", Type: "Hôtel et logement", Amount: decimal.NewFromInt(400)}

	e := BillCreated(bill)

	assert.Equal(t, TypeBillCreated, e.Type)
	assert.Equal(t, "b1", e.BillID)
	assert.Equal(t, "a@a", e.Email)
	assert.Equal(t, "400", e.GetPayloadString("amount"))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestBillReviewed(t *testing.T) {
	bill := &entity.Bill{ID: "b2", Status: entity.BillStatusRefused, CommentAdmin: "no receipt"}

	e := BillReviewed(bill)

	assert.Equal(t, TypeBillReviewed, e.Type)
	assert.Equal(t, string(entity.BillStatusRefused), e.GetPayloadString("status"))
	assert.Equal(t, "no receipt", e.GetPayloadString("comment"))
}

func TestWithPayload_DoesNotMutate(t *testing.T) {
	e := NewEvent(TypeBillCreated, nil, map[string]interface{}{"a": "1"})

	e2 := e.WithPayload("b", "2")

	assert.Equal(t, "", e.GetPayloadString("b"))
	assert.Equal(t, "2", e2.GetPayloadString("b"))
	assert.Equal(t, "1", e2.GetPayloadString("a"))
	assert.Equal(t, e.ID, e2.ID)
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeBillCreated.IsValid())
	assert.True(t, TypeBillReviewed.IsValid())
	assert.False(t, Type("bill.deleted").IsValid())
}
