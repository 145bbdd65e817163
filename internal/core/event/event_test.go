package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpendBoundedBudget(t *testing.T) {
	d := &Delivery{Event: New("x", nil), Attempts: 3}

	assert.True(t, d.Spend())
	assert.True(t, d.Spend())
	assert.False(t, d.Spend(), "third attempt exhausts a budget of 3")
}

func TestSpendOneShot(t *testing.T) {
	d := &Delivery{Event: New("x", nil), Attempts: OneShot}
	assert.False(t, d.Spend())
}

func TestSpendUnlimitedNeverExpires(t *testing.T) {
	d := &Delivery{Event: New("x", nil), Attempts: Unlimited}
	for i := 0; i < 1000; i++ {
		assert.True(t, d.Spend())
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New("x", nil)
	b := New("x", nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
