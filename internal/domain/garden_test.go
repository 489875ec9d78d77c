package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlotState_SamePlanting(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	empty := PlotState{PlotID: 1, Unlocked: true}
	carrot := empty.Planted("carrot", t0, 30)

	assert.True(t, empty.SamePlanting(empty))
	assert.True(t, carrot.SamePlanting(empty.Planted("carrot", t0, 30)))
	assert.False(t, carrot.SamePlanting(empty))
	assert.False(t, empty.SamePlanting(carrot))
	assert.False(t, carrot.SamePlanting(empty.Planted("carrot", t0.Add(time.Second), 30)))
	assert.False(t, carrot.SamePlanting(empty.Planted("tomato", t0, 30)))
}
