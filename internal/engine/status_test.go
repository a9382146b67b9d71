package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gowes/bike-rental-api/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.TxOngoing, model.TxCompleted, true},
		{model.TxOngoing, model.TxCancelled, true},
		{model.TxCompleted, model.TxOngoing, false},
		{model.TxCompleted, model.TxCancelled, false},
		{model.TxCancelled, model.TxCompleted, false},
		{model.TxCancelled, model.TxOngoing, false},
		{"UNKNOWN", model.TxCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionAllowsSelf(t *testing.T) {
	for _, s := range []string{model.TxOngoing, model.TxCompleted, model.TxCancelled} {
		assert.True(t, CanTransition(s, s), "%s -> %s", s, s)
	}
}
