package production_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/production"
)

func TestNextMOStatus_CaminoFeliz(t *testing.T) {
	st := entity.MOStatusDraft
	for _, ev := range []production.MOEvent{production.MOEventConfirm, production.MOEventStart, production.MOEventComplete} {
		next, err := production.NextMOStatus(st, ev)
		require.NoError(t, err)
		st = next
	}
	assert.Equal(t, entity.MOStatusDone, st)
}

func TestNextMOStatus_Rechazos(t *testing.T) {
	cases := []struct {
		from entity.MOStatus
		ev   production.MOEvent
	}{
		{entity.MOStatusDraft, production.MOEventStart},
		{entity.MOStatusDraft, production.MOEventAbort},
		{entity.MOStatusConfirmed, production.MOEventConfirm},
		{entity.MOStatusConfirmed, production.MOEventComplete},
		{entity.MOStatusInProgress, production.MOEventCancel},
		{entity.MOStatusInProgress, production.MOEventStart},
		{entity.MOStatusDone, production.MOEventCancel},
		{entity.MOStatusCancelled, production.MOEventConfirm},
	}
	for _, tc := range cases {
		next, err := production.NextMOStatus(tc.from, tc.ev)
		require.Error(t, err, "%s + %s", tc.from, tc.ev)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, tc.from, next, "el estado no cambia ante una transición inválida")

		var te *domain.TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, string(tc.from), te.From)
	}
}

func TestNextMOStatus_AbortYCancel(t *testing.T) {
	next, err := production.NextMOStatus(entity.MOStatusInProgress, production.MOEventAbort)
	require.NoError(t, err)
	assert.Equal(t, entity.MOStatusCancelled, next)

	next, err = production.NextMOStatus(entity.MOStatusConfirmed, production.MOEventCancel)
	require.NoError(t, err)
	assert.Equal(t, entity.MOStatusCancelled, next)
}

func TestMOStatus_TerminalesNoTienenSalida(t *testing.T) {
	all := []production.MOEvent{
		production.MOEventConfirm, production.MOEventStart, production.MOEventComplete,
		production.MOEventCancel, production.MOEventAbort,
	}
	for _, st := range []entity.MOStatus{entity.MOStatusDone, entity.MOStatusCancelled} {
		assert.True(t, st.Terminal())
		for _, ev := range all {
			_, err := production.NextMOStatus(st, ev)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
}

func TestNextWOStatus(t *testing.T) {
	next, err := production.NextWOStatus(entity.WOStatusPending, production.WOEventStart)
	require.NoError(t, err)
	assert.Equal(t, entity.WOStatusRunning, next)

	next, err = production.NextWOStatus(next, production.WOEventComplete)
	require.NoError(t, err)
	assert.Equal(t, entity.WOStatusCompleted, next)

	_, err = production.NextWOStatus(entity.WOStatusRunning, production.WOEventCancel)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una WO en ejecución no se cancela")

	_, err = production.NextWOStatus(entity.WOStatusPending, production.WOEventComplete)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	next, err = production.NextWOStatus(entity.WOStatusPending, production.WOEventCancel)
	require.NoError(t, err)
	assert.Equal(t, entity.WOStatusCancelled, next)
}
