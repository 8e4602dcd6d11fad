package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/lock"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCenters() (*usecase.WorkCenterUseCase, repository.Repositories) {
	store := memory.NewStore()
	repos := store.Repositories()
	uc := usecase.NewWorkCenterUseCase(repos, memory.NewTxRunner(store), lock.NewKeyedMutex(time.Second), auth.AllowAll{})
	return uc, repos
}

func pendingWO(t *testing.T, repos repository.Repositories, id, centerID string) *entity.WorkOrder {
	t.Helper()
	wo := &entity.WorkOrder{
		ID:                   id,
		ManufacturingOrderID: "mo-1",
		Sequence:             1,
		Name:                 "Ensamble",
		WorkCenterID:         centerID,
		Status:               entity.WOStatusPending,
	}
	require.NoError(t, repos.WorkOrders.Create(context.Background(), wo))
	return wo
}

func TestWorkCenterCreate(t *testing.T) {
	ctx := context.Background()
	uc, _ := newCenters()

	wc, err := uc.Create(ctx, admin, dto.CreateWorkCenterRequest{Name: "Assembly", Capacity: 2, CostPerHour: decimal.NewFromInt(60)})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkCenterActive, wc.Status)

	_, err = uc.Create(ctx, admin, dto.CreateWorkCenterRequest{Name: "assembly", Capacity: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = uc.Create(ctx, admin, dto.CreateWorkCenterRequest{Name: "Paint", Capacity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWorkCenterAssign_Capacidad(t *testing.T) {
	ctx := context.Background()
	uc, repos := newCenters()
	wc, err := uc.Create(ctx, admin, dto.CreateWorkCenterRequest{Name: "Assembly", Capacity: 1})
	require.NoError(t, err)

	first := pendingWO(t, repos, "wo-1", wc.ID)
	second := pendingWO(t, repos, "wo-2", wc.ID)

	require.NoError(t, uc.Assign(ctx, wc.ID, first))
	assert.Equal(t, entity.WOStatusRunning, first.Status)

	err = uc.Assign(ctx, wc.ID, second)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, entity.WOStatusPending, second.Status)

	util, err := uc.Utilization(ctx, wc.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.WorkCenterUtilization{WorkCenterID: wc.ID, Running: 1, Capacity: 1, Available: 0}, *util)

	// liberar exige que la WO ya no esté en RUNNING
	assert.ErrorIs(t, uc.Release(ctx, first), domain.ErrInvalidInput)
	first.Status = entity.WOStatusCompleted
	require.NoError(t, uc.Release(ctx, first))

	require.NoError(t, uc.Assign(ctx, wc.ID, second))
}

func TestWorkCenterAssign_Inactivo(t *testing.T) {
	ctx := context.Background()
	uc, repos := newCenters()
	wc, err := uc.Create(ctx, admin, dto.CreateWorkCenterRequest{Name: "Assembly", Capacity: 3})
	require.NoError(t, err)

	_, err = uc.SetStatus(ctx, admin, wc.ID, entity.WorkCenterInactive)
	require.NoError(t, err)

	wo := pendingWO(t, repos, "wo-1", wc.ID)
	assert.ErrorIs(t, uc.Assign(ctx, wc.ID, wo), domain.ErrInvalidInput)

	_, err = uc.SetStatus(ctx, admin, wc.ID, "BROKEN")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.Assign(ctx, "nope", wo), domain.ErrNotFound)
}
