package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"costume-rental-backend/internal/config"
	"costume-rental-backend/internal/metrics"
	"costume-rental-backend/internal/repository"
	"costume-rental-backend/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) GetDecimal(ctx context.Context, name string) (decimal.Decimal, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockSettingsRepo) SetDecimal(ctx context.Context, name string, value decimal.Decimal) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

var jobNow = time.Date(2024, 3, 7, 2, 0, 0, 0, time.UTC)

func newTestRunner(sweeper service.OverdueSweeper, penalty *service.PenaltyConfig) (*JobRunner, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, reg)
	jr := NewJobRunner(&Services{Sweeper: sweeper, Penalty: penalty}, &config.Config{}, m)
	jr.now = func() time.Time { return jobNow }
	return jr, m
}

func TestJobRunner_MarkOverdueRentals(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		sweeper := new(MockSweeper)
		sweeper.On("SweepOverdue", mock.Anything, jobNow).Return(3, nil)
		jr, m := newTestRunner(sweeper, nil)

		err := jr.RunMarkOverdueRentals(ctx)
		assert.NoError(t, err)
		assert.Equal(t, float64(3), testutil.ToFloat64(m.RentalsMarkedOverdue))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.JobRuns.WithLabelValues(JobMarkOverdueRentals, "success")))
		sweeper.AssertExpectations(t)
	})

	t.Run("Sweep failure", func(t *testing.T) {
		sweeper := new(MockSweeper)
		sweeper.On("SweepOverdue", mock.Anything, jobNow).Return(0, errors.New("connection refused"))
		jr, m := newTestRunner(sweeper, nil)

		err := jr.RunMarkOverdueRentals(ctx)
		assert.Error(t, err)
		assert.Equal(t, float64(0), testutil.ToFloat64(m.RentalsMarkedOverdue))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.JobRuns.WithLabelValues(JobMarkOverdueRentals, "failed")))
	})

	t.Run("Panic is recovered", func(t *testing.T) {
		sweeper := new(MockSweeper)
		sweeper.On("SweepOverdue", mock.Anything, jobNow).Run(func(args mock.Arguments) {
			panic("boom")
		}).Return(0, nil)
		jr, m := newTestRunner(sweeper, nil)

		assert.NotPanics(t, jr.MarkOverdueRentals)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.JobRuns.WithLabelValues(JobMarkOverdueRentals, "panic")))
	})
}

func TestJobRunner_RefreshPenaltyRate(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads stored rate", func(t *testing.T) {
		settings := new(MockSettingsRepo)
		settings.On("GetDecimal", mock.Anything, service.PenaltyPerDaySetting).Return(decimal.RequireFromString("70"), nil)
		penalty := service.NewPenaltyConfig(settings, decimal.RequireFromString("50"))
		jr, m := newTestRunner(new(MockSweeper), penalty)

		require.NoError(t, jr.RunRefreshPenaltyRate(ctx))
		assert.True(t, decimal.RequireFromString("70").Equal(penalty.PerDay()))
		assert.Equal(t, float64(70), testutil.ToFloat64(m.PenaltyRate))
	})

	t.Run("Missing row keeps current rate", func(t *testing.T) {
		settings := new(MockSettingsRepo)
		settings.On("GetDecimal", mock.Anything, service.PenaltyPerDaySetting).Return(decimal.Zero, repository.ErrNotFound)
		penalty := service.NewPenaltyConfig(settings, decimal.RequireFromString("50"))
		jr, _ := newTestRunner(new(MockSweeper), penalty)

		require.NoError(t, jr.RunRefreshPenaltyRate(ctx))
		assert.True(t, decimal.RequireFromString("50").Equal(penalty.PerDay()))
	})
}

func TestJobRunner_RunJob(t *testing.T) {
	ctx := context.Background()
	sweeper := new(MockSweeper)
	sweeper.On("SweepOverdue", mock.Anything, jobNow).Return(0, nil)
	jr, _ := newTestRunner(sweeper, nil)

	assert.NoError(t, jr.RunJob(ctx, JobMarkOverdueRentals))
	assert.NoError(t, jr.RunJob(ctx, JobRefreshPenaltyRate))
	assert.Error(t, jr.RunJob(ctx, "send-invoices"))
	assert.NoError(t, jr.RunAllNightlyJobs(ctx))
	sweeper.AssertNumberOfCalls(t, "SweepOverdue", 2)
}

func TestJobRunner_Enabled(t *testing.T) {
	penalty := service.NewPenaltyConfig(new(MockSettingsRepo), decimal.RequireFromString("50"))

	server, _ := newTestRunner(nil, penalty)
	assert.False(t, server.Enabled(JobMarkOverdueRentals))
	assert.True(t, server.Enabled(JobRefreshPenaltyRate))

	cronRunner, _ := newTestRunner(new(MockSweeper), nil)
	assert.True(t, cronRunner.Enabled(JobMarkOverdueRentals))
	assert.False(t, cronRunner.Enabled(JobRefreshPenaltyRate))

	assert.False(t, cronRunner.Enabled("send-invoices"))
}
