package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volve-research/forecast-cli/internal/dca"
	"github.com/volve-research/forecast-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// declineWell samples an exponential decline daily with full uptime.
func declineWell(qi, di float64, days int) []model.FlowingSample {
	origin := time.Date(2013, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.FlowingSample, days)
	for i := 0; i < days; i++ {
		rate := qi * math.Exp(-di*float64(i))
		out[i] = model.FlowingSample{
			Well:          "BT-1",
			Date:          origin.AddDate(0, 0, i),
			OnStreamHours: 24,
			OilVolume:     rate,
			EffectiveRate: rate,
		}
	}
	return out
}

func TestRun_SplitIsChronological(t *testing.T) {
	samples := declineWell(1000, 0.001, 300)
	res, err := Run(samples, "BT-1", Options{Holdout: 90})
	require.NoError(t, err)

	assert.Equal(t, 210, res.TrainN)
	assert.Equal(t, 90, res.TestN)
	// max(train times) < min(test times)
	assert.True(t, res.TrainEnd.Before(samples[res.TrainN].Date))
	assert.Equal(t, samples[len(samples)-1].Date, res.TestEnd)
}

func TestRun_NoiselessSeriesForecastsExactly(t *testing.T) {
	samples := declineWell(1000, 0.001, 1000)
	res, err := Run(samples, "BT-1", Options{Holdout: 90})
	require.NoError(t, err)

	// Noiseless exponential history: holdout error must be tiny.
	assert.Less(t, res.RMSE, 1.0)
	assert.Less(t, res.MAE, 1.0)
	assert.Equal(t, dca.Exponential, res.Fit.Model.Kind)
}

func TestRun_BeatsNaiveOnDecliningSeries(t *testing.T) {
	samples := declineWell(1000, 0.003, 600)
	res, err := Run(samples, "BT-1", Options{Holdout: 90})
	require.NoError(t, err)

	// A flat last-value baseline cannot track a 0.3%/day decline.
	assert.Less(t, res.RMSE, res.NaiveRMSE)
	assert.Positive(t, res.MAEImprovement)
}

func TestRun_InsufficientTrainingHistory(t *testing.T) {
	samples := declineWell(1000, 0.001, 95)
	_, err := Run(samples, "BT-1", Options{Holdout: 90})
	require.Error(t, err)
	assert.ErrorIs(t, err, dca.ErrInsufficientHistory)
	assert.Contains(t, err.Error(), "BT-1")
}

func TestRun_HoldoutLargerThanSeries(t *testing.T) {
	samples := declineWell(1000, 0.001, 50)
	_, err := Run(samples, "BT-1", Options{Holdout: 90})
	require.Error(t, err)
	assert.ErrorIs(t, err, dca.ErrInsufficientHistory)
}

func TestRun_DefaultHoldout(t *testing.T) {
	samples := declineWell(1000, 0.001, 200)
	res, err := Run(samples, "BT-1", Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultHoldout, res.TestN)
}

func TestMetrics(t *testing.T) {
	y := []float64{10, 20, 30}
	yhat := []float64{12, 18, 33}

	assert.InDelta(t, 2.333333, mae(y, yhat), 1e-6)
	assert.InDelta(t, 2.3804761, rmse(y, yhat), 1e-6)
	assert.InDelta(t, 7.0/60.0, wape(y, yhat), 1e-6)
}

func TestMASE_ScalesByTrainDifferences(t *testing.T) {
	yTrain := []float64{100, 90, 80, 70} // one-step naive error = 10
	y := []float64{60, 50}
	yhat := []float64{55, 45} // MAE 5
	assert.InDelta(t, 0.5, mase(y, yhat, yTrain), 1e-9)
}
