// Package backtest validates fitted decline models with a strict
// time-ordered holdout: train on early history, score forecast error on the
// most recent flowing samples. The split is never randomized — a random
// split would leak future information into model selection and invalidate
// the backtest.
package backtest

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/volve-research/forecast-cli/internal/dca"
	"github.com/volve-research/forecast-cli/internal/model"
)

// DefaultHoldout is the number of trailing flowing samples held out for
// scoring.
const DefaultHoldout = 90

// Options configures the split and the underlying fits.
type Options struct {
	Holdout int // trailing flowing samples held out (default 90)
	Fit     dca.FitOptions
}

// Result holds the canonical model fitted on the train window and its
// forecast error over the holdout, in the same rate units as the input.
type Result struct {
	Fit *dca.FitResult `json:"fit"`

	TrainN     int       `json:"train_n"`
	TestN      int       `json:"test_n"`
	TrainStart time.Time `json:"train_start"`
	TrainEnd   time.Time `json:"train_end"`
	TestEnd    time.Time `json:"test_end"`

	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`

	// Scale-free diagnostics and the naive last-value baseline.
	SMAPE          float64 `json:"smape"`
	WAPE           float64 `json:"wape"`
	MASE           float64 `json:"mase"`
	NaiveRMSE      float64 `json:"naive_rmse"`
	NaiveMAE       float64 `json:"naive_mae"`
	MAEImprovement float64 `json:"mae_improvement"` // vs naive; positive = model beats baseline
}

// Run splits the chronological flowing-sample sequence into train (all but
// the last Holdout samples) and test (the trailing Holdout), fits both
// decline variants on train, selects by AIC, and scores the selection on
// test. Time offsets for both fitting and prediction are measured from the
// train window's first sample.
func Run(samples []model.FlowingSample, well string, opts Options) (*Result, error) {
	holdout := opts.Holdout
	if holdout <= 0 {
		holdout = DefaultHoldout
	}
	minSamples := opts.Fit.MinSamples
	if minSamples <= 0 {
		minSamples = dca.DefaultMinSamples
	}

	trainN := len(samples) - holdout
	if trainN < minSamples {
		return nil, eris.Wrapf(dca.ErrInsufficientHistory,
			"backtest: well %s: %d flowing samples leave %d for training after %d-sample holdout, need %d",
			well, len(samples), trainN, holdout, minSamples)
	}

	origin := samples[0].Date
	t := make([]float64, len(samples))
	q := make([]float64, len(samples))
	for i, s := range samples {
		t[i] = s.TimeOffset(origin)
		q[i] = s.EffectiveRate
	}

	fit, err := dca.SelectBest(t[:trainN], q[:trainN], well, opts.Fit)
	if err != nil {
		return nil, err
	}

	tTest, qTest := t[trainN:], q[trainN:]
	pred := make([]float64, len(tTest))
	for i, ti := range tTest {
		pred[i] = fit.Model.Rate(ti)
	}

	naive := make([]float64, len(qTest))
	last := q[trainN-1]
	for i := range naive {
		naive[i] = last
	}

	res := &Result{
		Fit:        fit,
		TrainN:     trainN,
		TestN:      len(qTest),
		TrainStart: origin,
		TrainEnd:   samples[trainN-1].Date,
		TestEnd:    samples[len(samples)-1].Date,
		RMSE:       rmse(qTest, pred),
		MAE:        mae(qTest, pred),
		SMAPE:      smape(qTest, pred),
		WAPE:       wape(qTest, pred),
		MASE:       mase(qTest, pred, q[:trainN]),
		NaiveRMSE:  rmse(qTest, naive),
		NaiveMAE:   mae(qTest, naive),
	}
	res.MAEImprovement = 1.0 - res.MAE/(res.NaiveMAE+1e-9)
	return res, nil
}

func rmse(y, yhat []float64) float64 {
	var ss float64
	for i := range y {
		d := y[i] - yhat[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(y)))
}

func mae(y, yhat []float64) float64 {
	var sum float64
	for i := range y {
		sum += math.Abs(y[i] - yhat[i])
	}
	return sum / float64(len(y))
}

func smape(y, yhat []float64) float64 {
	var sum float64
	for i := range y {
		sum += 2 * math.Abs(y[i]-yhat[i]) / (math.Abs(y[i]) + math.Abs(yhat[i]) + 1e-9)
	}
	return sum / float64(len(y))
}

func wape(y, yhat []float64) float64 {
	var num, den float64
	for i := range y {
		num += math.Abs(y[i] - yhat[i])
		den += math.Abs(y[i])
	}
	return num / (den + 1e-9)
}

// mase scales holdout MAE by the mean absolute one-step naive error on the
// training series (non-seasonal scaling).
func mase(y, yhat, yTrain []float64) float64 {
	var scale float64
	for i := 1; i < len(yTrain); i++ {
		scale += math.Abs(yTrain[i] - yTrain[i-1])
	}
	scale = math.Max(scale/float64(len(yTrain)-1), 1e-9)
	return mae(y, yhat) / scale
}
