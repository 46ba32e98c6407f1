package dca

import (
	"errors"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// aicTieTolerance treats AIC scores within this distance as a tie, which
// resolves toward the exponential model (fewer parameters).
const aicTieTolerance = 1e-9

// SelectBest fits both decline variants against the training samples and
// returns the one with the lower AIC. If exactly one variant fails to fit,
// the survivor is selected; if both fail, the failure propagates — the
// engine never returns a model it does not trust.
func SelectBest(t, q []float64, well string, opts FitOptions) (*FitResult, error) {
	expFit, expErr := Fit(Exponential, t, q, well, opts)
	hypFit, hypErr := Fit(Hyperbolic, t, q, well, opts)

	switch {
	case expErr == nil && hypErr == nil:
		best := pickBest(expFit, hypFit)
		zap.L().Debug("model selection",
			zap.String("well", well),
			zap.Float64("exp_aic", expFit.AIC),
			zap.Float64("hyp_aic", hypFit.AIC),
			zap.String("selected", string(best.Model.Kind)),
		)
		return best, nil
	case expErr == nil:
		zap.L().Warn("hyperbolic fit failed, selecting exponential",
			zap.String("well", well), zap.Error(hypErr))
		return expFit, nil
	case hypErr == nil:
		zap.L().Warn("exponential fit failed, selecting hyperbolic",
			zap.String("well", well), zap.Error(expErr))
		return hypFit, nil
	}

	// Both failed. Insufficient history is reported as such rather than as a
	// fit failure, since no optimization was attempted.
	if errors.Is(expErr, ErrInsufficientHistory) && errors.Is(hypErr, ErrInsufficientHistory) {
		return nil, expErr
	}
	return nil, eris.Wrapf(ErrFitFailure, "dca: well %s: both variants failed: exponential: %v; hyperbolic: %v", well, expErr, hypErr)
}

// pickBest applies the AIC criterion with the deterministic tie-break:
// equal scores within tolerance prefer the model with fewer parameters.
func pickBest(exp, hyp *FitResult) *FitResult {
	if math.Abs(exp.AIC-hyp.AIC) <= aicTieTolerance {
		return exp
	}
	if hyp.AIC < exp.AIC {
		return hyp
	}
	return exp
}
