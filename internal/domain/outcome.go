package domain

// EvalOutcome is a tagged evaluation result: either the model's own verdict
// or the fixed fallback substituted after a failure. The fallback is a
// first-class Evaluation, not a structurally-similar stand-in, so downstream
// code handles both arms identically and inspects the tag only when it cares.
type EvalOutcome struct {
	eval     Evaluation
	degraded bool
	cause    error
}

// OkEvaluation wraps a successful evaluation.
func OkEvaluation(e Evaluation) EvalOutcome {
	return EvalOutcome{eval: e}
}

// DegradedEvaluation wraps the fixed fallback together with the error that
// forced it.
func DegradedEvaluation(cause error) EvalOutcome {
	return EvalOutcome{eval: FallbackEvaluation(), degraded: true, cause: cause}
}

// Evaluation returns the carried value; valid for both arms.
func (o EvalOutcome) Evaluation() Evaluation { return o.eval }

// Degraded reports whether the value is the fallback.
func (o EvalOutcome) Degraded() bool { return o.degraded }

// Cause returns the error behind a degraded outcome, nil otherwise.
func (o EvalOutcome) Cause() error { return o.cause }
