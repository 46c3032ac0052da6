package drain

// Pipeline step names.
const (
	StepDerive      = "derive"
	StepBalances    = "balances"
	StepRescue      = "rescue"
	StepTokenSweep  = "token_sweep"
	StepNativeSweep = "native_sweep"
)

// Step outcomes.
const (
	OutcomeDone    = "done"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Observer is notified of every step outcome.
type Observer interface {
	Step(step string, outcome string)
}

type nopObserver struct{}

func (nopObserver) Step(string, string) {}
