package drain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/ligun0805/bzz-drain/internal/chain"
)

// Job is one labelled account of a batch.
type Job struct {
	Label   string
	Request Request
}

// Outcome is the result of one job, at the same index as the job.
type Outcome struct {
	Label  string
	Report *Report
	Err    error
}

// Batch drains every job with at most concurrency pipelines in flight. A
// failing job does not stop the others; all failures are returned together.
func (o *Orchestrator) Batch(ctx context.Context, jobs []Job, concurrency int) ([]Outcome, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	// Accounts are independent but may share a rescue key, so sends are
	// serialized per signer.
	batch := *o
	batch.chain = &serialSends{Chain: o.chain, locks: make(map[common.Address]*sync.Mutex)}

	outcomes := make([]Outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			report, err := batch.Drain(ctx, job.Request)
			outcomes[i] = Outcome{Label: job.Label, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs *multierror.Error
	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", out.Label, out.Err))
		}
	}

	o.log.Info().
		Int("jobs", len(jobs)).
		Int("failed", failed).
		Msg("batch complete")

	return outcomes, errs.ErrorOrNil()
}

type serialSends struct {
	Chain
	mu    sync.Mutex
	locks map[common.Address]*sync.Mutex
}

func (s *serialSends) lock(key *ecdsa.PrivateKey) func() {
	if key == nil {
		return func() {}
	}
	from := gethcrypto.PubkeyToAddress(key.PublicKey)

	s.mu.Lock()
	l, ok := s.locks[from]
	if !ok {
		l = &sync.Mutex{}
		s.locks[from] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *serialSends) SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error) {
	defer s.lock(key)()
	return s.Chain.SendNative(ctx, key, to, amount)
}

func (s *serialSends) SendToken(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error) {
	defer s.lock(key)()
	return s.Chain.SendToken(ctx, key, to, amount)
}
