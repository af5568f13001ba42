package verifier

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many verifications run at once. Pairing checks are CPU
// bound, so the default is one per CPU.
type Pool struct {
	verifier Verifier
	slots    *semaphore.Weighted
}

func NewPool(v Verifier, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		verifier: v,
		slots:    semaphore.NewWeighted(int64(workers)),
	}
}

// Verify waits for a free slot or for ctx to end. It never retries.
func (p *Pool) Verify(ctx context.Context, proof []byte, publicInputs []string) (bool, error) {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.slots.Release(1)

	return p.verifier.Verify(ctx, proof, publicInputs)
}
