// Package signal builds the public-signal vector a group membership proof is
// verified against: the message digest followed by every member key, in a
// canonical order.
package signal

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"sort"

	"group-mail/internal/app/keys"
	"group-mail/internal/app/limbs"
	"group-mail/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	LimbWidth       = 120
	HashLimbCount   = 5
	KeyLimbCount    = 35
	DefaultCapacity = 300
)

var (
	ErrGroupTooLarge = errors.New("group exceeds circuit capacity")
	ErrEmptyGroup    = errors.New("group has no rsa keys")
)

// KeySource resolves one member id to its RSA keys.
type KeySource interface {
	FetchKeys(ctx context.Context, user string) ([]keys.RSAPublicKey, error)
}

// PublicSignals is the structured form of the vector; Keys always holds exactly capacity groups.
type PublicSignals struct {
	MessageHash limbs.Vector
	Keys        []limbs.Vector
}

// Flatten renders the vector in circuit order: hash limbs, then every key's limbs.
func (ps *PublicSignals) Flatten() []string {
	out := make([]string, 0, len(ps.MessageHash)+len(ps.Keys)*KeyLimbCount)
	out = append(out, ps.MessageHash.Strings()...)
	for _, key := range ps.Keys {
		out = append(out, key.Strings()...)
	}
	return out
}

// VectorLength is the flattened length for a circuit of the given capacity.
func VectorLength(capacity int) int {
	return HashLimbCount + capacity*KeyLimbCount
}

type Builder struct {
	source           KeySource
	capacity         int
	fetchConcurrency int
	logger           *logger.Logger
}

type BuilderOption func(*Builder)

func WithCapacity(capacity int) BuilderOption {
	return func(b *Builder) {
		if capacity > 0 {
			b.capacity = capacity
		}
	}
}

// WithFetchConcurrency bounds the number of members fetched at once.
func WithFetchConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.fetchConcurrency = n
		}
	}
}

func NewBuilder(source KeySource, l *logger.Logger, options ...BuilderOption) *Builder {
	b := &Builder{
		source:           source,
		capacity:         DefaultCapacity,
		fetchConcurrency: 8,
		logger:           l,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *Builder) Capacity() int {
	return b.capacity
}

// BuildVector is Build followed by Flatten.
func (b *Builder) BuildVector(ctx context.Context, usernames []string, message string) ([]string, error) {
	signals, err := b.Build(ctx, usernames, message)
	if err != nil {
		return nil, err
	}
	return signals.Flatten(), nil
}

// Build produces the signals for message signed on behalf of usernames. The
// result does not depend on the order of usernames. Any failure aborts the
// whole build.
func (b *Builder) Build(ctx context.Context, usernames []string, message string) (*PublicSignals, error) {
	digest := sha512.Sum512([]byte(message))
	hashLimbs, err := limbs.Encode(digest[:], LimbWidth, HashLimbCount)
	if err != nil {
		return nil, fmt.Errorf("message digest: %w", err)
	}

	if len(usernames) == 0 {
		return nil, fmt.Errorf("%w: no members", ErrEmptyGroup)
	}
	// every member needs at least one slot
	if len(usernames) > b.capacity {
		return nil, fmt.Errorf("%w: %d members, capacity %d", ErrGroupTooLarge, len(usernames), b.capacity)
	}

	sorted := append([]string(nil), usernames...)
	sort.Strings(sorted)

	memberKeys, err := b.fetchAll(ctx, sorted)
	if err != nil {
		return nil, err
	}

	var encoded []limbs.Vector
	for i, member := range memberKeys {
		for j, key := range member {
			v, err := limbs.Encode(key.Modulus, LimbWidth, KeyLimbCount)
			if err != nil {
				return nil, fmt.Errorf("key %d of %s: %w", j, sorted[i], err)
			}
			encoded = append(encoded, v)
		}
	}

	if len(encoded) > b.capacity {
		return nil, fmt.Errorf("%w: %d keys, capacity %d", ErrGroupTooLarge, len(encoded), b.capacity)
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("%w: %d members published no rsa key", ErrEmptyGroup, len(sorted))
	}

	// unused slots repeat the first key
	padded := make([]limbs.Vector, b.capacity)
	copy(padded, encoded)
	for i := len(encoded); i < b.capacity; i++ {
		padded[i] = encoded[0]
	}

	b.logger.WithContext(ctx).Debugf("Built signals for %d members, %d keys, capacity %d", len(sorted), len(encoded), b.capacity)

	return &PublicSignals{
		MessageHash: hashLimbs,
		Keys:        padded,
	}, nil
}

// fetchAll fetches members concurrently and returns their keys indexed like members.
func (b *Builder) fetchAll(ctx context.Context, members []string) ([][]keys.RSAPublicKey, error) {
	results := make([][]keys.RSAPublicKey, len(members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fetchConcurrency)
	for i, member := range members {
		g.Go(func() error {
			memberKeys, err := b.source.FetchKeys(gctx, member)
			if err != nil {
				return fmt.Errorf("member %s: %w", member, err)
			}
			results[i] = memberKeys
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
