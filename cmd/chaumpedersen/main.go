// Command chaumpedersen runs Chaum-Pedersen proofs end to end over a freshly generated group.
//
// It is a demonstration and a smoke test, not a service: prover and verifier
// live in the same process and exchange values directly.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/rs/zerolog"
	"github.com/taurusgroup/chaum-pedersen/internal/group"
	"github.com/taurusgroup/chaum-pedersen/internal/params"
	"github.com/taurusgroup/chaum-pedersen/pkg/hash"
	"github.com/taurusgroup/chaum-pedersen/pkg/math/sample"
	"github.com/taurusgroup/chaum-pedersen/pkg/pool"
	zkdleq "github.com/taurusgroup/chaum-pedersen/pkg/zk/dleq"
	zkecdleq "github.com/taurusgroup/chaum-pedersen/pkg/zk/ecdleq"
	"golang.org/x/sync/errgroup"
)

type config struct {
	bits     int
	sessions int
	workers  int
	seed     string
	verbose  bool
}

func parseConfig(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("chaumpedersen", flag.ContinueOnError)
	fs.IntVar(&cfg.bits, "bits", params.BitsGroup, "size of the safe prime p")
	fs.IntVar(&cfg.sessions, "sessions", 8, "number of concurrent proof sessions")
	fs.IntVar(&cfg.workers, "workers", 0, "number of pool workers, 0 for one per CPU")
	fs.StringVar(&cfg.seed, "seed", "", "derive all randomness from this seed, for reproducible runs")
	fs.BoolVar(&cfg.verbose, "v", false, "log every session")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.bits < params.MinBitsSafePrime {
		return cfg, fmt.Errorf("bits must be at least %d", params.MinBitsSafePrime)
	}
	if cfg.sessions < 1 {
		return cfg, errors.New("sessions must be positive")
	}
	return cfg, nil
}

func newLogger(cfg config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().
		Timestamp().
		Str("protocol", "chaum-pedersen").
		Logger()
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := newLogger(cfg)

	var random io.Reader = rand.Reader
	if cfg.seed != "" {
		log.Warn().Msg("using seeded randomness, proofs are not zero-knowledge")
		random = pool.NewLockedReader(sample.NewSeededReader([]byte(cfg.seed)))
	}

	pl := pool.NewPool(cfg.workers)
	defer pl.TearDown()

	if err = run(context.Background(), cfg, log, random, pl); err != nil {
		log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log zerolog.Logger, random io.Reader, pl *pool.Pool) error {
	if err := regression(); err != nil {
		return err
	}
	log.Info().Msg("regression vector verified")

	start := time.Now()
	g, err := group.SafePrime(random, cfg.bits, pl)
	if err != nil {
		return fmt.Errorf("generate group: %w", err)
	}
	pp, err := zkdleq.NewParameters(g.P, g.Q, g.Alpha, g.Beta)
	if err != nil {
		return err
	}
	if err = pp.Validate(); err != nil {
		return fmt.Errorf("generated group: %w", err)
	}
	log.Info().
		Int("bits", pp.P().BitLen()).
		Dur("took", time.Since(start)).
		Msg("group generated")

	if err = interactive(ctx, cfg, log, random, pp); err != nil {
		return err
	}
	if err = nonInteractive(cfg, log, random, pp, pl); err != nil {
		return err
	}
	return ellipticCurve(log, random)
}

// regression checks α=4, β=9, p=23, q=11, x=6, k=7, c=4.
func regression() error {
	g := group.Small()
	nat := func(v uint64) *saferith.Nat { return new(saferith.Nat).SetUint64(v) }
	x, k, c := nat(6), nat(7), nat(4)

	y1 := zkdleq.Exponentiate(g.Alpha, x, g.P)
	y2 := zkdleq.Exponentiate(g.Beta, x, g.P)
	if y1.Eq(nat(2))&y2.Eq(nat(3)) != 1 {
		return fmt.Errorf("regression: unexpected public values %v, %v", y1, y2)
	}
	r1 := zkdleq.Exponentiate(g.Alpha, k, g.P)
	r2 := zkdleq.Exponentiate(g.Beta, k, g.P)
	s := zkdleq.Solve(k, c, x, g.Q)
	if !zkdleq.Verify(r1, r2, y1, y2, g.Alpha, g.Beta, c, s, g.P) {
		return errors.New("regression: proof rejected")
	}
	return nil
}

// interactive runs cfg.sessions sessions of the three move protocol concurrently.
func interactive(ctx context.Context, cfg config, log zerolog.Logger, random io.Reader, pp *zkdleq.Parameters) error {
	start := time.Now()
	errGroup, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.sessions; i++ {
		session := i
		errGroup.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sessionLog := log.With().Int("session", session).Logger()

			// prover: key and commitment
			x := sample.ModN(random, pp.Q())
			public := pp.PublicFromSecret(x)
			nonce := zkdleq.NewNonce(random, pp)
			commitment := nonce.Commitment()

			// verifier: challenge
			c := zkdleq.NewChallenge(random, pp)

			// prover: response
			s := nonce.Respond(pp, c, x)

			if !pp.Verify(commitment.R1, commitment.R2, public.Y1, public.Y2, c, s) {
				return fmt.Errorf("interactive session %d: proof rejected", session)
			}
			sessionLog.Debug().Str("c", c.Big().Text(16)).Str("s", s.Big().Text(16)).Msg("accepted")
			return nil
		})
	}
	if err := errGroup.Wait(); err != nil {
		return err
	}
	log.Info().Int("sessions", cfg.sessions).Dur("took", time.Since(start)).Msg("interactive sessions verified")
	return nil
}

// nonInteractive creates one Fiat-Shamir proof per session and verifies them as a batch.
func nonInteractive(cfg config, log zerolog.Logger, random io.Reader, pp *zkdleq.Parameters, pl *pool.Pool) error {
	start := time.Now()
	publics := make([]zkdleq.Public, cfg.sessions)
	proofs := make([]*zkdleq.Proof, cfg.sessions)
	pl.Parallelize(cfg.sessions, func(i int) interface{} {
		x := sample.ModN(random, pp.Q())
		publics[i] = pp.PublicFromSecret(x)
		proofs[i] = zkdleq.NewProof(hash.New("chaumpedersen-demo"), pp, publics[i], x, random)
		return nil
	})

	encoded, err := proofs[0].MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode proof: %w", err)
	}

	failed, ok := zkdleq.VerifyBatch(pl, hash.New("chaumpedersen-demo"), pp, publics, proofs)
	if !ok {
		return fmt.Errorf("non-interactive proofs rejected: %v", failed)
	}
	log.Info().
		Int("proofs", cfg.sessions).
		Int("workers", pl.Workers()).
		Int("encoded_bytes", len(encoded)).
		Dur("took", time.Since(start)).
		Msg("non-interactive proofs verified")
	return nil
}

// ellipticCurve runs the same proof over secp256k1.
func ellipticCurve(log zerolog.Logger, random io.Reader) error {
	var hJ secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(sample.Scalar(random), &hJ)
	hJ.ToAffine()
	h := secp256k1.NewPublicKey(&hJ.X, &hJ.Y)

	x := sample.Scalar(random)
	public, err := zkecdleq.NewPublic(h, x)
	if err != nil {
		return err
	}
	proof := zkecdleq.NewProof(hash.New("chaumpedersen-demo"), public, x, random)
	if !proof.Verify(hash.New("chaumpedersen-demo"), public) {
		return errors.New("secp256k1 proof rejected")
	}
	log.Info().Msg("secp256k1 proof verified")
	return nil
}
