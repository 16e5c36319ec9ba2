package isohash

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// HashKind selects the hash primitive used for every mix of a run.
type HashKind string

const (
	// HashFast is the fast, non-cryptographic primitive (xxHash64).
	HashFast HashKind = "xxhash"
	// HashStrong is the cryptographic primitive (MD5).
	HashStrong HashKind = "md5"
)

// Config holds the knobs of the refinement.
// It is copied by New, so modifying a Config after New has no effect on the Hasher.
type Config struct {
	// Depth is the maximum number of refinement rounds.
	Depth uint `yaml:"depth" validate:"gte=1"`
	// CrossReference refines one node per literal, each linked to its complement.
	// When false, one node per variable is used.
	CrossReference bool `yaml:"cross_reference"`
	// RehashClauses hashes the color sum of a clause before folding it into nodes.
	RehashClauses bool `yaml:"rehash_clauses"`
	// OptimizeFirstIteration computes round 1 from clause shapes rather than colors.
	OptimizeFirstIteration bool `yaml:"optimize_first_iteration"`
	// ProgressIter is the first round at which stabilization is checked.
	ProgressIter uint `yaml:"progress_iter" validate:"gte=1"`
	// CollectMeasurements records per-round measurements in the Result.
	CollectMeasurements bool `yaml:"collect_measurements"`
	// SortForClauseHash hashes the sorted member colors of a clause instead of summing them.
	SortForClauseHash bool `yaml:"sort_for_clause_hash"`
	// Hash is the hash primitive.
	Hash HashKind `yaml:"hash" validate:"oneof=xxhash md5"`
	// PrimeRingModulus, if not 0, is a prime all computations are reduced modulo.
	PrimeRingModulus uint32 `yaml:"prime_ring_modulus" validate:"omitempty,prime"`
	// CompositeDigest folds the digests of all rounds into the final digest.
	// It requires CollectMeasurements.
	CompositeDigest bool `yaml:"composite_digest"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Depth:                  100,
		CrossReference:         true,
		RehashClauses:          true,
		OptimizeFirstIteration: true,
		ProgressIter:           1,
		CollectMeasurements:    true,
		Hash:                   HashFast,
	}
}

// LoadConfig reads a YAML configuration file.
// Fields absent from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "could not read configuration %q", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(ErrConfiguration, "%q: %v", path, err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("prime", func(fl validator.FieldLevel) bool {
		return new(big.Int).SetUint64(fl.Field().Uint()).ProbablyPrime(0)
	})
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the consistency of cfg. The returned error wraps ErrConfiguration.
func (cfg Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(ErrConfiguration, err.Error())
		}
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = fieldMessage(fe)
		}
		return errors.Wrap(ErrConfiguration, strings.Join(msgs, "; "))
	}
	if cfg.CompositeDigest && !cfg.CollectMeasurements {
		return errors.Wrap(ErrConfiguration, "composite digest requires measurements to be collected")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "prime":
		return fmt.Sprintf("%s: %v is not a prime", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of %s", fe.Field(), fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s: %v does not satisfy %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	}
}
