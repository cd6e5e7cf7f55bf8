package pqgo

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"

	facade "pqgo"
	"pqgo/pkg/config"
	"pqgo/pkg/dilithium"
	"pqgo/pkg/keystore"
	"pqgo/pkg/kyber"
	"pqgo/pkg/log"
	"pqgo/pkg/metrics"
	"pqgo/pkg/round5"
)

var errUnknownScheme = xerrors.New("unknown scheme")

// env is what every command needs: the configuration, a logger, the
// metrics collector and the matrix cache shared by the schemes.
type env struct {
	conf    *config.Config
	log     log.Logger
	metrics *metrics.Collector
	cache   *lru.ARCCache
}

func newEnv(c *cli.Context) (*env, error) {
	conf := config.Default()
	if path := c.String(configFlag.Name); path != "" {
		var err error
		if conf, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet(storeFlag.Name) {
		conf.Store.Path = c.String(storeFlag.Name)
	}
	if c.Bool(verboseFlag.Name) {
		conf.Log.Level = "debug"
	}
	if c.Bool(jsonFlag.Name) {
		conf.Log.JSON = true
	}
	level, err := log.ParseLevel(conf.Log.Level)
	if err != nil {
		return nil, err
	}

	e := &env{
		conf:    conf,
		log:     log.New(zapcore.AddSync(os.Stderr), level, conf.Log.JSON).Named("pqgo"),
		metrics: metrics.NewCollector(conf.Metrics.Enabled),
	}
	if n := conf.Cache.MatrixEntries; n > 0 {
		if e.cache, err = lru.NewARC(n); err != nil {
			return nil, xerrors.Errorf("matrix cache: %w", err)
		}
	}
	return e, nil
}

// resolve maps the scheme aliases to the configured parameter sets.
func (e *env) resolve(name string) string {
	switch strings.ToLower(name) {
	case "kyber":
		return e.conf.Kyber.Mode
	case "round5":
		return e.conf.Round5.Set
	case "dilithium":
		return e.conf.Dilithium.Mode
	}
	return name
}

func (e *env) facadeOpts() []facade.Option {
	return []facade.Option{facade.WithObserver(e.metrics), facade.WithLogger(e.log)}
}

func (e *env) kyberScheme(name string) (*kyber.Scheme, bool) {
	p, ok := kyber.ParamSets[e.resolve(name)]
	if !ok {
		return nil, false
	}
	var opts []kyber.Option
	if e.cache != nil {
		opts = append(opts, kyber.WithMatrixCache(e.cache))
	}
	return kyber.New(p, opts...), true
}

// kem returns the KEM named by name, or by the configured Kyber mode when
// name is empty.
func (e *env) kem(name string) (facade.KEM, error) {
	if name == "" {
		name = e.conf.Kyber.Mode
	}
	if s, ok := e.kyberScheme(name); ok {
		return facade.NewKyber(s, e.facadeOpts()...), nil
	}
	if p, ok := round5.ParamSets[e.resolve(name)]; ok {
		mult, err := round5.MultiplierByName(e.conf.Round5.RingMultiplier)
		if err != nil {
			return nil, err
		}
		opts := []round5.Option{round5.WithRingMultiplier(mult)}
		if e.cache != nil {
			opts = append(opts, round5.WithCache(e.cache))
		}
		if mult.Name() == round5.FastName {
			e.log.Warnw("using the variable time ring multiplier", "scheme", p.Name)
		}
		return facade.NewRound5(round5.New(p, opts...), e.facadeOpts()...), nil
	}
	return nil, xerrors.Errorf("%q is not a KEM: %w", name, errUnknownScheme)
}

// signature returns the signature scheme named by name, or the configured
// Dilithium mode when name is empty.
func (e *env) signature(name string) (facade.Signature, error) {
	if name == "" {
		name = e.conf.Dilithium.Mode
	}
	m, ok := dilithium.Modes[e.resolve(name)]
	if !ok {
		return nil, xerrors.Errorf("%q is not a signature scheme: %w", name, errUnknownScheme)
	}
	var opts []dilithium.Option
	if e.cache != nil {
		opts = append(opts, dilithium.WithMatrixCache(e.cache))
	}
	return facade.NewDilithium(dilithium.New(m, opts...), e.facadeOpts()...), nil
}

func (e *env) openStore() (*keystore.Store, error) {
	return keystore.Open(e.conf.Store.Path, e.log)
}

// loadKey fetches the key pair stored under the --name flag.
func (e *env) loadKey(c *cli.Context, scheme string) (*keystore.KeyPair, error) {
	name := c.String(nameFlag.Name)
	if name == "" {
		return nil, xerrors.New("missing --name")
	}
	store, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(scheme, name)
}

func entropy(c *cli.Context) ([]byte, error) {
	if !c.IsSet(entropyFlag.Name) {
		return nil, nil
	}
	b, err := hex.DecodeString(c.String(entropyFlag.Name))
	if err != nil {
		return nil, xerrors.Errorf("--entropy: %w", err)
	}
	return b, nil
}

// readInput reads the file named by the first argument, or stdin for "-".
func readInput(c *cli.Context) ([]byte, error) {
	path := c.Args().First()
	switch path {
	case "":
		return nil, xerrors.New("missing input file argument")
	case "-":
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func readHexInput(c *cli.Context) ([]byte, error) {
	raw, err := readInput(c)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return nil, xerrors.Errorf("decoding %s: %w", c.Args().First(), err)
	}
	return b, nil
}
