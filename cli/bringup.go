package cli

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"go.viam.com/k3ddrss/config"
	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/lpddr4"
	"go.viam.com/k3ddrss/lpddr4/fake"
	"go.viam.com/k3ddrss/regio"
)

// ddrssWindow covers the controller, PI and PHY blocks.
const ddrssWindow = 0x8000

// Simulated start sequence timing, in polls.
const (
	simPIPolls = 3
	simMCPolls = 2
)

// target is an opened controller register window.
type target struct {
	port  regio.Port
	sim   *fake.DDRSS
	close func() error
}

func (t *target) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

func openTarget(p *config.Profile, sim bool, mapper string) (*target, error) {
	if sim {
		variant, err := lpddr4.ParseVariant(p.Variant)
		if err != nil {
			return nil, err
		}
		s := fake.NewDDRSS(variant, p.Base)
		s.CompleteStartAfter(simPIPolls, simMCPolls)
		return &target{port: s, sim: s}, nil
	}
	var (
		m   *regio.MMIO
		err error
	)
	switch mapper {
	case mapperPeriph, "":
		m, err = regio.OpenPhysical(p.Base, ddrssWindow, nil)
	case mapperDevMem:
		m, err = regio.OpenDevMem(p.Base, ddrssWindow, nil)
	default:
		return nil, errors.Errorf("unknown mapper %q", mapper)
	}
	if err != nil {
		return nil, err
	}
	return &target{port: m, close: m.Close}, nil
}

// openController loads the profile at path and initializes a controller on its target.
func openController(path string, sim bool, mapper string, logger logging.Logger) (*lpddr4.Controller, *config.Profile, *target, error) {
	p, err := config.Read(path, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	t, err := openTarget(p, sim, mapper)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := p.ControllerConfig(t.port, logger)
	if err != nil {
		utils.UncheckedError(t.Close())
		return nil, nil, nil, err
	}
	cfg.InfoHandler = func(c *lpddr4.Controller, info lpddr4.InfoType) {
		if info == lpddr4.InfoSocPLLUpdate {
			logger.Debug("start bits set, SoC PLL may be updated")
		}
	}
	size, err := lpddr4.Probe(cfg)
	if err != nil {
		utils.UncheckedError(t.Close())
		return nil, nil, nil, err
	}
	logger.Debugw("probed controller", "handle_size", size)

	var c lpddr4.Controller
	if err := c.Init(cfg); err != nil {
		utils.UncheckedError(t.Close())
		return nil, nil, nil, err
	}
	return &c, p, t, nil
}

// BringupResult is what one bring-up run found.
type BringupResult struct {
	Profile string
	Variant string
	Info    lpddr4.DebugInfo
	Err     error
}

// Bringup applies the profile at path, starts the controller and inspects training.
func Bringup(path string, sim bool, mapper string, logger logging.Logger) (BringupResult, error) {
	c, p, t, err := openController(path, sim, mapper, logger)
	if err != nil {
		return BringupResult{}, err
	}
	defer utils.UncheckedErrorFunc(t.Close)

	res := BringupResult{Profile: p.Name, Variant: c.Variant().Name()}
	if err := p.Apply(c); err != nil {
		return res, err
	}
	if err := c.Start(); err != nil {
		return res, errors.WithMessage(err, "start sequence")
	}
	err = c.GetDebugInitInfo(&res.Info)
	if err != nil && !errors.Is(err, lpddr4.ErrTraining) {
		return res, err
	}
	res.Err = err
	return res, nil
}

// BringupAction runs bring-up once, or on every profile change with --watch.
func BringupAction(c *cli.Context) error {
	logger := loggerFrom(c)
	path := c.String(flagProfile)
	run := func() error {
		res, err := Bringup(path, c.Bool(flagSim), c.String(flagMapper), logger)
		if err != nil {
			return err
		}
		renderBringup(c.App.Writer, res)
		return res.Err
	}

	if !c.Bool(flagWatch) {
		return run()
	}
	if err := run(); err != nil {
		logger.Errorw("bring-up failed", "error", err)
	}
	w, err := newProfileWatcher(path)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(w.Close)
	return w.Run(c.Context, logger, run)
}

// profileWatcher reruns a function whenever a profile file is written.
type profileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
}

func newProfileWatcher(path string) (*profileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		utils.UncheckedError(watcher.Close())
		return nil, errors.Wrapf(err, "watching %s", path)
	}
	return &profileWatcher{watcher: watcher, path: filepath.Clean(path)}, nil
}

// Run calls fn after every write to the profile until ctx is done. Errors from fn are logged.
func (w *profileWatcher) Run(ctx context.Context, logger logging.Logger, fn func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			logger.Infow("profile changed", "path", w.path)
			if err := fn(); err != nil {
				logger.Errorw("bring-up failed", "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("profile watch error", "error", err)
		}
	}
}

func (w *profileWatcher) Close() error {
	return w.watcher.Close()
}
