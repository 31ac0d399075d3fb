package hooks

import (
	"fmt"

	"github.com/vellum-ws/vellum/domain"
)

// Runner loads the enabled hooks from the repository and runs them in order
// against pages on save and render. It satisfies the host application's hook
// service interface.
type Runner struct {
	service  Service
	runtimes []*Runtime
	options  []func(*Runtime) error
}

// NewRunner builds a runner and loads the enabled hooks.
func NewRunner(service Service, options ...func(*Runtime) error) (*Runner, error) {
	runner := &Runner{service: service, options: options}
	if err := runner.Reload(); err != nil {
		return nil, err
	}
	return runner, nil
}

// Reload rebuilds the runtimes from the repository, picking up code changes.
// A hook whose source fails to load is logged and skipped, the rest still run.
func (runner *Runner) Reload() error {
	repo, err := runner.service.GetHookRepo()
	if err != nil {
		return fmt.Errorf("getting hook repo : %w", err)
	}
	allHooks, err := repo.GetHooks()
	if err != nil {
		return fmt.Errorf("getting hooks : %w", err)
	}

	runtimes := make([]*Runtime, 0, len(allHooks))
	for _, hook := range allHooks {
		if !hook.Enabled {
			continue
		}
		runtime := &Runtime{Data: hook}
		if err := runtime.PrepareState(runner.service, runner.options); err != nil {
			runner.service.WriteLog("ERROR", fmt.Sprintf("preparing hook %s : %s", hook.Name, err))
			continue
		}
		runtimes = append(runtimes, runtime)
	}
	runner.runtimes = runtimes
	return nil
}

// Runtimes returns the loaded runtimes in execution order.
func (runner *Runner) Runtimes() []*Runtime {
	return runner.runtimes
}

// OnSave runs the save hooks over the page before it is persisted.
func (runner *Runner) OnSave(page *domain.Page) (*domain.Page, error) {
	return runner.run("on_save", page)
}

// OnRender runs the render hooks over the page before it is shown.
func (runner *Runner) OnRender(page *domain.Page) (*domain.Page, error) {
	return runner.run("on_render", page)
}

func (runner *Runner) run(function string, page *domain.Page) (*domain.Page, error) {
	current := page
	for _, runtime := range runner.runtimes {
		rewritten, err := runtime.CallPage(function, current)
		if err != nil {
			return current, fmt.Errorf("hook %s %s : %w", runtime.Data.Name, function, err)
		}
		current = rewritten
	}
	return current, nil
}
