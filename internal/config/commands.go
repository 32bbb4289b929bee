package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/runlabhq/devrun/internal/command"
	devrunerrors "github.com/runlabhq/devrun/internal/errors"
)

// UserSpecs converts the commands section of the config file into command
// specs. Names are returned in sorted order so registration (and the
// usage listing) is deterministic regardless of map iteration.
func (c *Configuration) UserSpecs() ([]command.Spec, error) {
	names := make([]string, 0, len(c.Commands))
	for name := range c.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]command.Spec, 0, len(names))
	for _, name := range names {
		spec, err := buildUserSpec(name, c.Commands[name])
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// buildUserSpec converts one user command definition into a Spec.
func buildUserSpec(name string, uc UserCommand) (command.Spec, error) {
	if len(uc.Steps) == 0 {
		return command.Spec{}, devrunerrors.NewConfigError(
			fmt.Sprintf("custom command %q has no steps", name),
		)
	}

	steps := make([]command.Step, 0, len(uc.Steps))
	for i, us := range uc.Steps {
		step, err := buildUserStep(name, i, us)
		if err != nil {
			return command.Spec{}, err
		}
		steps = append(steps, step)
	}

	description := uc.Description
	if description == "" {
		description = "Custom command from config"
	}
	return command.Spec{Name: name, Description: description, Steps: steps}, nil
}

// buildUserStep converts one user step, enforcing that exactly one of
// run, sleep, or log is set.
func buildUserStep(name string, index int, us UserStep) (command.Step, error) {
	set := 0
	if us.Run != "" {
		set++
	}
	if us.Sleep != "" {
		set++
	}
	if us.Log != "" {
		set++
	}
	if set != 1 {
		return command.Step{}, devrunerrors.NewConfigError(
			fmt.Sprintf("custom command %q step %d must set exactly one of run, sleep, log", name, index+1),
		)
	}

	switch {
	case us.Run != "":
		argv, err := shellquote.Split(us.Run)
		if err != nil {
			return command.Step{}, devrunerrors.NewConfigError(
				fmt.Sprintf("custom command %q step %d: invalid run string: %v", name, index+1, err),
			)
		}
		if len(argv) == 0 {
			return command.Step{}, devrunerrors.NewConfigError(
				fmt.Sprintf("custom command %q step %d: empty run string", name, index+1),
			)
		}
		return command.Step{
			Kind:              command.RunProcess,
			Argv:              argv,
			Background:        us.Background,
			ContinueOnFailure: us.ContinueOnFailure,
		}, nil

	case us.Sleep != "":
		d, err := time.ParseDuration(us.Sleep)
		if err != nil {
			return command.Step{}, devrunerrors.NewConfigError(
				fmt.Sprintf("custom command %q step %d: invalid sleep duration %q", name, index+1, us.Sleep),
			)
		}
		return command.Step{Kind: command.Sleep, Duration: d, ContinueOnFailure: us.ContinueOnFailure}, nil

	default:
		return command.Step{Kind: command.Log, Message: us.Log, Level: command.Info}, nil
	}
}
