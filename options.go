package recon

import (
	"github.com/voocel/recon/planner"
	"github.com/voocel/recon/runtime"
	"github.com/voocel/recon/sensor"
	"github.com/voocel/recon/task"
)

// Option configures a Config at construction.
type Option func(*Config)

// WithTasks appends task definitions to the default registry. Ignored if
// WithPlanner is also used.
func WithTasks(tasks ...*task.Task) Option {
	return func(c *Config) { c.Tasks = append(c.Tasks, tasks...) }
}

// WithPlanner installs a fully configured Planner, bypassing the default
// task-list-to-registry construction.
func WithPlanner(p *planner.Planner) Option {
	return func(c *Config) { c.Planner = p }
}

// WithSensors installs sensors the runtime subscribes to once started.
func WithSensors(sensors ...sensor.Sensor) Option {
	return func(c *Config) { c.Sensors = append(c.Sensors, sensors...) }
}

// WithRuntimeOptions forwards functional options to the underlying
// runtime.Runtime (follow mode, backoff, retries, sink, search depth).
func WithRuntimeOptions(opts ...runtime.Option) Option {
	return func(c *Config) { c.RuntimeOpts = append(c.RuntimeOpts, opts...) }
}
