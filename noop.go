package logx

import "context"

// noopEngine discards everything. It reports every level as disabled so that
// deferred producers are never invoked while no real engine is installed.
type noopEngine struct{}

type noopChannel struct {
	name string
}

var noop Engine = noopEngine{}

var (
	_ Engine  = noopEngine{}
	_ Channel = noopChannel{}
)

// NoopEngine returns the engine that discards all output. It is the package
// default until SetEngine installs a real engine.
func NoopEngine() Engine {
	return noop
}

func (noopEngine) Channel(name string) Channel {
	return noopChannel{name: name}
}

func (c noopChannel) Name() string { return c.name }

func (noopChannel) Enabled(Level) bool { return false }

func (noopChannel) Log(context.Context, Level, Marker, any, error) {}

func (noopChannel) LogFunc(context.Context, Level, Marker, MessageFunc, error) {}

func (noopChannel) Enter(context.Context, *FlowEntry) {}

func (noopChannel) Exit(context.Context, *FlowEntry, any, bool) {}

func (noopChannel) Catching(context.Context, error) {}
