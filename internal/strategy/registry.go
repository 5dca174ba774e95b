package strategy

import (
	"sort"
	"strings"

	"github.com/yanun0323/errors"
)

// Constructor builds a fresh unit bound to the given parameter overrides.
type Constructor func(params Params) Unit

var registry = map[string]Constructor{
	"ema_crossover": func(params Params) Unit { return NewEMACrossover(params) },
}

// Resolve looks up a unit constructor by registry name. Unknown names fail
// with the enumerated list of valid names for user-facing messages.
func Resolve(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, errors.New("unknown strategy " + name + ", valid: " + strings.Join(Names(), ", "))
	}
	return ctor, nil
}

// Names lists registered strategy names in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info describes a registered unit for the control surface.
type Info struct {
	Name          string
	Description   string
	DefaultParams Params
}

// List returns metadata for every registered unit.
func List() []Info {
	infos := make([]Info, 0, len(registry))
	for _, name := range Names() {
		unit := registry[name](nil)
		infos = append(infos, Info{
			Name:          unit.Name(),
			Description:   unit.Description(),
			DefaultParams: unit.DefaultParams(),
		})
	}
	return infos
}
