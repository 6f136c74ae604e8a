package api

import (
	"fmt"

	"github.com/rs/zerolog"

	"paketetl/internal/config"
	"paketetl/internal/datasource/httpds"
	"paketetl/internal/engine"
)

// BuildModules builds one engine and upstream catalog per configured module.
func BuildModules(s config.Settings, log *zerolog.Logger) ([]Module, error) {
	out := make([]Module, 0, len(s.Modules))
	for _, m := range s.Modules {
		eng, err := engine.New(engine.OptionsFromModule(m, s.Response, log))
		if err != nil {
			return nil, fmt.Errorf("api: module %s: %w", m.Name, err)
		}
		out = append(out, Module{
			Engine: eng,
			Source: httpds.CatalogFromModule(m, s.Response),
		})
	}
	return out, nil
}
