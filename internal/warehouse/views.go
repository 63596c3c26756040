package warehouse

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Views holds the names of the warehouse views the tools query.
// Deployments that expose the fact and dimension data under different
// names override these in the views TOML file.
type Views struct {
	SalesFact    string `toml:"sales_fact"`
	Product      string `toml:"product"`
	Organization string `toml:"organization"`
}

// DefaultViews returns the standard view names.
func DefaultViews() Views {
	return Views{
		SalesFact:    "v_llm_salesfact",
		Product:      "v_llm_product",
		Organization: "v_llm_organization",
	}
}

// LoadViews reads view-name overrides from a TOML file. An empty path
// returns the defaults; a partial file keeps defaults for unset keys.
func LoadViews(path string) (Views, error) {
	views := DefaultViews()
	if path == "" {
		return views, nil
	}

	if _, err := toml.DecodeFile(path, &views); err != nil {
		return Views{}, fmt.Errorf("failed to load views file %s: %w", path, err)
	}

	if views.SalesFact == "" || views.Product == "" || views.Organization == "" {
		return Views{}, fmt.Errorf("views file %s must not blank out view names", path)
	}

	return views, nil
}
