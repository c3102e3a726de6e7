package cost

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadRates reads model pricing from a YAML file. Models absent from
// the file keep their default rates; an empty path returns defaults.
func LoadRates(path string) (Rates, error) {
	rates := DefaultRates()
	if path == "" {
		return rates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cost: read rates %s", path)
	}

	// The YAML has a top-level "rates" key.
	var wrapper struct {
		Rates Rates `yaml:"rates"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "cost: parse rates")
	}

	for model, rate := range wrapper.Rates {
		rates[model] = rate
	}
	return rates, nil
}
