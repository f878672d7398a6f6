package records

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed columns.yaml
var columnsYAML []byte

type schema struct {
	Columns []string `yaml:"columns"`
}

// datasetColumns is the canonical column order of the dataset, id first.
// Older datasets may carry fewer columns; missing ones are backfilled with
// empty strings on load.
var datasetColumns []string

func init() {
	var s schema
	if err := yaml.Unmarshal(columnsYAML, &s); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded columns.yaml: " + err.Error())
	}
	datasetColumns = s.Columns
}

// Columns returns the canonical dataset column names in order.
func Columns() []string {
	out := make([]string, len(datasetColumns))
	copy(out, datasetColumns)
	return out
}
