package config

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ToJSONSchema converts a struct to a JSON schema
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	// Durations are written as strings such as "5s" or "1h30m"
	r.Mapper = func(typ reflect.Type) *jsonschema.Schema {
		if typ == durationType {
			return &jsonschema.Schema{Type: "string", Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`}
		}

		return nil
	}
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// GetConfigSchema returns the JSON schema of the configuration file.
func GetConfigSchema() (string, error) {
	return ToJSONSchema(&Config{})
}
