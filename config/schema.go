package config

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of a profile.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Profile{})
}

// FlashAttributesSchema returns the JSON schema of the QSPI flash attributes.
func FlashAttributesSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&FlashAttributes{})
}
