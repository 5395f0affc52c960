package shepherd

import "encoding/json"

// appDescriptorSchema is the JSON Schema a mounted App's simple descriptor
// must satisfy before mount() commits to the radio round-trip: a profile
// id must be declared and the two cluster-id lists must not collide.
const appDescriptorSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"profId": {"type": "integer", "minimum": 1, "maximum": 65535},
		"devId": {"type": "integer", "minimum": 0, "maximum": 65535},
		"inClusterList": {"type": "array", "items": {"type": "integer", "minimum": 0, "maximum": 65535}},
		"outClusterList": {"type": "array", "items": {"type": "integer", "minimum": 0, "maximum": 65535}}
	},
	"required": ["profId"]
}`

// jsonValidator is the narrow shape pkg/schema.Validator satisfies
// structurally, so pkg/shepherd never needs to import it directly.
type jsonValidator interface {
	Validate(schemaDoc json.RawMessage, payload map[string]any) error
}

// NewDescriptorValidator adapts a JSON-Schema validator (pkg/schema's
// Validator) into the DescriptorValidator shape Options accepts. It
// rejects any descriptor missing a profile id or declaring the same
// cluster id as both input and output.
func NewDescriptorValidator(v jsonValidator) func(AppDescriptor) error {
	return func(desc AppDescriptor) error {
		payload, err := json.Marshal(desc)
		if err != nil {
			return err
		}
		var asMap map[string]any
		if err := json.Unmarshal(payload, &asMap); err != nil {
			return err
		}
		if err := v.Validate(json.RawMessage(appDescriptorSchema), asMap); err != nil {
			return err
		}

		in := make(map[uint16]bool, len(desc.InClusterList))
		for _, c := range desc.InClusterList {
			in[c] = true
		}
		for _, c := range desc.OutClusterList {
			if in[c] {
				return errClusterListCollision
			}
		}
		return nil
	}
}
