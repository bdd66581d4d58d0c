package fieldschema

import (
	"fmt"
	"strings"
)

var overrideCapableGroups = map[Group]struct{}{
	GroupOverrideProfitLoss: {},
	GroupOverrideBalance:    {},
	GroupOverrideCashFlow:   {},
}

var knownValueTypes = map[ValueType]struct{}{
	ValueTypeMonetary:   {},
	ValueTypePercentage: {},
	ValueTypeDays:       {},
}

// ValidateDefinitions ensures a catalog is internally consistent: keys are
// unique and non-empty, the override flag agrees with the group, and only
// driver fields are marked required.
func ValidateDefinitions(defs []FieldDefinition) error {
	seen := make(map[string]struct{}, len(defs))

	for _, def := range defs {
		key := strings.TrimSpace(def.Key)
		if key == "" {
			return fmt.Errorf("field with label %q has an empty key", def.Label)
		}
		if key != def.Key {
			return fmt.Errorf("field key %q has surrounding whitespace", def.Key)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate field key %s", key)
		}
		seen[key] = struct{}{}

		if _, ok := knownValueTypes[def.ValueType]; !ok {
			return fmt.Errorf("field %s has unknown value type %q", key, def.ValueType)
		}

		_, overrideGroup := overrideCapableGroups[def.Group]
		switch {
		case overrideGroup && !def.IsOverride:
			return fmt.Errorf("field %s sits in override group %s but is not flagged as override", key, def.Group)
		case !overrideGroup && def.IsOverride:
			return fmt.Errorf("field %s is flagged as override but sits in group %s", key, def.Group)
		case !def.IsDriver() && !overrideGroup:
			return fmt.Errorf("field %s has unknown group %q", key, def.Group)
		}

		if def.Required && !def.IsDriver() {
			return fmt.Errorf("field %s cannot be required outside the driver groups", key)
		}
		if def.Required != (def.Group == GroupDriverRequired) {
			return fmt.Errorf("field %s required flag disagrees with group %s", key, def.Group)
		}
	}

	return nil
}
