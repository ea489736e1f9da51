// Package interpolation expands environment variable references inside
// configuration values.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Pattern for ${VAR_NAME} and ${VAR_NAME:default} syntax - captures colon explicitly
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars expands environment variables with default values in the format:
//
// ${VAR_NAME:default_value}
//
// If the environment variable is not set, it uses the default value if provided. If no default is
// provided and the variable is missing, it returns an error.
func ExpandEnvVars(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missingVars []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		// submatches: [full_match, varName, colon, defaultValue]
		varName := submatches[1]
		colonIsPresent := submatches[2] == ":"
		defaultValue := submatches[3]

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}

		// Not in the environment; fall back to the default when one was
		// written, including the empty default in ${VAR:}.
		if colonIsPresent {
			return defaultValue
		}

		missingVars = append(
			missingVars,
			fmt.Errorf("environment variable not defined: %s", varName),
		)
		return match
	})

	return result, errors.Join(missingVars...)
}
