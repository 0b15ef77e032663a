package util

import (
	"os"
	"strings"
)

const environmentPrefix = "INCIDENTPARSER_"

// GetEnvironmentVariables returns the INCIDENTPARSER_* variables of the process.
func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		name, value, _ := strings.Cut(variable, "=")

		if strings.HasPrefix(name, environmentPrefix) {
			environmentVariables[name] = value
		}
	}

	return environmentVariables
}

// IsEnabled follows the YES convention used for boolean switches.
func IsEnabled(env map[string]string, name string) bool {
	return strings.EqualFold(env[name], "YES")
}
