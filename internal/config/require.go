package config

import (
	"bytes"
	"fmt"
)

// Required reports a missing setting by its env name.
func Required(envName, value string) error {
	if value == "" {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

func RequiredBytes(envName string, value []byte) error {
	if len(value) == 0 {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

// Distinct fails when two secrets that sign different token kinds are equal.
func Distinct(envA, envB string, a, b []byte) error {
	if len(a) > 0 && bytes.Equal(a, b) {
		return fmt.Errorf("%s and %s must differ", envA, envB)
	}
	return nil
}
