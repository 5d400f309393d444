package agent

import (
	"path/filepath"
	"strings"
)

// CommandConfig holds the resolved executable and the leading arguments
// needed to start a program.
type CommandConfig struct {
	Binary string
	Args   []string
}

// ResolveProgram returns the path used to run a program given by name.
// Bare names are resolved against the working directory, mirroring how
// agents sit next to the game script.
func ResolveProgram(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) ||
		strings.ContainsRune(name, '/') {
		return name
	}

	return "." + string(filepath.Separator) + name
}

// WrapCommand returns the exec configuration needed to run program.
// Python sources run under interpreter; anything else is executed
// directly.
func WrapCommand(interpreter, program string) CommandConfig {
	path := ResolveProgram(program)

	switch filepath.Ext(program) {
	case ".py":
		return CommandConfig{
			Binary: interpreter,
			Args:   []string{path},
		}
	default:
		return CommandConfig{Binary: path}
	}
}
