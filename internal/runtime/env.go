package runtime

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bio-labs/bio/internal/branding"
)

// BuildEnv constructs the environment of a task. It inherits the current
// process environment, puts the node_modules/.bin directories of the project
// and the scaffold on PATH, and adds the BIO_* task variables.
func BuildEnv(inv Invocation) []string {
	env := os.Environ()

	var bins []string
	if inv.ProjectRoot != "" {
		bins = append(bins, filepath.Join(inv.ProjectRoot, "node_modules", ".bin"))
	}
	if inv.ScaffoldDir != "" {
		bins = append(bins, filepath.Join(inv.ScaffoldDir, "node_modules", ".bin"))
	}
	if len(bins) > 0 {
		path := strings.Join(bins, string(os.PathListSeparator))
		if cur := os.Getenv("PATH"); cur != "" {
			path += string(os.PathListSeparator) + cur
		}
		env = setEnv(env, "PATH", path)
	}

	env = setEnv(env, branding.EnvVar("PROJECT_ROOT"), inv.ProjectRoot)
	env = setEnv(env, branding.EnvVar("SCAFFOLD_DIR"), inv.ScaffoldDir)
	env = setEnv(env, branding.EnvVar("TASK"), inv.Task.Name)
	watch := "0"
	if inv.Watch {
		watch = "1"
	}
	env = setEnv(env, branding.EnvVar("WATCH"), watch)

	keys := make([]string, 0, len(inv.Env))
	for k := range inv.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, inv.Env[k])
	}
	return env
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// setEnvPair applies a NAME=value string.
func setEnvPair(env []string, kv string) []string {
	key, value, _ := strings.Cut(kv, "=")
	return setEnv(env, key, value)
}
