package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/aliasexpr/pkg"
)

const (
	// baseConfig is the base name of the configuration file and the optional
	// top-level key that scopes flag values inside it.
	baseConfig = "config"

	configExt = ".yaml"
)

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

func configDir() string { return pkg.ConfigDir() }

func cacheDir() string { return pkg.CacheDir() }

// envPrefix returns the prefix of environment variables bound to flags,
// e.g. ALIASEXPR for ALIASEXPR_LOG_LEVEL.
func envPrefix() string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(pkg.Prefix()))
}

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		err := os.MkdirAll(dir, defaultDirMode)
		if err != nil {
			return err
		}
	}

	return nil
}
