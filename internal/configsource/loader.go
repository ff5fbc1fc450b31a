// Package configsource implements the resource-loader contract of spec §6:
// the engine consumes an already-parsed configuration, but something has
// to turn a path into bytes first. Only the "file:" and bare-path schemes
// actually touch the filesystem in this build; "classpath:" and
// "http(s)://" are out-of-scope external collaborators per spec §1/§6 and
// are stubbed so callers get a clear, typed error instead of silently
// degrading.
package configsource

import (
	"os"
	"strings"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

const (
	schemeFile      = "file:"
	schemeClasspath = "classpath:"
	schemeHTTP      = "http://"
	schemeHTTPS     = "https://"
)

// Load resolves path's scheme prefix and decodes the referenced document.
func Load(path string) (*config.Document, error) {
	switch {
	case strings.HasPrefix(path, schemeFile):
		return loadFile(strings.TrimPrefix(path, schemeFile))
	case strings.HasPrefix(path, schemeHTTP), strings.HasPrefix(path, schemeHTTPS):
		return nil, workflowerrors.NewConfigError(path, "scheme not supported by this build", nil)
	case strings.HasPrefix(path, schemeClasspath):
		return nil, workflowerrors.NewConfigError(path, "scheme not supported by this build", nil)
	default:
		// Bare paths are treated as local filesystem paths (a classpath
		// resource scan is the out-of-scope collaborator for bare names;
		// this build resolves bare names against the working directory).
		return loadFile(path)
	}
}

func loadFile(path string) (*config.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, workflowerrors.NewConfigError(path, "unable to read configuration file", err)
	}
	return config.DecodeBytes(data)
}
