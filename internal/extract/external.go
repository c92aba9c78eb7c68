package extract

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mleduque/modda/internal/config"
)

// externalExtractor shells out to a user-configured command for archive
// formats with no built-in support (7z, rar, tar.xz and similar). Extractor
// and weidu invocations have no time limit by default, so this runs the
// command to completion rather than imposing one.
type externalExtractor struct {
	cmd config.ExtractorCommand
}

func (e *externalExtractor) Extract(archivePath, destDir string) error {
	args := make([]string, len(e.cmd.Args))
	for i, arg := range e.cmd.Args {
		arg = strings.ReplaceAll(arg, "${input}", archivePath)
		arg = strings.ReplaceAll(arg, "${target}", destDir)
		args[i] = arg
	}

	cmd := exec.Command(e.cmd.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extractor %s failed: %w: %s", e.cmd.Command, err, stderr.String())
	}
	return nil
}
