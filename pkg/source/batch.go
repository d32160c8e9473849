package source

import (
	"bufio"
	"os"
	"strings"

	"github.com/0xs3fo/ddeponpm/pkg/errors"
)

// ReadBatchFile returns the locations listed in a batch file, in file order.
// Lines are trimmed; blank lines and "#" comments are skipped.
func ReadBatchFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "batch file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open batch file %s", path)
	}
	defer f.Close()

	var locations []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locations = append(locations, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read batch file %s", path)
	}
	if len(locations) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no valid sources found in %s", path)
	}
	return locations, nil
}
