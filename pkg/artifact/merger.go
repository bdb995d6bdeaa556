package artifact

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Append adds rows after the records already stored at path and rewrites the
// file as an indented JSON array. Existing records are kept byte-for-byte in
// content, including fields T does not know about. Nothing is deduplicated.
// It returns the number of records now stored.
func Append[T any](path string, rows []T) (int, error) {
	existing, err := readRaw(path)
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	combined := make([]json.RawMessage, 0, len(existing)+len(rows))
	combined = append(combined, existing...)
	for i, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return 0, errors.Wrapf(err, "encode row %d", i)
		}
		combined = append(combined, b)
	}

	out, err := json.MarshalIndent(combined, "", "    ")
	if err != nil {
		return 0, errors.Wrap(err, "encode artifact")
	}
	if err := writeAtomic(path, out); err != nil {
		return 0, err
	}
	zap.S().Infof("appended %d rows to %s (%d total)", len(rows), path, len(combined))
	return len(combined), nil
}
