package names

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed data/*.csv
var defaultTablesFS embed.FS

// defaultFS exposes a sub-filesystem rooted at data/.
var defaultFS fs.FS = func() fs.FS {
	sub, err := fs.Sub(defaultTablesFS, "data")
	if err != nil {
		return defaultTablesFS
	}
	return sub
}()

// openDefault opens the embedded table named after t.
func openDefault(t Table) (fs.File, error) {
	f, err := defaultFS.Open(string(t) + ".csv")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, t)
	}
	return f, nil
}
