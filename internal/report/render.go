package report

import (
	"fmt"
	"io"
	"sort"
)

// Render writes the grouped report: a header per group with the group
// value, the file count, and an indented list of absolute paths.
func Render(w io.Writer, groups map[string][]string) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No Image files with model information found in the specified directory.")
		return err
	}

	values := make([]string, 0, len(groups))
	for value := range groups {
		values = append(values, value)
	}
	sort.Strings(values)

	if _, err := fmt.Fprintln(w, "Model information for Image files:"); err != nil {
		return err
	}

	for _, value := range values {
		paths := append([]string(nil), groups[value]...)
		sort.Strings(paths)

		if _, err := fmt.Fprintf(w, "\nModel: %s\nFiles: %d\n", value, len(paths)); err != nil {
			return err
		}
		for _, path := range paths {
			if _, err := fmt.Fprintf(w, " - %s\n", path); err != nil {
				return err
			}
		}
	}
	return nil
}
