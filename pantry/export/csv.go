// pantry/export/csv.go
package export

import (
	"encoding/csv"
	"io"

	"github.com/dalemusser/audiencekit/pantry/merge"
)

// WriteCSV writes m as a key,kind,value table with a header row.
func WriteCSV(w io.Writer, m merge.Mapping) error {
	rows, err := Rows(m)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
