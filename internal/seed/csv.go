package seed

import (
	"encoding/csv"
	"os"
	"strings"
)

// readRecords reads a CSV file with a header row and returns each data row
// as a column-name → trimmed-value map, mirroring how the rule sources are
// published (one header line, free-form text cells).
func readRecords(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, name := range header {
			if i >= len(row) {
				break
			}
			record[strings.TrimSpace(name)] = strings.TrimSpace(row[i])
		}
		records = append(records, record)
	}
	return records, nil
}
