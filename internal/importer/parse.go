package importer

import (
	"regexp"
	"strconv"
	"strings"
)

// Column positions in the import CSV.
const (
	colL1Name = iota
	colL1Slug
	colL2Name
	colL2Slug
	colL3Name
	colL3Slug
	colActive
	colSortOrder
)

// Row is one data line of the import CSV.
type Row struct {
	Line      int // 1-based line number in the upload, header included
	L1Name    string
	L1Slug    string
	L2Name    string
	L2Slug    string
	L3Name    string
	L3Slug    string
	Active    bool
	SortOrder int
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParseCSV splits raw CSV text into rows. Blank lines are dropped and the
// first non-blank line is the header. Fields are split on every comma:
// quoting is not supported, so a comma inside a name splits it.
func ParseCSV(text string) []Row {
	var (
		rows       []Row
		seenHeader bool
	)
	for i, raw := range lineBreak.Split(text, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !seenHeader {
			seenHeader = true
			continue
		}

		fields := strings.Split(line, ",")
		field := func(idx int) string {
			if idx < len(fields) {
				return strings.TrimSpace(fields[idx])
			}
			return ""
		}

		sortOrder, err := strconv.Atoi(field(colSortOrder))
		if err != nil {
			sortOrder = 0
		}
		rows = append(rows, Row{
			Line:      i + 1,
			L1Name:    field(colL1Name),
			L1Slug:    field(colL1Slug),
			L2Name:    field(colL2Name),
			L2Slug:    field(colL2Slug),
			L3Name:    field(colL3Name),
			L3Slug:    field(colL3Slug),
			Active:    !strings.EqualFold(field(colActive), "false"),
			SortOrder: sortOrder,
		})
	}
	return rows
}
