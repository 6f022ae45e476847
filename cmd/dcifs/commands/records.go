package commands

import (
	"strconv"

	"github.com/marmos91/dittocifs/internal/cli/output"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

// recordList renders a directory listing as a table.
type recordList []trans2.FileRecord

func (l recordList) Headers() []string {
	return []string{"NAME", "TYPE", "SIZE", "ATTRIBUTES", "MODIFIED"}
}

func (l recordList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for i := range l {
		r := &l[i]
		size := output.FormatSize(r.Size)
		if r.IsDir {
			size = "-"
		}
		rows = append(rows, []string{
			r.Name,
			recordType(r),
			size,
			r.Attrs.String(),
			output.FormatTime(r.WrittenTime()),
		})
	}
	return rows
}

func recordType(r *trans2.FileRecord) string {
	if r.IsDir {
		return "dir"
	}
	return "file"
}

// recordPairs renders a single record as key/value pairs.
func recordPairs(r *trans2.FileRecord) [][2]string {
	return [][2]string{
		{"Name", r.Name},
		{"Type", recordType(r)},
		{"Size", strconv.FormatUint(r.Size, 10)},
		{"Allocated", strconv.FormatUint(r.AllocSize, 10)},
		{"Attributes", r.Attrs.String()},
		{"Created", output.FormatTime(r.CreatedTime())},
		{"Accessed", output.FormatTime(r.AccessedTime())},
		{"Modified", output.FormatTime(r.WrittenTime())},
		{"Changed", output.FormatTime(r.ChangedTime())},
	}
}

// printRecord prints r as key/value pairs for table output, or encoded
// otherwise.
func printRecord(p *output.Printer, r *trans2.FileRecord) error {
	if p.Format() == output.FormatTable {
		return output.SimpleTable(p.Writer(), recordPairs(r))
	}
	return p.Print(r)
}
