package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/wannadb/docbase-tasks/internal/docbase"
)

const (
	TableFormat = "table"
	JsonFormat  = "json"
	YamlFormat  = "yaml"
	XlsxFormat  = "xlsx"

	nuggetsSheet    = "Nuggets"
	attributesSheet = "Attributes"
)

var LegalOutputTypes = []string{TableFormat, JsonFormat, YamlFormat, XlsxFormat}

// Printer renders document bases in one of LegalOutputTypes. The xlsx
// format is written to Path, all others to the output stream.
type Printer struct {
	lock   sync.Mutex
	out    io.Writer
	format string
	path   string
}

func NewPrinter(out io.Writer, format, path string) *Printer {
	return &Printer{out: out, format: format, path: path}
}

func (p *Printer) Display(base *docbase.DocumentBase) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if err := p.Print(base); err != nil {
		zap.S().Named("printer").Errorw("failed to display document base", "base", base.Name(), "format", p.format, "error", err)
	}
}

func (p *Printer) Print(base *docbase.DocumentBase) error {
	switch p.format {
	case JsonFormat:
		marshalled, err := json.MarshalIndent(base, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling document base: %w", err)
		}
		_, err = fmt.Fprintf(p.out, "%s\n", marshalled)
		return err
	case YamlFormat:
		marshalled, err := yaml.Marshal(base)
		if err != nil {
			return fmt.Errorf("marshalling document base: %w", err)
		}
		_, err = p.out.Write(marshalled)
		return err
	case XlsxFormat:
		if err := WriteWorkbook(base, p.path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(p.out, "%s written to %s\n", base.Name(), p.path)
		return err
	default:
		return printTable(p.out, base)
	}
}

func printTable(out io.Writer, base *docbase.DocumentBase) error {
	fmt.Fprintf(out, "Docbase %s\n", base.Name())
	fmt.Fprintf(out, "Attributes: %s\n\n", strings.Join(base.Attributes(), ", "))

	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "DOCUMENT\tSTART\tEND\tTEXT")
	for _, doc := range base.Documents() {
		for _, n := range base.NuggetsFor(doc) {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", n.DocumentName, n.StartChar, n.EndChar, strconv.Quote(n.Text()))
		}
	}
	return w.Flush()
}

// NewWorkbook lays a document base out as a workbook with one sheet of
// nuggets and one of attributes.
func NewWorkbook(base *docbase.DocumentBase) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", nuggetsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(attributesSheet); err != nil {
		f.Close()
		return nil, err
	}

	rows := [][]any{{"Document", "Start", "End", "Text"}}
	for _, n := range base.Nuggets() {
		rows = append(rows, []any{n.DocumentName, n.StartChar, n.EndChar, n.Text()})
	}
	if err := setRows(f, nuggetsSheet, rows); err != nil {
		f.Close()
		return nil, err
	}

	attrRows := [][]any{{"Attribute"}}
	for _, a := range base.Attributes() {
		attrRows = append(attrRows, []any{a})
	}
	if err := setRows(f, attributesSheet, attrRows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func WriteWorkbook(base *docbase.DocumentBase, path string) error {
	if path == "" {
		return fmt.Errorf("no output file for %s format", XlsxFormat)
	}
	f, err := NewWorkbook(base)
	if err != nil {
		return fmt.Errorf("building workbook: %w", err)
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
