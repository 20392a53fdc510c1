package metadata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"synthgen/internal/config"
	"synthgen/internal/notation"
)

// Load reads the metadata tables named by cfg and resolves each variable's
// derivation variant. Scope qualification is left alone here; callers apply
// ForScope afterwards.
func Load(cfg config.Metadata) (*Set, error) {
	switch cfg.Kind {
	case "csv":
		return LoadCSV(cfg.Variables, cfg.Details, cfg.Options)
	case "json":
		return LoadJSON(cfg.Path)
	}
	return nil, fmt.Errorf("metadata: unknown kind %q", cfg.Kind)
}

// rawVariable is the wire shape of one variables row, shared by the JSON
// document and the CSV header mapping.
type rawVariable struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Format    string   `json:"format"`
	Dist      string   `json:"distribution"`
	Param1    float64  `json:"param1"`
	Param2    float64  `json:"param2"`
	Range     string   `json:"range"`
	Script    string   `json:"script"`
	Role      string   `json:"role"`
	Anchor    string   `json:"anchor"`
	MinOffset int      `json:"min_offset"`
	MaxOffset int      `json:"max_offset"`
	EventProb *float64 `json:"event_prob"` // absent means the date always exists
}

type rawDetail struct {
	Variable   string   `json:"variable"`
	Code       string   `json:"code"`
	Value      string   `json:"value"`
	Proportion *float64 `json:"proportion"`
}

type document struct {
	Variables []rawVariable `json:"variables"`
	Details   []rawDetail   `json:"details"`
}

// LoadJSON reads one document holding both arrays.
func LoadJSON(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: open %s: %w", path, err)
	}
	defer f.Close()

	var doc document
	dec := json.NewDecoder(f)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("metadata: decode %s: %w", path, err)
	}

	vars := make([]VariableSpec, 0, len(doc.Variables))
	for _, rv := range doc.Variables {
		vars = append(vars, fromRaw(rv))
	}
	details := make([]DetailRow, 0, len(doc.Details))
	for _, rd := range doc.Details {
		d := DetailRow{Variable: rd.Variable, Code: rd.Code, Value: rd.Value}
		if rd.Proportion != nil {
			d.Proportion, d.HasProp = *rd.Proportion, true
		}
		details = append(details, d)
	}
	return NewSet(vars, details), nil
}

// LoadCSV reads the two tables from separate files. detailsPath may be empty;
// every variable then resolves against its default population. Options keys:
//
//	comma       single-character field delimiter (default ",")
//	header_map  object remapping source headers to canonical names before
//	            normalization, e.g. {"Variable label": "name"}
func LoadCSV(variablesPath, detailsPath string, opts config.Options) (*Set, error) {
	comma := opts.Rune("comma", ',')
	headerMap := opts.StringMap("header_map")

	vars, err := readVariablesCSV(variablesPath, comma, headerMap)
	if err != nil {
		return nil, err
	}
	var details []DetailRow
	if strings.TrimSpace(detailsPath) != "" {
		details, err = readDetailsCSV(detailsPath, comma, headerMap)
		if err != nil {
			return nil, err
		}
	}
	return NewSet(vars, details), nil
}

// header resolves one raw header cell to its canonical column name.
func header(cell string, headerMap map[string]string) string {
	if mapped, ok := headerMap[cell]; ok {
		cell = mapped
	}
	return NormalizeHeader(cell)
}

func readVariablesCSV(path string, comma rune, headerMap map[string]string) ([]VariableSpec, error) {
	rows, cols, err := readTable(path, comma, headerMap)
	if err != nil {
		return nil, err
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("metadata: %s has no name column (headers: %v)", path, colNames(cols))
	}

	out := make([]VariableSpec, 0, len(rows))
	for i, row := range rows {
		cell := func(name string) string {
			if j, ok := cols[name]; ok && j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}
		rv := rawVariable{
			Name:   cell("name"),
			Type:   cell("type"),
			Format: cell("format"),
			Dist:   cell("distribution"),
			Range:  cell("range"),
			Script: cell("script"),
			Role:   cell("role"),
			Anchor: cell("anchor"),
		}
		if rv.Name == "" {
			log.Printf("metadata: %s row %d: empty name, skipped", path, i+2)
			continue
		}
		rv.Param1 = parseFloatCell(path, i, "param1", cell("param1"))
		rv.Param2 = parseFloatCell(path, i, "param2", cell("param2"))
		rv.MinOffset = int(parseFloatCell(path, i, "min_offset", cell("min_offset")))
		rv.MaxOffset = int(parseFloatCell(path, i, "max_offset", cell("max_offset")))
		if p := cell("event_prob"); p != "" {
			ep := parseFloatCell(path, i, "event_prob", p)
			rv.EventProb = &ep
		}
		out = append(out, fromRaw(rv))
	}
	return out, nil
}

func readDetailsCSV(path string, comma rune, headerMap map[string]string) ([]DetailRow, error) {
	rows, cols, err := readTable(path, comma, headerMap)
	if err != nil {
		return nil, err
	}
	for _, want := range []string{"variable", "code"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("metadata: %s has no %s column (headers: %v)", path, want, colNames(cols))
		}
	}

	out := make([]DetailRow, 0, len(rows))
	for i, row := range rows {
		cell := func(name string) string {
			if j, ok := cols[name]; ok && j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}
		d := DetailRow{
			Variable: cell("variable"),
			Code:     cell("code"),
			Value:    cell("value"),
		}
		if d.Variable == "" || d.Code == "" {
			log.Printf("metadata: %s row %d: missing variable or code, skipped", path, i+2)
			continue
		}
		if p := cell("proportion"); p != "" {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				log.Printf("metadata: %s row %d: bad proportion %q, treated as unset", path, i+2, p)
			} else {
				d.Proportion, d.HasProp = v, true
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// readTable reads one CSV file into data rows plus a canonical-header index.
// Short rows are kept (missing cells read as empty); rows longer than the
// header are truncated with a log line rather than failing the load.
func readTable(path string, comma rune, headerMap map[string]string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("metadata: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("metadata: read header of %s: %w", path, err)
	}
	stripHeaderBOM(head)
	cols := map[string]int{}
	for j, cell := range head {
		name := header(cell, headerMap)
		if name == "" {
			continue
		}
		if _, dup := cols[name]; dup {
			log.Printf("metadata: %s: duplicate header %q, first column wins", path, name)
			continue
		}
		cols[name] = j
	}

	var rows [][]string
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("metadata: read %s line %d: %w", path, line, err)
		}
		if len(row) > len(head) {
			log.Printf("metadata: %s line %d: %d fields, header has %d; extras dropped", path, line, len(row), len(head))
			row = row[:len(head)]
		}
		rows = append(rows, row)
	}
	return rows, cols, nil
}

// stripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
// Excel CSV exports regularly carry one, and it would otherwise defeat
// header_map matching on the first column.
func stripHeaderBOM(head []string) {
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\uFEFF")
	}
}

func parseFloatCell(path string, row int, col, cell string) float64 {
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		log.Printf("metadata: %s row %d: bad %s %q, treated as 0", path, row+2, col, cell)
		return 0
	}
	return v
}

func colNames(cols map[string]int) []string {
	out := make([]string, 0, len(cols))
	for name := range cols {
		out = append(out, name)
	}
	return out
}

// fromRaw resolves the derivation variant: a non-empty script makes the
// variable derived, with its dependencies read from the script's bracketed
// references. This happens once at load; nothing downstream sniffs prefixes.
func fromRaw(rv rawVariable) VariableSpec {
	v := VariableSpec{
		Name:      strings.TrimSpace(rv.Name),
		Type:      strings.TrimSpace(rv.Type),
		Repr:      strings.TrimSpace(rv.Format),
		Dist:      strings.ToLower(strings.TrimSpace(rv.Dist)),
		Param1:    rv.Param1,
		Param2:    rv.Param2,
		Range:     strings.TrimSpace(rv.Range),
		Role:      strings.ToLower(strings.TrimSpace(rv.Role)),
		Anchor:    strings.TrimSpace(rv.Anchor),
		MinOffset: rv.MinOffset,
		MaxOffset: rv.MaxOffset,
		EventProb: 1,
	}
	if rv.EventProb != nil {
		v.EventProb = *rv.EventProb
	}
	if script := strings.TrimSpace(rv.Script); script != "" {
		v.Derived = &Derivation{Script: script, DependsOn: notation.RefNames(script)}
	}
	return v
}
