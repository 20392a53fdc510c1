package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"synthgen/internal/config"
)

// writeFile is a fixture helper: drops content into dir under name and
// returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	varsPath := writeFile(t, dir, "variables.csv", strings.Join([]string{
		"Name,Type,Format,Distribution,Param1,Param2,Range,Script,Role,Anchor,Min Offset,Max Offset,Event Prob",
		"sex,categorical,int,,,,,,,,,,",
		"bmi,continuous,float,normal,24,4.5,\"[12,60]\",,,,,,",
		"entry_date,date,date,,,,\"[2004-03-01,2008-06-30]\",,entry,,,,",
		"vaccine_date,date,date,,,,,,vaccination,entry_date,0,180,0.8",
		"age_group,categorical,int,,,,,cut([bmi]; [sex]),,,,,",
		",continuous,,,,,,,,,,,",
	}, "\n"))
	detailsPath := writeFile(t, dir, "details.csv", strings.Join([]string{
		"Variable,Code,Value,Proportion",
		"sex,1,male,0.49",
		"sex,2,female,0.51",
		"bmi,miss_na,-9,0.05",
		"bmi,contam_above,\"(60,120]\",0.01",
		"sex,9,unknown,not-a-number",
	}, "\n"))

	set, err := LoadCSV(varsPath, detailsPath, nil)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	// The empty-name row is skipped.
	if got := len(set.Variables); got != 5 {
		t.Fatalf("len(Variables)=%d; want 5", got)
	}

	bmi, ok := set.Variable("bmi")
	if !ok {
		t.Fatalf("bmi not loaded")
	}
	if bmi.Dist != "normal" || bmi.Param1 != 24 || bmi.Param2 != 4.5 {
		t.Fatalf("bmi distribution = %q %v %v; want normal 24 4.5", bmi.Dist, bmi.Param1, bmi.Param2)
	}
	if bmi.Range != "[12,60]" {
		t.Fatalf("bmi range = %q", bmi.Range)
	}
	if bmi.Derived != nil {
		t.Fatalf("bmi marked derived")
	}

	vax, ok := set.Variable("vaccine_date")
	if !ok {
		t.Fatalf("vaccine_date not loaded")
	}
	if vax.Role != "vaccination" || vax.Anchor != "entry_date" {
		t.Fatalf("vaccine_date role/anchor = %q/%q", vax.Role, vax.Anchor)
	}
	if vax.MinOffset != 0 || vax.MaxOffset != 180 || vax.EventProb != 0.8 {
		t.Fatalf("vaccine_date offsets/prob = %d %d %v", vax.MinOffset, vax.MaxOffset, vax.EventProb)
	}

	grp, ok := set.Variable("age_group")
	if !ok || grp.Derived == nil {
		t.Fatalf("age_group not loaded as derived")
	}
	if got := grp.Derived.DependsOn; len(got) != 2 || got[0] != "bmi" || got[1] != "sex" {
		t.Fatalf("age_group deps = %v; want [bmi sex]", got)
	}

	details := set.DetailsFor("sex")
	if len(details) != 3 {
		t.Fatalf("sex details = %d rows; want 3", len(details))
	}
	if !details[0].HasProp || details[0].Proportion != 0.49 {
		t.Fatalf("sex code 1 proportion = %v (has %v)", details[0].Proportion, details[0].HasProp)
	}
	// A bad proportion cell is kept as an unset proportion, not a load failure.
	if details[2].HasProp {
		t.Fatalf("bad proportion cell should read as unset")
	}

	contam := set.DetailsFor("bmi")
	if len(contam) != 2 || contam[1].Code != "contam_above" || contam[1].Value != "(60,120]" {
		t.Fatalf("bmi details = %+v", contam)
	}
}

func TestLoadCSVOptions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// Semicolon delimiter plus a header that only maps through header_map.
	varsPath := writeFile(t, dir, "variables.csv", strings.Join([]string{
		"Variable label;Type",
		"sex;categorical",
	}, "\n"))

	opts := config.Options{
		"comma":      ";",
		"header_map": map[string]any{"Variable label": "name"},
	}
	set, err := LoadCSV(varsPath, "", opts)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if _, ok := set.Variable("sex"); !ok {
		t.Fatalf("sex not loaded through header_map")
	}
	if len(set.Details) != 0 {
		t.Fatalf("empty details path should load zero detail rows")
	}
}

func TestLoadCSVHeaderBOM(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// Excel-style export: UTF-8 BOM ahead of a header that must still match
	// its header_map entry.
	varsPath := writeFile(t, dir, "variables.csv", strings.Join([]string{
		"\uFEFFVariable label,Type",
		"sex,categorical",
	}, "\n"))

	opts := config.Options{
		"header_map": map[string]any{"Variable label": "name"},
	}
	set, err := LoadCSV(varsPath, "", opts)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if _, ok := set.Variable("sex"); !ok {
		t.Fatalf("BOM header defeated the name column mapping")
	}
}

func TestLoadCSVRaggedRows(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// One short row and one long row; both load, neither fails.
	varsPath := writeFile(t, dir, "variables.csv", strings.Join([]string{
		"name,type,format",
		"sex,categorical",
		"bmi,continuous,float,stray-cell",
	}, "\n"))

	set, err := LoadCSV(varsPath, "", nil)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(set.Variables) != 2 {
		t.Fatalf("len(Variables)=%d; want 2", len(set.Variables))
	}
	if sex, _ := set.Variable("sex"); sex.Repr != "" {
		t.Fatalf("short row format = %q; want empty", sex.Repr)
	}
	if bmi, _ := set.Variable("bmi"); bmi.Repr != "float" {
		t.Fatalf("long row format = %q; want float", bmi.Repr)
	}
}

func TestLoadCSVMissingNameColumn(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	varsPath := writeFile(t, dir, "variables.csv", "type,format\ncategorical,int\n")

	if _, err := LoadCSV(varsPath, "", nil); err == nil {
		t.Fatalf("expected error for missing name column")
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "meta.json", `{
		"variables": [
			{"name": "sex", "type": "categorical", "format": "int"},
			{"name": "score", "type": "continuous", "distribution": "exponential", "param1": 0.2, "range": "[0,inf)"},
			{"name": "ratio", "type": "continuous", "script": "[score] / 100"}
		],
		"details": [
			{"variable": "sex", "code": "1", "value": "male", "proportion": 0.5},
			{"variable": "sex", "code": "miss_98"}
		]
	}`)

	set, err := Load(config.Metadata{Kind: "json", Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Variables) != 3 || len(set.Details) != 2 {
		t.Fatalf("loaded %d vars, %d details", len(set.Variables), len(set.Details))
	}
	score, _ := set.Variable("score")
	if score == nil || score.Dist != "exponential" || score.Param1 != 0.2 {
		t.Fatalf("score = %+v", score)
	}
	ratio, _ := set.Variable("ratio")
	if ratio == nil || ratio.Derived == nil || len(ratio.Derived.DependsOn) != 1 {
		t.Fatalf("ratio = %+v", ratio)
	}
	// Absent event_prob defaults to 1: the role's date exists on every row.
	sex, _ := set.Variable("sex")
	if sex.EventProb != 1 {
		t.Fatalf("default EventProb = %v; want 1", sex.EventProb)
	}
	// A JSON row without the proportion key reads as an unset proportion,
	// which is what makes uniform defaulting possible downstream.
	if set.Details[1].HasProp {
		t.Fatalf("absent proportion key should read as unset")
	}
}

func TestLoadUnknownKind(t *testing.T) {
	t.Parallel()
	if _, err := Load(config.Metadata{Kind: "yaml"}); err == nil {
		t.Fatalf("expected error for unknown metadata kind")
	}
}

func TestWeightRows(t *testing.T) {
	t.Parallel()
	set := NewSet(
		[]VariableSpec{{Name: "sex", Type: "categorical"}},
		[]DetailRow{
			{Variable: "sex", Code: "1", Value: "male", Proportion: 0.5, HasProp: true},
			{Variable: "other", Code: "x"},
		},
	)
	rows := set.WeightRows("sex")
	if len(rows) != 1 || rows[0].Code != "1" || !rows[0].HasProp {
		t.Fatalf("WeightRows = %+v", rows)
	}
}
