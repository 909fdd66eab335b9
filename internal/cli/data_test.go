package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cardspace/pkg/errors"
)

const csvHeader = "id,todoufuken,senkyoku,seitou,title,detail,age,tubohantei,tubonaiyou,tuboURL,uraganehantei,uraganenaiyou,uraganeURL\n"

func TestImportExport(t *testing.T) {
	e := newEnv(t)
	captureOutput(t)

	src := filepath.Join(e.dir, "other.json")
	writeFile(t, src, `{"X": {"title": "Only"}}`)
	if err := e.run(t, "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}

	// The backend now wins over the data file.
	dst := filepath.Join(e.dir, "out.json")
	if err := e.run(t, "export", "-o", dst); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["X"] == nil {
		t.Errorf("exported %s", data)
	}
}

func TestExportStdout(t *testing.T) {
	e := newEnv(t)
	buf := captureOutput(t)
	if err := e.run(t, "export"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), `"Parent"`) {
		t.Errorf("stdout export missing data:\n%s", buf)
	}
}

func TestImportErrors(t *testing.T) {
	e := newEnv(t)
	captureOutput(t)

	bad := filepath.Join(e.dir, "bad.json")
	writeFile(t, bad, `[1, 2]`)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"import", filepath.Join(e.dir, "nope.json")}, errors.ErrCodeNotFound},
		{"not an object", []string{"import", bad}, errors.ErrCodeMalformedInput},
		{"missing csv", []string{"import-csv", filepath.Join(e.dir, "nope.csv"), filepath.Join(e.dir, "o.json")}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.run(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("%v = %v, want %s", tt.args, err, tt.code)
			}
		})
	}
}

func TestImportCSV(t *testing.T) {
	e := newEnv(t)
	captureOutput(t)

	in := filepath.Join(e.dir, "in.csv")
	dst := filepath.Join(e.dir, "cards-out.json")
	writeFile(t, in, csvHeader+
		"c1,東京都,東京1区,自民,山田太郎,元職,52,あり,会合出席,https://a.example,,,\n"+
		"p1,,比例,公明,高橋,,60,,,,,,\n")

	if err := e.run(t, "import-csv", in, dst, "--load"); err != nil {
		t.Fatalf("import-csv: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"c1"`, `"p1"`, "選挙区", "比例代表"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("converted dataset missing %s", want)
		}
	}

	buf := captureOutput(t)
	if err := e.run(t, "show", "c1"); err != nil {
		t.Fatalf("show after --load: %v", err)
	}
	if !strings.Contains(buf.String(), "山田太郎") {
		t.Errorf("loaded dataset not served:\n%s", buf)
	}
}

func TestImportCSVInvalid(t *testing.T) {
	e := newEnv(t)
	buf := captureOutput(t)

	in := filepath.Join(e.dir, "in.csv")
	dst := filepath.Join(e.dir, "never.json")
	writeFile(t, in, csvHeader+
		",東京都,東京1区,自民,山田太郎,,,,,,,,\n"+
		"c2,東京都,東京1区,謎党,佐藤,,,,,,,,\n")

	err := e.run(t, "import-csv", in, dst)
	if !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Fatalf("import-csv = %v, want MALFORMED_INPUT", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("output written for invalid input")
	}
	if !strings.Contains(buf.String(), "row 2") || !strings.Contains(buf.String(), "row 3") {
		t.Errorf("problems not listed per row:\n%s", buf)
	}
}
