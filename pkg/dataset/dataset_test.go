package dataset

import (
	"bytes"
	stderrors "errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
)

const header = "id,todoufuken,senkyoku,seitou,title,detail,age,tubohantei,tubonaiyou,tuboURL,uraganehantei,uraganenaiyou,uraganeURL\n"

const valid = header +
	"c1,東京都,東京1区,自民,山田太郎,元職,52,あり,会合出席,https://a.example,,,\n" +
	"\n" +
	"c2,大阪府,大阪3区, 立憲 ,佐藤花子,,,,,,あり,不記載,https://b.example\n" +
	"c3,東京都,東京2区,無所属,鈴木一郎,,45,,,,,,\n" +
	"p1,,比例,公明,高橋,,60,,,,,,\n"

func quiet() *log.Logger { return log.New(io.Discard) }

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(valid))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Parse() = %d rows, want 4", len(rows))
	}
	if rows[1].Party != "立憲" || rows[1].Line != 4 {
		t.Errorf("row 2 = %+v", rows[1])
	}
	if rows[0].TuboURL != "https://a.example" || rows[0].Age != "52" {
		t.Errorf("row 1 = %+v", rows[0])
	}
}

func TestParseReportsEveryProblem(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "header",
			in:   "id,title\n",
			want: []string{"row 1: header mismatch"},
		},
		{
			name: "rows",
			in: header +
				"x1,東京都,東京1区,自民,A,,5x,,,,,,\n" +
				"x2,東京都,東京1区,自由党,B,,,,,,,,\n" +
				"x3,東京都\n",
			want: []string{
				"row 2: age is not an integer",
				"row 3: unknown party",
				"row 4: column count 2 != 13",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Fatalf("Parse() error = %v, want MALFORMED_INPUT", err)
			}
			var ve *ValidationError
			if !stderrors.As(err, &ve) {
				if tt.want != nil {
					t.Fatalf("error %v carries no problem list", err)
				}
				return
			}
			if len(ve.Problems) != len(tt.want) {
				t.Fatalf("problems = %v, want %d", ve.Problems, len(tt.want))
			}
			for i, w := range tt.want {
				if got := ve.Problems[i].String(); !strings.HasPrefix(got, w) {
					t.Errorf("problem %d = %q, want prefix %q", i, got, w)
				}
			}
		})
	}
}

func TestParseStripsBOM(t *testing.T) {
	if _, err := Parse(strings.NewReader("\ufeff" + header)); err != nil {
		t.Errorf("Parse() with BOM error: %v", err)
	}
}

func TestBuild(t *testing.T) {
	rows, err := Parse(strings.NewReader(valid))
	if err != nil {
		t.Fatal(err)
	}
	store, err := Build(rows, quiet())
	if err != nil {
		t.Fatal(err)
	}

	children := func(id string) []string {
		ids, _ := store.Children(id)
		return ids
	}
	if got := children(DistrictRoot); !reflect.DeepEqual(got, []string{"大阪府", "東京都"}) {
		t.Errorf("%s children = %v", DistrictRoot, got)
	}
	if got := children("東京都"); !reflect.DeepEqual(got, []string{"c1", "c3"}) {
		t.Errorf("東京都 children = %v", got)
	}
	if got := children(BlockRoot); !reflect.DeepEqual(got, []string{BlockList}) {
		t.Errorf("%s children = %v", BlockRoot, got)
	}
	if got := children(BlockList); !reflect.DeepEqual(got, []string{"p1"}) {
		t.Errorf("%s children = %v", BlockList, got)
	}

	c2, ok := store.Get("c2")
	if !ok {
		t.Fatal("c2 missing")
	}
	if c2.Kind != entity.KindText || c2.Color.Category != "#184589" || c2.Color.Free != entity.DefaultColor {
		t.Errorf("c2 = kind %q, colours %+v", c2.Kind, c2.Color)
	}
	if c2.UraganeVerdict != "あり" || c2.District != "大阪3区" {
		t.Errorf("c2 fields = %+v", c2)
	}
	tokyo, _ := store.Get("東京都")
	if tokyo.Kind != entity.KindFolder {
		t.Errorf("prefecture kind = %q, want folder", tokyo.Kind)
	}

	want := []string{DistrictRoot, BlockRoot, "c1", "c2", "c3", "p1", "大阪府", "東京都", BlockList}
	if got := store.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestBuildDuplicateID(t *testing.T) {
	rows := []Row{{Line: 2, ID: "a", Party: "自民"}, {Line: 3, ID: "a", Party: "自民"}}
	if _, err := Build(rows, quiet()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Build() error = %v", err)
	}
}

func TestConvert(t *testing.T) {
	var out bytes.Buffer
	if _, err := Convert(strings.NewReader(valid), &out, quiet()); err != nil {
		t.Fatal(err)
	}
	reloaded := entity.NewStore(entity.WithLogger(quiet()))
	if err := reloaded.Import(out.Bytes()); err != nil {
		t.Fatalf("output does not import: %v", err)
	}
	if reloaded.Len() != 9 {
		t.Errorf("reloaded %d entities, want 9", reloaded.Len())
	}

	out.Reset()
	if _, err := Convert(strings.NewReader(header+"z,,,,,,,,,,,,\n"), &out, quiet()); err == nil {
		t.Error("Convert() accepted an unknown party")
	}
	if out.Len() != 0 {
		t.Error("Convert() wrote output for an invalid file")
	}
}
