package entity

import (
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardspace/pkg/errors"
)

const sampleDataset = `{
    "選挙区": {"title": "選挙区", "childrenInfo": {"cards": ["東京都", "鳥取・島根県"]}},
    "東京都": {"title": "東京都", "todoufuken": "東京都", "childrenInfo": {"cards": ["c1", "c2"]}},
    "鳥取・島根県": {"title": "鳥取・島根県", "childrenInfo": {"cards": ["c3"]}},
    "c1": {
        "title": "山田太郎", "detail": "", "type": "text", "seitou": "自民", "age": 52,
        "position": {"map": {"x": 1, "y": 2, "z": 3}},
        "color": {"politicalParty": "#184589", "theme": "#ff0000"},
        "childrenInfo": {"camera": null, "cards": []},
        "tuboURLarray": " https://a.example , ,https://b.example",
        "timestamp": 1700000000000
    },
    "c2": {"title": "佐藤花子", "type": "bogus"},
    "c3": {"title": "鈴木一郎", "img": "photo.png", "video": "clip.mp4",
           "childrenInfo": {"camera": {"x": 0, "y": 0, "z": 900}, "cameraTarget": {"x": 1, "y": 1, "z": 1},
                            "cards": {"c1": {"position": {"x": 10, "y": 20, "z": 30}, "color": "#ffffff"}}}}
}`

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	s := NewStore(opts...)
	if err := s.Import([]byte(sampleDataset)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return s
}

func TestImportPreservesOrder(t *testing.T) {
	s := newTestStore(t)

	want := []string{"選挙区", "東京都", "鳥取・島根県", "c1", "c2", "c3"}
	if got := s.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestImportNormalizes(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		id   string
		kind ContentKind
	}{
		{"選挙区", KindFolder},
		{"c1", KindText},
		{"c2", KindText},
		{"c3", KindFolder},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			e, ok := s.Get(tt.id)
			if !ok {
				t.Fatalf("Get(%q) not found", tt.id)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.kind)
			}
			if e.ID != tt.id {
				t.Errorf("ID = %v, want %v", e.ID, tt.id)
			}
			for _, m := range AllModes {
				if e.Color.Get(m) == "" {
					t.Errorf("color slot %s is empty", m)
				}
			}
		})
	}

	c1, _ := s.Get("c1")
	if c1.Color.Map != DefaultColor {
		t.Errorf("c1 map colour = %v, want %v", c1.Color.Map, DefaultColor)
	}
	if c1.Color.Category != "#184589" {
		t.Errorf("c1 category colour = %v, want #184589", c1.Color.Category)
	}
	if got := c1.Position.Get(ModeMap); got != (Vec3{1, 2, 3}) {
		t.Errorf("c1 map position = %v, want {1 2 3}", got)
	}
	if c1.Age != "52" {
		t.Errorf("c1 age = %q, want 52", c1.Age)
	}
	if want := (URLList{"https://a.example", "https://b.example"}); !reflect.DeepEqual(c1.TuboURLs, want) {
		t.Errorf("c1 urls = %v, want %v", c1.TuboURLs, want)
	}
	if c1.Children == nil || c1.Children.Cards != nil {
		t.Errorf("c1 children = %+v, want empty non-nil info", c1.Children)
	}
	if got := c1.CreatedAt(); !got.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("CreatedAt() = %v", got)
	}

	c3, _ := s.Get("c3")
	ov, ok := c3.Children.Overrides["c1"]
	if !ok || ov.Position == nil || *ov.Position != (Vec3{10, 20, 30}) || ov.Color != "#ffffff" {
		t.Errorf("c3 override = %+v", ov)
	}
}

func TestImportMalformedLeavesStoreUntouched(t *testing.T) {
	s := newTestStore(t)
	before := s.IDs()

	inputs := []string{
		`{"a": `,
		`[1, 2, 3]`,
		`{"a": {"childrenInfo": {"cards": 5}}}`,
		`{"a": {"title": 12}}`,
	}
	for _, in := range inputs {
		err := s.Import([]byte(in))
		if err == nil {
			t.Errorf("Import(%q) error = nil, want error", in)
			continue
		}
		if !errors.Is(err, errors.ErrCodeMalformedInput) {
			t.Errorf("Import(%q) code = %v, want %v", in, errors.GetCode(err), errors.ErrCodeMalformedInput)
		}
	}

	if got := s.IDs(); !reflect.DeepEqual(got, before) {
		t.Errorf("IDs() after failed imports = %v, want %v", got, before)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.Contains(data, []byte("\n    \"")) {
		t.Error("Export() should indent with four spaces")
	}

	again := NewStore(WithLogger(log.New(io.Discard)))
	if err := again.Import(data); err != nil {
		t.Fatalf("re-Import() error = %v", err)
	}

	if !reflect.DeepEqual(s.IDs(), again.IDs()) {
		t.Fatalf("ids differ: %v vs %v", s.IDs(), again.IDs())
	}
	for _, id := range s.IDs() {
		a, _ := s.Get(id)
		b, _ := again.Get(id)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("entity %q differs after round trip:\n got  %+v\n want %+v", id, b, a)
		}
	}
}

func TestDelete(t *testing.T) {
	persisted := 0
	s := newTestStore(t, WithPersist(func() { persisted++ }))

	if !s.Delete("c1") {
		t.Fatal("Delete(c1) = false, want true")
	}
	if _, ok := s.Get("c1"); ok {
		t.Error("Get(c1) after delete should report not found")
	}

	tokyo, _ := s.Get("東京都")
	if want := []string{"c2"}; !reflect.DeepEqual(tokyo.Children.Cards, want) {
		t.Errorf("parent cards = %v, want %v", tokyo.Children.Cards, want)
	}
	c3, _ := s.Get("c3")
	if _, ok := c3.Children.Overrides["c1"]; ok {
		t.Error("override for deleted child should be removed")
	}

	if s.Delete("c1") {
		t.Error("second Delete(c1) = true, want false")
	}

	s.Persist()
	if persisted != 1 {
		t.Errorf("persist hook calls = %d, want 1", persisted)
	}
}

func TestCreate(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(WithLogger(log.New(io.Discard)), WithClock(func() time.Time { return fixed }))

	e := s.Create("タイトル", "本文")
	if len(e.ID) != 36 {
		t.Errorf("ID = %q, want a uuid", e.ID)
	}
	if e.Timestamp != fixed.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", e.Timestamp, fixed.UnixMilli())
	}
	if e.Color.Theme != DefaultColor {
		t.Errorf("theme colour = %q, want %q", e.Color.Theme, DefaultColor)
	}
	if got, _ := s.Get(e.ID); got != e {
		t.Error("Get() should return the created entity")
	}
	if err := s.Put(&Entity{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Put(no id) error = %v, want INVALID_INPUT", err)
	}
}

func TestChildren(t *testing.T) {
	s := newTestStore(t)

	if ids, ok := s.Children("東京都"); !ok || !reflect.DeepEqual(ids, []string{"c1", "c2"}) {
		t.Errorf("Children(東京都) = %v, %v", ids, ok)
	}
	if _, ok := s.Children("c3"); ok {
		t.Error("Children(c3) has only overrides and should report no list")
	}
	if _, ok := s.Children("missing"); ok {
		t.Error("Children(missing) should report not found")
	}
	held, _ := s.Children("東京都")
	s.Delete("c1")
	if !reflect.DeepEqual(held, []string{"c1", "c2"}) {
		t.Errorf("list returned before Delete changed to %v", held)
	}
	if ids, _ := s.Children("東京都"); !reflect.DeepEqual(ids, []string{"c2"}) {
		t.Errorf("Children(東京都) after delete = %v", ids)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"map", ModeMap, false},
		{"aiueo", ModeAlphabetic, false},
		{"alphabetic", ModeAlphabetic, false},
		{"politicalParty", ModeCategory, false},
		{"Category", ModeCategory, false},
		{"free", ModeFree, false},
		{"calendar", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if ModeFree.TopLevel() {
		t.Error("free should not be a top-level mode")
	}
	for _, m := range TopLevelModes {
		if !m.TopLevel() {
			t.Errorf("%s should be top-level", m)
		}
	}
}

func TestContentKindPresentation(t *testing.T) {
	tests := []struct {
		kind               ContentKind
		text, image, video bool
	}{
		{KindText, true, false, false},
		{KindImage, false, true, false},
		{KindImageText, true, true, false},
		{KindVideo, false, false, true},
		{KindVideoText, true, false, true},
		{KindFolder, true, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.kind.ShowsText() != tt.text || tt.kind.ShowsImage() != tt.image || tt.kind.ShowsVideo() != tt.video {
				t.Errorf("%s presentation mismatch", tt.kind)
			}
		})
	}
	if _, ok := ParseContentKind("gif"); ok {
		t.Error("ParseContentKind(gif) should fail")
	}
}

func TestURLListFromArray(t *testing.T) {
	var l URLList
	if err := l.UnmarshalJSON([]byte(`[" a ", null, "", "b"]`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if want := (URLList{"a", "b"}); !reflect.DeepEqual(l, want) {
		t.Errorf("URLList = %v, want %v", l, want)
	}
	if err := l.UnmarshalJSON([]byte(`""`)); err != nil || l != nil {
		t.Errorf("empty string should decode to nil, got %v (%v)", l, err)
	}
	if !strings.HasPrefix(DefaultColor, "#") {
		t.Error("DefaultColor should be a hex colour")
	}
}
