// Package dataset converts the curated candidate spreadsheet into the card
// dataset.
//
// The spreadsheet is a UTF-8 CSV file whose header must be exactly [Header].
// [Parse] validates every row and collects all problems before failing, so
// one run reports everything that needs fixing. [Build] turns valid rows
// into a store with the district hierarchy the engine navigates:
//
//	選挙区          children: every prefecture, sorted
//	  <prefecture>  children: its candidates, in file order
//	比例区          children: [比例代表]
//	  比例代表      children: candidates whose district is 比例
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// Header is the required column order.
var Header = []string{
	"id", "todoufuken", "senkyoku", "seitou", "title", "detail", "age",
	"tubohantei", "tubonaiyou", "tuboURL", "uraganehantei", "uraganenaiyou", "uraganeURL",
}

// Parties is the set of accepted party labels.
var Parties = []string{
	"自民", "公明", "立憲", "維新", "共産", "国民", "れいわ", "社民", "NHK", "参政", "無所属", "諸派",
}

// Proportional is the district value of proportional-list candidates.
const Proportional = "比例"

// Row is one validated spreadsheet row. Every field is trimmed.
type Row struct {
	Line           int
	ID             string
	Prefecture     string
	District       string
	Party          string
	Title          string
	Detail         string
	Age            string
	TuboVerdict    string
	TuboNote       string
	TuboURL        string
	UraganeVerdict string
	UraganeNote    string
	UraganeURL     string
}

// Problem is a validation failure on one line.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string {
	if p.Line == 0 {
		return p.Message
	}
	return fmt.Sprintf("row %d: %s", p.Line, p.Message)
}

// ValidationError lists every problem found in a file.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("%d validation problem(s):\n  %s", len(e.Problems), strings.Join(lines, "\n  "))
}

// Parse reads and validates a spreadsheet. Blank lines are skipped. Any
// problem fails the whole file with a MALFORMED_INPUT error wrapping a
// *ValidationError.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeMalformedInput, "csv file is empty")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read csv header")
	}

	var problems []Problem
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !slices.Equal(header, Header) {
		problems = append(problems, Problem{Line: 1, Message: fmt.Sprintf(
			"header mismatch: expected %s, found %s", strings.Join(Header, ","), strings.Join(header, ","))})
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read csv")
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		row, msgs := validate(rec, line)
		for _, m := range msgs {
			problems = append(problems, Problem{Line: line, Message: m})
		}
		if len(msgs) == 0 {
			rows = append(rows, row)
		}
	}

	if len(problems) > 0 {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, &ValidationError{Problems: problems}, "invalid candidate csv")
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func validate(rec []string, line int) (Row, []string) {
	if len(rec) != len(Header) {
		return Row{}, []string{fmt.Sprintf("column count %d != %d", len(rec), len(Header))}
	}
	f := make([]string, len(rec))
	for i, c := range rec {
		f[i] = strings.TrimSpace(c)
	}
	row := Row{
		Line:           line,
		ID:             f[0],
		Prefecture:     f[1],
		District:       f[2],
		Party:          f[3],
		Title:          f[4],
		Detail:         f[5],
		Age:            f[6],
		TuboVerdict:    f[7],
		TuboNote:       f[8],
		TuboURL:        f[9],
		UraganeVerdict: f[10],
		UraganeNote:    f[11],
		UraganeURL:     f[12],
	}

	var msgs []string
	if row.ID == "" {
		msgs = append(msgs, "id is empty")
	}
	if row.Age != "" {
		if _, err := strconv.ParseUint(row.Age, 10, 32); err != nil {
			msgs = append(msgs, "age is not an integer")
		}
	}
	if !slices.Contains(Parties, row.Party) {
		msgs = append(msgs, fmt.Sprintf("unknown party %q", row.Party))
	}
	return row, msgs
}
