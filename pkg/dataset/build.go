package dataset

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
)

// Root and block entity ids.
const (
	DistrictRoot = "選挙区"
	BlockRoot    = "比例区"
	BlockList    = "比例代表"
)

// Starting colours of a converted candidate card.
var candidateColors = entity.Colors{
	Theme:      "#ff0000",
	Map:        entity.DefaultColor,
	Alphabetic: entity.DefaultColor,
	Category:   "#184589",
}

// Build assembles the card hierarchy for rows. A duplicate id fails with
// INVALID_INPUT.
func Build(rows []Row, logger *log.Logger) (*entity.Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	store := entity.NewStore(entity.WithLogger(logger))

	districts := &entity.Entity{ID: DistrictRoot, Title: DistrictRoot, Children: &entity.ChildrenInfo{}}
	block := &entity.Entity{ID: BlockRoot, Title: BlockList, Children: &entity.ChildrenInfo{Cards: []string{BlockList}}}
	for _, e := range []*entity.Entity{districts, block} {
		if err := store.Put(e); err != nil {
			return nil, err
		}
	}

	byPrefecture := make(map[string][]string)
	var proportional []string
	for _, r := range rows {
		if store.Has(r.ID) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d: duplicate id %q", r.Line, r.ID)
		}
		if r.District == Proportional {
			proportional = append(proportional, r.ID)
		} else {
			byPrefecture[r.Prefecture] = append(byPrefecture[r.Prefecture], r.ID)
		}
		if err := store.Put(candidate(r)); err != nil {
			return nil, err
		}
	}

	prefectures := make([]string, 0, len(byPrefecture))
	for p := range byPrefecture {
		prefectures = append(prefectures, p)
	}
	sort.Strings(prefectures)
	districts.Children.Cards = prefectures
	if err := store.Put(districts); err != nil {
		return nil, err
	}
	for _, p := range prefectures {
		if store.Has(p) {
			logger.Warn("prefecture id collides with a candidate id, overwriting", "id", p)
		}
		pref := &entity.Entity{
			ID:         p,
			Title:      p,
			Prefecture: p,
			District:   p,
			Children:   &entity.ChildrenInfo{Cards: byPrefecture[p]},
		}
		if err := store.Put(pref); err != nil {
			return nil, err
		}
	}

	list := &entity.Entity{
		ID:       BlockList,
		Title:    BlockList,
		District: Proportional,
		Children: &entity.ChildrenInfo{Cards: proportional},
	}
	if err := store.Put(list); err != nil {
		return nil, err
	}
	return store, nil
}

func candidate(r Row) *entity.Entity {
	return &entity.Entity{
		ID:             r.ID,
		Title:          r.Title,
		Detail:         r.Detail,
		Kind:           entity.KindText,
		Color:          candidateColors,
		Party:          r.Party,
		Age:            entity.FlexString(r.Age),
		Prefecture:     r.Prefecture,
		District:       r.District,
		TuboVerdict:    r.TuboVerdict,
		TuboNote:       r.TuboNote,
		TuboURL:        r.TuboURL,
		UraganeVerdict: r.UraganeVerdict,
		UraganeNote:    r.UraganeNote,
		UraganeURL:     r.UraganeURL,
	}
}

// Convert parses a spreadsheet from r and writes the dataset JSON to w.
// Nothing is written when validation fails.
func Convert(r io.Reader, w io.Writer, logger *log.Logger) (*entity.Store, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}
	store, err := Build(rows, logger)
	if err != nil {
		return nil, err
	}
	data, err := store.Export()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write dataset")
	}
	return store, nil
}
