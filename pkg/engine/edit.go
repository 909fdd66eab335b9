package engine

import (
	"strings"

	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
)

// =============================================================================
// Detail panel
// =============================================================================

// MaxLinks is the number of link slots in the detail panel.
const MaxLinks = 10

// Panel is the detail panel state.
type Panel struct {
	Open  bool     `json:"open"`
	ID    string   `json:"id,omitempty"`
	Text  string   `json:"text,omitempty"`
	Links []string `json:"links,omitempty"`
}

// Panel returns the detail panel state.
func (e *Engine) Panel() Panel { return e.panel }

func (e *Engine) openPanel(ent *entity.Entity) {
	e.panel = Panel{Open: true, ID: ent.ID, Text: DetailText(ent), Links: DetailLinks(ent)}
}

// DetailLinks returns exactly MaxLinks reference URLs for ent: the issue
// URL list, then the first and second issue URLs. Items are trimmed,
// deduplicated, and empty slots are padded with "".
func DetailLinks(ent *entity.Entity) []string {
	out := make([]string, 0, MaxLinks)
	seen := make(map[string]bool)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] || len(out) == MaxLinks {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	if ent != nil {
		for _, u := range ent.TuboURLs {
			add(u)
		}
		add(ent.TuboURL)
		add(ent.UraganeURL)
	}
	for len(out) < MaxLinks {
		out = append(out, "")
	}
	return out
}

// DetailText returns the detail panel body for ent, one line per non-empty
// field, joined with "<br />".
func DetailText(ent *entity.Entity) string {
	if ent == nil {
		return ""
	}
	var lines []string
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, label+"："+value)
		}
	}
	note := func(value string) {
		if value != "" {
			lines = append(lines, value)
		}
	}
	field("氏名", ent.Title)
	field("政党", ent.Party)
	field("年齢", string(ent.Age))
	field("都道府県", ent.Prefecture)
	field("選挙区", ent.District)
	field("詳細", ent.Detail)
	field("壺判定", ent.TuboVerdict)
	note(ent.TuboNote)
	field("裏金判定", ent.UraganeVerdict)
	note(ent.UraganeNote)
	return strings.Join(lines, "<br />")
}

// ClosePanel hides the detail panel.
func (e *Engine) ClosePanel() { e.panel.Open = false }

// =============================================================================
// Mutations
// =============================================================================

// Edit is what the detail editor hands back on confirm.
type Edit struct {
	Color string             `json:"color"`
	Image string             `json:"img"`
	Video string             `json:"video"`
	Kind  entity.ContentKind `json:"type"`
}

// ApplyEdit writes an editor result into the store. The colour goes into
// the active top-level mode slot, or into the drilled parent's override
// record for id; an empty colour leaves colours alone. A malformed colour
// or content kind fails before anything changes.
func (e *Engine) ApplyEdit(id string, ed Edit) error {
	ent, ok := e.store.Get(id)
	if !ok {
		return errors.New(errors.ErrCodeMissingEntity, "entity %q not found", id)
	}
	if ed.Color != "" {
		if _, err := color.ParseHex(ed.Color); err != nil {
			return err
		}
	}
	if ed.Kind != "" {
		if _, ok := entity.ParseContentKind(string(ed.Kind)); !ok {
			return errors.New(errors.ErrCodeMalformedInput, "unknown content kind %q", ed.Kind)
		}
	}

	if ed.Color != "" {
		if m, top := e.ctx.TopLevel(); top {
			ent.Color.Set(m, ed.Color)
		} else if parent, ok := e.store.Get(e.ctx.ActiveMode); ok {
			c := parent.EnsureChildren()
			if c.Overrides == nil {
				c.Overrides = make(map[string]entity.Override)
			}
			ov := c.Overrides[id]
			ov.Color = ed.Color
			c.Overrides[id] = ov
		} else {
			e.logger.Warn("edit: parent not found", "parent", e.ctx.ActiveMode)
		}
		e.colorCard(id, ed.Color, e.cfg.Duration)
	}
	ent.Image = ed.Image
	ent.Video = ed.Video
	if ed.Kind != "" {
		ent.Kind = ed.Kind
	}
	e.store.Persist()
	return nil
}

// Create adds a new text card and places it hidden at a random point.
func (e *Engine) Create(title, detail string) *entity.Entity {
	ent := e.store.Create(title, detail)
	e.set.Ensure(ent.ID)
	e.arrange()
	e.store.Persist()
	return ent
}

// Delete removes id after confirmation: from the store, from every parent,
// and from the scene. The view then starts over from the hidden baseline of
// the current top-level mode. It reports whether the entity was deleted.
func (e *Engine) Delete(id string) bool {
	if e.confirm != nil && !e.confirm(id) {
		e.logger.Debug("delete cancelled", "id", id)
		return false
	}
	if !e.store.Delete(id) {
		return false
	}
	e.sched.Cancel(id)
	e.set.Remove(id)
	e.lod.Forget(id)

	e.cam.ControlsEnabled = true
	e.Reload("")
	e.store.Persist()
	return true
}
