package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/scene"
)

// =============================================================================
// Entities
// =============================================================================

type entitySummary struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Kind     entity.ContentKind `json:"type"`
	Children int                `json:"children"`
}

type entityView struct {
	ID string `json:"id"`
	*entity.Entity
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	var out []entitySummary
	ok := s.do(w, r, func(e *engine.Engine) error {
		all := e.Store().All()
		out = make([]entitySummary, len(all))
		for i, ent := range all {
			out[i] = entitySummary{ID: ent.ID, Title: ent.Title, Kind: ent.Kind, Children: len(ent.ChildIDs())}
		}
		return nil
	})
	if ok {
		writeJSON(w, http.StatusOK, out)
	}
}

func lookup(e *engine.Engine, id string) (*entity.Entity, error) {
	ent, ok := e.Store().Get(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingEntity, "entity %q not found", id)
	}
	return ent, nil
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}
	var data json.RawMessage
	ok = s.do(w, r, func(e *engine.Engine) error {
		ent, err := lookup(e, id)
		if err != nil {
			return err
		}
		// Encode here: the engine mutates entities in place.
		data, err = json.Marshal(entityView{ID: id, Entity: ent})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode entity")
		}
		return nil
	})
	if ok {
		writeJSON(w, http.StatusOK, data)
	}
}

type linksView struct {
	ID    string   `json:"id"`
	Text  string   `json:"text"`
	Links []string `json:"links"`
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}
	var view linksView
	ok = s.do(w, r, func(e *engine.Engine) error {
		ent, err := lookup(e, id)
		if err != nil {
			return err
		}
		view = linksView{ID: id, Text: engine.DetailText(ent), Links: engine.DetailLinks(ent)}
		return nil
	})
	if ok {
		writeJSON(w, http.StatusOK, view)
	}
}

type createRequest struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var id string
	if s.do(w, r, func(e *engine.Engine) error {
		id = e.Create(req.Title, req.Detail).ID
		return nil
	}) {
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}
	if s.do(w, r, func(e *engine.Engine) error {
		if !e.Delete(id) {
			return errors.New(errors.ErrCodeMissingEntity, "entity %q not deleted", id)
		}
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}
	var ed engine.Edit
	if err := decode(r, &ed); err != nil {
		s.writeError(w, err)
		return
	}
	if s.do(w, r, func(e *engine.Engine) error { return e.ApplyEdit(id, ed) }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// =============================================================================
// Interaction
// =============================================================================

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	m, err := entity.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.do(w, r, func(e *engine.Engine) error { return e.SwitchMode(m) }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRecolor(w http.ResponseWriter, r *http.Request) {
	scheme := engine.Scheme(chi.URLParam(r, "scheme"))
	if s.do(w, r, func(e *engine.Engine) error { return e.Recolor(scheme) }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSelectFrame(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if s.do(w, r, func(e *engine.Engine) error {
		if _, ok := e.Frames().Get(key); !ok {
			return errors.New(errors.ErrCodeNotFound, "frame %q not found", key)
		}
		e.SelectFrame(key)
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handlePickRegion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.do(w, r, func(e *engine.Engine) error {
		e.PickRegion(name)
		return nil
	}) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var p engine.Pointer
	if err := decode(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	var fn func(*engine.Engine)
	switch phase := chi.URLParam(r, "phase"); phase {
	case "down":
		fn = func(e *engine.Engine) { e.PointerDown(p) }
	case "move":
		fn = func(e *engine.Engine) { e.PointerMove(p) }
	case "up":
		fn = func(e *engine.Engine) { e.PointerUp(p) }
	case "click":
		fn = func(e *engine.Engine) { e.Click(p) }
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown pointer phase %q", phase))
		return
	}
	if s.do(w, r, func(e *engine.Engine) error { fn(e); return nil }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	k := engine.Key(chi.URLParam(r, "key"))
	if s.do(w, r, func(e *engine.Engine) error { return e.PressKey(k) }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}
	if s.do(w, r, func(e *engine.Engine) error { e.Focus(id); return nil }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	if s.do(w, r, func(e *engine.Engine) error { e.Back(); return nil }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// =============================================================================
// Scene and dataset
// =============================================================================

type sceneView struct {
	ActiveMode string           `json:"activeMode"`
	Anchor     string           `json:"anchor,omitempty"`
	Selected   string           `json:"selected,omitempty"`
	Session    string           `json:"session"`
	Region     string           `json:"region,omitempty"`
	History    []string         `json:"history"`
	Frames     []string         `json:"frames"`
	Panel      engine.Panel     `json:"panel"`
	Camera     cameraView       `json:"camera"`
	Objects    []scene.Snapshot `json:"objects,omitempty"`
}

type cameraView struct {
	Position entity.Vec3 `json:"position"`
	Target   entity.Vec3 `json:"target"`
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	withObjects := r.URL.Query().Get("objects") != "false"
	var view sceneView
	ok := s.do(w, r, func(e *engine.Engine) error {
		ctx := e.Context()
		view = sceneView{
			ActiveMode: ctx.ActiveMode,
			Anchor:     ctx.AnchorID,
			Selected:   ctx.Selected,
			Session:    ctx.Session.String(),
			Region:     e.SelectedRegion(),
			History:    e.History(),
			Frames:     e.Frames().VisibleKeys(),
			Panel:      e.Panel(),
			Camera:     cameraView{Position: e.Camera().Position, Target: e.Camera().Target},
		}
		if withObjects {
			view.Objects, _ = e.Snapshot()
		}
		return nil
	})
	if ok {
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var data []byte
	ok := s.do(w, r, func(e *engine.Engine) error {
		var err error
		data, err = e.Store().Export()
		return err
	})
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cards.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var n int
	if s.do(w, r, func(e *engine.Engine) error {
		if err := e.Store().Import(body); err != nil {
			return err
		}
		e.Reload("")
		e.Store().Persist()
		n = e.Store().Len()
		return nil
	}) {
		writeJSON(w, http.StatusOK, map[string]int{"entities": n})
	}
}
