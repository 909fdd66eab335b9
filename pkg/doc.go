// Package pkg provides the core libraries for Cardspace card arrangement.
//
// # Overview
//
// Cardspace arranges a curated dataset of cards in 3D space. Every card sits
// on a shared baseline grid; switching mode recolours the cards and shows a
// board of frames, selecting a frame reveals the cards behind it, and cards
// with children can be drilled into. The pkg directory is organized into
// four main areas:
//
//  1. Data - [entity] (cards and the store), [catalog] (frames, categories,
//     districts), [dataset] (spreadsheet conversion), [persist] (backends)
//  2. Geometry - [layout] (placements), [camera] (projection and picking),
//     [tween] (animation), [lod] (detail levels), [scene] (render objects)
//  3. Interaction - [frame] (frame boards and resolution), [engine] (modes,
//     navigation, pointer sessions, editing)
//  4. Support - [errors], [observability], [color], [render], [buildinfo]
//
// # Architecture
//
// The typical data flow through Cardspace:
//
//	Dataset (JSON or CSV)
//	         ↓
//	    [entity] store  ←→  [persist] backends
//	         ↓
//	    [engine] (mode / frame / pointer / key input)
//	         ↓
//	    [layout] targets → [tween] → [scene] objects
//
// # Quick Start
//
// Load a dataset and drive the engine:
//
//	store := entity.NewStore()
//	if err := store.Import(data); err != nil {
//	    return err
//	}
//	e := engine.New(store, engine.WithCatalog(catalog.Default()))
//	e.Init("")
//	if err := e.SwitchMode(entity.ModeCategory); err != nil {
//	    return err
//	}
//	e.SelectFrame("zimin")
//	e.Settle(time.Second/60, 5*time.Second)
//
// Serve the engine from one goroutine:
//
//	loop := engine.NewLoop(e, time.Second/60)
//	go loop.Run(ctx)
//	err := loop.Do(ctx, func(e *engine.Engine) error {
//	    return e.PressKey(engine.KeyArrowRight)
//	})
//
// # Common Workflows
//
// Convert the candidate spreadsheet:
//
//	store, err := dataset.Convert(csvFile, jsonFile, logger)
//
// Persist through several backends at once:
//
//	backend, _ := persist.Open(ctx, persist.Config{Backends: []string{"disk", "redis"}})
//	saver := persist.NewSaver(backend, store)
//	store.SetPersist(saver.Hook(ctx))
//
// Draw the card tree:
//
//	dot := hierarchy.ToDOT(store, hierarchy.Options{Mode: entity.ModeTheme})
//	svg, _ := hierarchy.RenderSVG(dot)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/engine/...             # Specific package
//
// [entity]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/entity
// [catalog]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/catalog
// [dataset]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/dataset
// [persist]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/persist
// [layout]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/layout
// [camera]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/camera
// [tween]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/tween
// [lod]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/lod
// [scene]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/scene
// [frame]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/frame
// [engine]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/engine
// [errors]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/observability
// [color]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/color
// [render]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/render
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cardspace/pkg/buildinfo
package pkg
