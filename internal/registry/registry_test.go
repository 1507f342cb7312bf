package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/project"
)

type noteModel struct {
	entry project.EntryID
}

func (m *noteModel) EntryID() (project.EntryID, bool) { return m.entry, true }

type sketchModel struct{}

func (m *sketchModel) EntryID() (project.EntryID, bool) { return 0, false }

type noteView struct {
	model  *noteModel
	prefix string
}

func (v *noteView) Title() string             { return v.prefix + v.model.entry.String() }
func (v *noteView) ProjectItem() project.Item { return v.model }

type otherNoteView struct {
	model *noteModel
}

func (v *otherNoteView) Title() string             { return "other" }
func (v *otherNoteView) ProjectItem() project.Item { return v.model }

type welcomeView struct{}

func (welcomeView) Title() string { return "welcome" }

type stubHost struct{}

func (stubHost) ID() string               { return "host" }
func (stubHost) Project() project.Project { return nil }

func newNoteView(_ item.Host, m *noteModel, prefix string) *noteView {
	return &noteView{model: m, prefix: prefix}
}

func TestBuild_RegisteredKind(t *testing.T) {
	r := New()
	Register(r, "note:", newNoteView)

	model := &noteModel{entry: 4}
	built, err := r.Build(stubHost{}, model)
	require.NoError(t, err)

	view, ok := built.(*noteView)
	require.True(t, ok)
	require.Same(t, model, view.model)
	require.Equal(t, "note:entry-4", view.Title())
	require.Same(t, model, built.ProjectItem())
}

func TestBuild_UnregisteredKind(t *testing.T) {
	r := New()
	Register(r, "note:", newNoteView)

	_, err := r.Build(stubHost{}, &sketchModel{})
	require.ErrorIs(t, err, ErrUnregisteredKind)

	var unreg *UnregisteredKindError
	require.ErrorAs(t, err, &unreg)
	require.Equal(t, KindFor[*sketchModel](), unreg.Kind)
	require.Contains(t, err.Error(), "*registry.sketchModel")
}

func TestBuild_NilModel(t *testing.T) {
	_, err := New().Build(stubHost{}, nil)
	require.ErrorIs(t, err, ErrNilModel)
}

func TestRegister_LastRegistrationWins(t *testing.T) {
	r := New()
	Register(r, "first:", newNoteView)
	Register(r, "second:", newNoteView)

	built, err := r.Build(stubHost{}, &noteModel{entry: 1})
	require.NoError(t, err)
	require.Equal(t, "second:entry-1", built.Title())

	Register(r, struct{}{}, func(_ item.Host, m *noteModel, _ struct{}) *otherNoteView {
		return &otherNoteView{model: m}
	})
	built, err = r.Build(stubHost{}, &noteModel{entry: 1})
	require.NoError(t, err)
	require.IsType(t, &otherNoteView{}, built)

	regs := r.Registrations()
	require.Len(t, regs, 1)
	require.Equal(t, KindFor[*otherNoteView](), regs[0].ItemKind)
}

func TestToProjectItem(t *testing.T) {
	r := New()
	Register(r, "", newNoteView)

	model := &noteModel{entry: 2}
	view := &noteView{model: model}

	got, ok := r.ToProjectItem(view)
	require.True(t, ok)
	require.Same(t, model, got.ProjectItem())

	_, ok = r.ToProjectItem(welcomeView{})
	require.False(t, ok, "non-project items have no converter")

	_, ok = r.ToProjectItem(&otherNoteView{model: model})
	require.False(t, ok, "unregistered item kinds are not project items even when they could be")

	_, ok = r.ToProjectItem(nil)
	require.False(t, ok)
}

func TestRegistrations_Sorted(t *testing.T) {
	r := New()
	Register(r, "", newNoteView)
	Register(r, 0, func(_ item.Host, m *sketchModel, _ int) *sketchView { return &sketchView{m} })

	regs := r.Registrations()
	require.Len(t, regs, 2)
	require.Equal(t, "*registry.noteModel", regs[0].ModelKind.String())
	require.Equal(t, "*registry.sketchModel", regs[1].ModelKind.String())
	require.True(t, r.Has(KindFor[*noteModel]()))
	require.False(t, r.Has(KindFor[*noteView]()))
}

type sketchView struct{ m *sketchModel }

func (v *sketchView) Title() string             { return "sketch" }
func (v *sketchView) ProjectItem() project.Item { return v.m }

func TestKind(t *testing.T) {
	require.True(t, KindOf(nil).IsZero())
	require.Equal(t, "<nil>", KindOf(nil).String())
	require.Equal(t, KindOf(&noteModel{}), KindFor[*noteModel]())
}

// Builds succeed for exactly the kinds registered before the call.
func TestProperty_RegistryTotality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New()
		registerNote := rapid.Bool().Draw(t, "registerNote")
		registerSketch := rapid.Bool().Draw(t, "registerSketch")
		if registerNote {
			Register(r, "", newNoteView)
		}
		if registerSketch {
			Register(r, 0, func(_ item.Host, m *sketchModel, _ int) *sketchView { return &sketchView{m} })
		}

		useNote := rapid.Bool().Draw(t, "useNote")
		var model project.Item = &sketchModel{}
		registered := registerSketch
		if useNote {
			model = &noteModel{entry: project.EntryID(rapid.Uint64().Draw(t, "entry"))}
			registered = registerNote
		}

		_, err := r.Build(stubHost{}, model)
		if registered {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, ErrUnregisteredKind)
		}
	})
}
