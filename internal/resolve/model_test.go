package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/jward/lattice/internal/model"
)

// fakeModel is an in-memory model.Access for exercising the algorithms
// without a database. Tests build a graph with the add/extend helpers.
type fakeModel struct {
	byID    map[int64]*model.Element
	byQName map[string]*model.Element
	supers  map[int64][]model.TypeRef
	methods map[int64][]*model.Element
	refs    map[int64][]model.Occurrence
	calls   map[int64][]model.CallSite
	nextID  int64
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		byID:    make(map[int64]*model.Element),
		byQName: make(map[string]*model.Element),
		supers:  make(map[int64][]model.TypeRef),
		methods: make(map[int64][]*model.Element),
		refs:    make(map[int64][]model.Occurrence),
		calls:   make(map[int64][]model.CallSite),
	}
}

func (f *fakeModel) addType(qname string, kind model.Kind, lang string) *model.Element {
	f.nextID++
	name := qname
	if idx := strings.LastIndex(qname, "."); idx >= 0 {
		name = qname[idx+1:]
	}
	el := &model.Element{
		ID:            f.nextID,
		Name:          name,
		QualifiedName: qname,
		Kind:          kind,
		Language:      lang,
		File:          strings.ToLower(name) + ".src",
		Line:          1,
	}
	f.byID[el.ID] = el
	f.byQName[qname] = el
	return el
}

func (f *fakeModel) addMethod(owner *model.Element, name, sig string) *model.Element {
	f.nextID++
	el := &model.Element{
		ID:            f.nextID,
		Name:          name,
		QualifiedName: owner.QualifiedName + "." + name,
		Kind:          model.KindMethod,
		Language:      owner.Language,
		File:          owner.File,
		Line:          10,
		Signature:     sig,
		ContainerID:   owner.ID,
		Container:     owner.Name,
		ContainerKind: owner.Kind,
	}
	f.byID[el.ID] = el
	f.byQName[el.QualifiedName] = el
	f.methods[owner.ID] = append(f.methods[owner.ID], el)
	return el
}

func (f *fakeModel) addFunction(name, lang string) *model.Element {
	f.nextID++
	el := &model.Element{
		ID:            f.nextID,
		Name:          name,
		QualifiedName: name,
		Kind:          model.KindFunction,
		Language:      lang,
		File:          "main.src",
		Line:          1,
	}
	f.byID[el.ID] = el
	f.byQName[name] = el
	return el
}

func (f *fakeModel) extend(t, super *model.Element, iface bool) {
	f.supers[t.ID] = append(f.supers[t.ID], model.TypeRef{
		Name: super.Name, Target: super, Interface: iface,
	})
}

func (f *fakeModel) extendUnresolved(t *model.Element, name string, iface bool) {
	f.supers[t.ID] = append(f.supers[t.ID], model.TypeRef{Name: name, Interface: iface})
}

// addCall records from calling to: a call site inside from and a reference
// occurrence on to.
func (f *fakeModel) addCall(from, to *model.Element, line int) {
	f.calls[from.ID] = append(f.calls[from.ID], model.CallSite{
		Name: to.Name, File: from.File, Line: line, Target: to,
	})
	f.refs[to.ID] = append(f.refs[to.ID], model.Occurrence{
		File: from.File, Line: line, Enclosing: from,
	})
}

func (f *fakeModel) addTopLevelRef(to *model.Element, file string, line int) {
	f.refs[to.ID] = append(f.refs[to.ID], model.Occurrence{File: file, Line: line})
}

func (f *fakeModel) addUnresolvedCall(from *model.Element, name string, line int) {
	f.calls[from.ID] = append(f.calls[from.ID], model.CallSite{
		Name: name, File: from.File, Line: line,
	})
}

// --- model.Access ---

func (f *fakeModel) Ready() error { return nil }

func (f *fakeModel) ResolveAt(ctx context.Context, file string, line, col int) (*model.Element, error) {
	return nil, nil
}

func (f *fakeModel) ResolveName(ctx context.Context, qualifiedName string) (*model.Element, error) {
	return f.byQName[qualifiedName], nil
}

func (f *fakeModel) ContainerOf(ctx context.Context, el *model.Element) (*model.Element, error) {
	if el.ContainerID == 0 {
		return nil, nil
	}
	return f.byID[el.ContainerID], nil
}

func (f *fakeModel) Supertypes(ctx context.Context, t *model.Element) ([]model.TypeRef, error) {
	return f.supers[t.ID], nil
}

// subtypeIDs computes the transitive subtype closure by reversing the
// declared supertype edges, breadth-first.
func (f *fakeModel) subtypeIDs(rootID int64, limit int) []int64 {
	children := make(map[int64][]int64)
	for typeID, refs := range f.supers {
		for _, ref := range refs {
			if ref.Target != nil {
				children[ref.Target.ID] = append(children[ref.Target.ID], typeID)
			}
		}
	}
	for _, ids := range children {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	seen := map[int64]bool{rootID: true}
	queue := []int64{rootID}
	var out []int64
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if seen[child] {
				continue
			}
			seen[child] = true
			if len(out) < limit {
				out = append(out, child)
			}
			queue = append(queue, child)
		}
	}
	return out
}

func (f *fakeModel) TransitiveSubtypes(ctx context.Context, t *model.Element, limit int) ([]*model.Element, error) {
	var out []*model.Element
	for _, id := range f.subtypeIDs(t.ID, limit) {
		out = append(out, f.byID[id])
	}
	return out, nil
}

func (f *fakeModel) MethodsNamed(ctx context.Context, t *model.Element, name string) ([]*model.Element, error) {
	var out []*model.Element
	for _, m := range f.methods[t.ID] {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeModel) OverridingMethods(ctx context.Context, m *model.Element, matchSignature bool, limit int) ([]*model.Element, error) {
	if m.ContainerID == 0 {
		return nil, nil
	}
	var out []*model.Element
	for _, id := range f.subtypeIDs(m.ContainerID, limit) {
		for _, cand := range f.methods[id] {
			if cand.Name != m.Name {
				continue
			}
			if matchSignature && cand.Signature != m.Signature {
				continue
			}
			out = append(out, cand)
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (f *fakeModel) EachReferenceTo(ctx context.Context, m *model.Element, fn func(model.Occurrence) bool) error {
	for _, occ := range f.refs[m.ID] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(occ) {
			return nil
		}
	}
	return nil
}

func (f *fakeModel) CallSitesWithin(ctx context.Context, m *model.Element) ([]model.CallSite, error) {
	return f.calls[m.ID], nil
}

func (f *fakeModel) namesOfKind(kind model.NameKind, scope model.Scope, langs []string) []*model.Element {
	langSet := make(map[string]bool, len(langs))
	for _, l := range langs {
		langSet[l] = true
	}
	var out []*model.Element
	for _, el := range f.byID {
		switch kind {
		case model.TypeNames:
			if !el.Kind.IsType() {
				continue
			}
		case model.CallableNames:
			if !el.Kind.IsCallable() {
				continue
			}
		default:
			if el.Kind.IsType() || el.Kind.IsCallable() {
				continue
			}
		}
		if scope != model.ScopeAll && el.External {
			continue
		}
		if len(langs) > 0 && !langSet[el.Language] {
			continue
		}
		out = append(out, el)
	}
	return out
}

func (f *fakeModel) EachDeclaredName(ctx context.Context, kind model.NameKind, scope model.Scope, langs []string, fn func(string) bool) error {
	seen := make(map[string]bool)
	var names []string
	for _, el := range f.namesOfKind(kind, scope, langs) {
		if !seen[el.Name] {
			seen[el.Name] = true
			names = append(names, el.Name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(name) {
			return nil
		}
	}
	return nil
}

func (f *fakeModel) DeclarationsNamed(ctx context.Context, name string, kind model.NameKind, scope model.Scope, langs []string) ([]*model.Element, error) {
	var out []*model.Element
	for _, el := range f.namesOfKind(kind, scope, langs) {
		if el.Name == name {
			out = append(out, el)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// javaResolver binds a fake model to the statically typed profile used by
// most tests: signature matching on, Object roots excluded.
func javaResolver(f *fakeModel) *Resolver {
	return &Resolver{
		Model: f,
		Profile: Profile{
			Languages:       []string{"java"},
			RootTypes:       map[string]bool{"Object": true, "java.lang.Object": true},
			MatchSignatures: true,
		},
	}
}

// pythonResolver matches overrides by name alone.
func pythonResolver(f *fakeModel) *Resolver {
	return &Resolver{
		Model: f,
		Profile: Profile{
			Languages:       []string{"python"},
			RootTypes:       map[string]bool{"object": true},
			MatchSignatures: false,
		},
	}
}
