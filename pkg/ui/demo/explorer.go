package demo

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/treestate"
	"github.com/odvcencio/lattice/pkg/ui/widgetstate"
)

// TopicFileOpened carries the slash-separated path of an opened file.
const TopicFileOpened = "explorer.opened"

const (
	idFolders element.FocusID = "explorer.folders"
	idFiles   element.FocusID = "explorer.files"
	idSearch  element.FocusID = "explorer.search"
	idAccent  element.FocusID = "explorer.accent"
)

type explorerKind int

const (
	explorerListed explorerKind = iota
	explorerOpen
	explorerFolderNav
	explorerFolderViewport
	explorerFind
	explorerFocusSearch
	explorerAccent
)

type explorerMsg struct {
	kind    explorerKind
	dir     string
	entries []element.FileEntry
	err     error
	nav     element.Nav
	index   int
	height  int
	text    string
}

type explorerState struct {
	widgetstate.Store
	dir      string
	entries  []element.FileEntry
	loading  bool
	err      error
	folders  *treestate.State[string]
	subdirs  map[string][]string
	viewport int
	opened   string
	accent   string
}

// Explorer browses a file tree: a folder tree on the left, the selected
// folder's entries on the right, a fuzzy search over those entries and an
// accent color picker. Directory reads run as deferred operations.
type Explorer struct {
	Root      fs.FS
	RootName  string
	ScrollOff int
}

func (e *Explorer) Title() string { return "Explorer" }

func (e *Explorer) Init(params any) (*explorerState, command.Command[explorerMsg]) {
	s := &explorerState{dir: ".", subdirs: make(map[string][]string)}
	if dir, ok := params.(string); ok && fs.ValidPath(dir) {
		s.dir = dir
	}
	s.folders = treestate.New([]string{"."}, func(dir string) []string { return e.subdirsOf(s, dir) })
	s.folders.Expand(".")
	e.reveal(s, s.dir)
	s.accent = s.Color(idAccent).Hex()
	if e.Root == nil {
		s.err = fmt.Errorf("no file tree to browse")
		return s, nil
	}
	return s, e.list(s, s.dir)
}

// subdirsOf lists the directories below dir, reading each at most once.
func (e *Explorer) subdirsOf(s *explorerState, dir string) []string {
	if kids, ok := s.subdirs[dir]; ok {
		return kids
	}
	var kids []string
	if e.Root != nil {
		ents, _ := fs.ReadDir(e.Root, dir)
		for _, ent := range ents {
			if ent.IsDir() {
				kids = append(kids, path.Join(dir, ent.Name()))
			}
		}
	}
	s.subdirs[dir] = kids
	return kids
}

// reveal expands every ancestor of dir and selects it in the folder tree.
func (e *Explorer) reveal(s *explorerState, dir string) {
	var chain []string
	for d := dir; d != "."; d = path.Dir(d) {
		chain = append([]string{path.Dir(d)}, chain...)
	}
	for _, d := range chain {
		s.folders.Expand(d)
	}
	s.folders.Select(dir)
	s.folders.UpdateScroll(s.viewport, e.ScrollOff)
}

func (e *Explorer) list(s *explorerState, dir string) command.Command[explorerMsg] {
	s.dir = dir
	s.loading = true
	root := e.Root
	return command.Perform[explorerMsg]{
		Name: "list " + dir,
		Op: func(ctx context.Context) explorerMsg {
			entries, err := readEntries(root, dir)
			return explorerMsg{kind: explorerListed, dir: dir, entries: entries, err: err}
		},
	}
}

// readEntries returns dir's children with directories first, each group
// sorted by name. Below the root a ".." entry leads back up.
func readEntries(root fs.FS, dir string) ([]element.FileEntry, error) {
	ents, err := fs.ReadDir(root, dir)
	if err != nil {
		return nil, err
	}
	out := make([]element.FileEntry, 0, len(ents)+1)
	if dir != "." {
		out = append(out, element.FileEntry{Name: "..", IsDir: true})
	}
	for _, ent := range ents {
		fe := element.FileEntry{Name: ent.Name(), IsDir: ent.IsDir()}
		if info, err := ent.Info(); err == nil && !fe.IsDir {
			fe.Size = info.Size()
		}
		out = append(out, fe)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == ".." || out[j].Name == ".." {
			return out[i].Name == ".."
		}
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (e *Explorer) Update(s *explorerState, msg explorerMsg) command.Command[explorerMsg] {
	switch msg.kind {
	case explorerListed:
		if msg.dir != s.dir {
			return nil
		}
		s.loading = false
		s.entries, s.err = msg.entries, msg.err
		s.List(idFiles).Selected = 0
		s.List(idFiles).Offset = 0
		s.Forget(idSearch)
	case explorerOpen:
		if msg.index < 0 || msg.index >= len(s.entries) {
			return nil
		}
		ent := s.entries[msg.index]
		switch {
		case ent.Name == "..":
			return e.enter(s, path.Dir(s.dir))
		case ent.IsDir:
			return e.enter(s, path.Join(s.dir, ent.Name))
		}
		s.opened = path.Join(s.dir, ent.Name)
		return command.Publish[explorerMsg]{Topic: TopicFileOpened, Payload: s.opened}
	case explorerFolderNav:
		page := max(s.viewport, 1)
		if !s.folders.Navigate(msg.nav, page) {
			return nil
		}
		s.folders.UpdateScroll(s.viewport, e.ScrollOff)
		if dir, ok := s.folders.Selected(); ok && dir != s.dir {
			return e.list(s, dir)
		}
	case explorerFolderViewport:
		s.viewport = msg.height
		s.folders.UpdateScroll(s.viewport, e.ScrollOff)
	case explorerFind:
		for i, ent := range s.entries {
			if ent.Name == msg.text {
				s.List(idFiles).Selected = i
				return command.SetFocus[explorerMsg]{ID: idFiles}
			}
		}
	case explorerFocusSearch:
		return command.SetFocus[explorerMsg]{ID: idSearch}
	case explorerAccent:
		s.accent = msg.text
	}
	return nil
}

func (e *Explorer) enter(s *explorerState, dir string) command.Command[explorerMsg] {
	e.reveal(s, dir)
	return e.list(s, dir)
}

func (e *Explorer) label(dir string) string {
	if dir == "." {
		return e.RootName
	}
	return path.Base(dir)
}

func (e *Explorer) View(s *explorerState) []element.Layer[explorerMsg] {
	tree := &element.Tree[explorerMsg]{
		Rows:       s.folders.Rows(e.label),
		Selected:   s.folders.SelectedIndex(),
		Offset:     s.folders.Offset(),
		OnNavigate: func(n element.Nav) explorerMsg { return explorerMsg{kind: explorerFolderNav, nav: n} },
		OnViewport: func(_, h int) explorerMsg { return explorerMsg{kind: explorerFolderViewport, height: h} },
	}
	tree.Focus = idFolders

	files := s.List(idFiles)
	files.Selected = min(max(files.Selected, 0), max(len(s.entries)-1, 0))
	browser := &element.FileBrowser[explorerMsg]{
		Dir:      e.label(s.dir),
		Entries:  s.entries,
		Selected: files.Selected,
		Offset:   files.Offset,
		OnOpen:   func(i int) explorerMsg { return explorerMsg{kind: explorerOpen, index: i} },
	}
	browser.Focus = idFiles
	if s.dir != "." {
		browser.Dir = s.dir
	}

	names := make([]string, 0, len(s.entries))
	for _, ent := range s.entries {
		if ent.Name != ".." {
			names = append(names, ent.Name)
		}
	}
	search := widgetstate.AutocompleteOf[explorerMsg](&s.Store, idSearch, names)
	search.Placeholder = "find in folder"
	search.Bordered = true
	search.Limit = 6
	search.OnSelect = func(v string) explorerMsg { return explorerMsg{kind: explorerFind, text: v} }

	accent := widgetstate.ColorPickerOf[explorerMsg](&s.Store, idAccent)
	accent.Label = "accent"
	accent.OnChange = func(c backend.Color) explorerMsg {
		return explorerMsg{kind: explorerAccent, text: c.Hex()}
	}

	var status element.Element[explorerMsg] = element.Styled[explorerMsg](fmt.Sprintf("%d entries", len(s.entries)), theme.RoleMuted)
	switch {
	case s.err != nil:
		status = element.Styled[explorerMsg](s.err.Error(), theme.RoleError)
	case s.loading:
		status = element.Styled[explorerMsg]("loading…", theme.RoleMuted)
	case s.opened != "":
		status = element.Styled[explorerMsg]("opened "+s.opened, theme.RoleSuccess)
	}

	right := element.Column[explorerMsg](
		element.WithSize[explorerMsg](element.Boxed[explorerMsg]("Files", browser), layout.Fill(1)),
		search,
		accent,
		status,
	)
	body := element.Row[explorerMsg](
		element.WithSize[explorerMsg](element.Boxed[explorerMsg]("Folders", tree), layout.Length(28)),
		element.WithSize[explorerMsg](right, layout.Fill(1)),
	)
	return []element.Layer[explorerMsg]{element.Fill[explorerMsg](body)}
}

func (e *Explorer) Subscriptions(*explorerState) []command.Subscription[explorerMsg] {
	return []command.Subscription[explorerMsg]{
		command.Key("ctrl+f", explorerMsg{kind: explorerFocusSearch}, "focus search"),
	}
}

func (e *Explorer) Status(s *explorerState) string {
	return fmt.Sprintf("%s · %s", e.label(s.dir), s.accent)
}

var (
	_ runtime.Application[*explorerState, explorerMsg] = (*Explorer)(nil)
	_ runtime.Statuser[*explorerState]                 = (*Explorer)(nil)
)
