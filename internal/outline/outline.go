// Package outline converts the flat cross-file structure item list into the
// nested navigation tree: grouped by folder, then parented by heading depth
// with a stack discipline, then chapter-number-aware sibling ordering.
package outline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/calloway/scribe/internal/models"
)

// Node is one node of the navigation tree.
type Node struct {
	Title      string                `json:"title"`
	Kind       models.ItemKind       `json:"kind"`
	Item       *models.StructureItem `json:"item,omitempty"` // nil for folder nodes
	Children   []*Node               `json:"children,omitempty"`
	Expandable bool                  `json:"expandable"`
	Collapsed  bool                  `json:"collapsed"`
}

// Build assembles the tree. It is a total function of the input: every item
// appears exactly once, and parenting is stable under re-sort because
// ordering only ever permutes siblings.
func Build(items []models.StructureItem) []*Node {
	byFolder := make(map[string][]models.StructureItem)
	for _, it := range items {
		byFolder[it.Folder] = append(byFolder[it.Folder], it)
	}

	folders := make([]string, 0, len(byFolder))
	for f := range byFolder {
		folders = append(folders, f)
	}
	// Root first, then shallow before deep, so parent folder nodes always
	// exist before children are attached beneath them.
	sort.Slice(folders, func(i, j int) bool {
		di, dj := segmentCount(folders[i]), segmentCount(folders[j])
		if di != dj {
			return di < dj
		}
		return folders[i] < folders[j]
	})

	var roots []*Node
	folderNodes := make(map[string]*Node)

	for _, folder := range folders {
		parent := ensureFolder(folder, folderNodes, &roots)
		attachItems(byFolder[folder], parent, &roots)
	}

	sortSiblings(roots)
	finalize(roots)
	return roots
}

// segmentCount returns the folder path's depth; the root group is 0.
func segmentCount(folder string) int {
	if folder == "" {
		return 0
	}
	return len(strings.Split(folder, "/"))
}

// ensureFolder returns the node items in folder attach under: nil for root
// content files, otherwise one synthesized node per path segment, memoized
// by cumulative path so repeated segments are never duplicated.
func ensureFolder(folder string, memo map[string]*Node, roots *[]*Node) *Node {
	if folder == "" {
		return nil
	}
	if n, ok := memo[folder]; ok {
		return n
	}
	var parent *Node
	var cum string
	for _, seg := range strings.Split(folder, "/") {
		if cum == "" {
			cum = seg
		} else {
			cum = cum + "/" + seg
		}
		n, ok := memo[cum]
		if !ok {
			n = &Node{Title: seg, Kind: models.KindFolder}
			memo[cum] = n
			if parent == nil {
				*roots = append(*roots, n)
			} else {
				parent.Children = append(parent.Children, n)
			}
		}
		parent = n
	}
	return parent
}

// attachItems walks one folder's items file by file, in line order, keeping
// a stack of open ancestors. Events attach to the top of the stack; headings
// pop until the top is strictly shallower, then push themselves.
func attachItems(items []models.StructureItem, folderNode *Node, roots *[]*Node) {
	byFile := make(map[string][]models.StructureItem)
	var files []string
	for _, it := range items {
		if _, ok := byFile[it.Path]; !ok {
			files = append(files, it.Path)
		}
		byFile[it.Path] = append(byFile[it.Path], it)
	}
	sort.Strings(files)

	attach := func(n *Node) {
		if folderNode != nil {
			folderNode.Children = append(folderNode.Children, n)
		} else {
			*roots = append(*roots, n)
		}
	}

	for _, file := range files {
		fileItems := byFile[file]
		sort.SliceStable(fileItems, func(i, j int) bool {
			return fileItems[i].Line < fileItems[j].Line
		})

		var stack []*Node
		for i := range fileItems {
			it := fileItems[i]
			node := &Node{Title: it.Title, Kind: it.Kind, Item: &fileItems[i]}

			if it.Kind == models.KindEvent {
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					top.Children = append(top.Children, node)
				} else {
					attach(node)
				}
				continue
			}

			for len(stack) > 0 && stack[len(stack)-1].Item.Depth >= it.Depth {
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, node)
			} else {
				attach(node)
			}
			stack = append(stack, node)
		}
	}
}

// sortSiblings orders every sibling slice: chapter-numbered items first, by
// dotted-numeric comparison, then the rest by title.
func sortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return lessNode(nodes[i], nodes[j])
	})
	for _, n := range nodes {
		sortSiblings(n.Children)
	}
}

func lessNode(a, b *Node) bool {
	an, bn := chapterNum(a), chapterNum(b)
	switch {
	case an != "" && bn != "":
		if c := CompareChapterNums(an, bn); c != 0 {
			return c < 0
		}
		return a.Title < b.Title
	case an != "":
		return true
	case bn != "":
		return false
	default:
		return a.Title < b.Title
	}
}

func chapterNum(n *Node) string {
	if n.Item == nil {
		return ""
	}
	return n.Item.ChapterNum
}

// finalize computes the display state: anything with children is initially
// collapsed but expandable; events are always leaves.
func finalize(nodes []*Node) {
	for _, n := range nodes {
		n.Expandable = len(n.Children) > 0 && n.Kind != models.KindEvent
		n.Collapsed = n.Expandable
		finalize(n.Children)
	}
}

// CompareChapterNums compares dotted chapter numbers segment by numeric
// segment; shorter sequences pad with zero. "1.2" < "1.10".
func CompareChapterNums(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(strings.TrimSpace(as[i]))
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(strings.TrimSpace(bs[i]))
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Flatten returns every item-bearing node in depth-first order. Used by
// word-count aggregation and tests.
func Flatten(nodes []*Node) []*Node {
	var out []*Node
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(nodes)
	return out
}
