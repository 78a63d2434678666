package normalisers

import (
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry implements NormaliserRegistry with priority-based selection.
// When multiple normalisers handle an extension, the highest priority one is used.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a new normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make([]driven.Normaliser, 0),
	}
}

// Register registers a normaliser.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, normaliser)
}

// Get retrieves the best-matching normaliser for a file extension.
// Returns nil if no normaliser is registered for it.
func (r *Registry) Get(ext string) driven.Normaliser {
	matches := r.GetAll(ext)
	if len(matches) == 0 {
		return nil
	}
	return matches[0] // Already sorted by priority (highest first)
}

// GetAll retrieves all normalisers for an extension, sorted by priority (highest first).
func (r *Registry) GetAll(ext string) []driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext = canonicalExt(ext)
	var matches []driven.Normaliser

	for _, n := range r.normalisers {
		for _, supported := range n.SupportedExtensions() {
			if canonicalExt(supported) == ext {
				matches = append(matches, n)
				break
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})

	return matches
}

// List returns all registered extensions, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extSet := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, e := range n.SupportedExtensions() {
			extSet[canonicalExt(e)] = struct{}{}
		}
	}

	exts := make([]string, 0, len(extSet))
	for e := range extSet {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

// canonicalExt lowercases ext and ensures a leading dot ("TXT" -> ".txt").
func canonicalExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// DefaultRegistry creates a registry with the built-in normalisers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PlaintextNormaliser{})
	r.Register(&MarkdownNormaliser{})
	return r
}

// PlaintextNormaliser handles plain text knowledge files.
type PlaintextNormaliser struct{}

func (n *PlaintextNormaliser) Normalise(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimSpace(content)
}

func (n *PlaintextNormaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

func (n *PlaintextNormaliser) Priority() int {
	return 10
}

// MarkdownNormaliser handles Markdown knowledge files.
type MarkdownNormaliser struct{}

func (n *MarkdownNormaliser) Normalise(content string) string {
	content = (&PlaintextNormaliser{}).Normalise(content)

	// Remove excessive blank lines (more than 2 consecutive)
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}

	return content
}

func (n *MarkdownNormaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

func (n *MarkdownNormaliser) Priority() int {
	return 50
}
