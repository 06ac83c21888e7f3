// Package knowledge loads the events and items knowledge base and turns
// recognized screen text into display messages.
package knowledge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// Enchantment is one enchantment variant of an item.
type Enchantment struct {
	Type     string   `json:"type"`
	Tooltips []string `json:"tooltips"`
}

// Item is a purchasable item with its tooltips and enchantments.
type Item struct {
	Name            string        `json:"name"`
	UnifiedTooltips []string      `json:"unifiedTooltips"`
	Enchantments    []Enchantment `json:"enchantments"`
}

// Event is an encounter with selectable options. Display false hides the
// event from lookups while keeping it in the data file.
type Event struct {
	Name    string   `json:"name"`
	Display *bool    `json:"display,omitempty"`
	Options []string `json:"options"`
}

func (e Event) displayed() bool {
	return e.Display == nil || *e.Display
}

type itemsFile struct {
	Items []Item `json:"items"`
}

// Base is the loaded knowledge base. Lookups are cached with a TTL so the
// capture loop does not rebuild the same message twice a second while the
// player sits on one screen.
type Base struct {
	events   []Event
	items    []Item
	keywords []string
	cache    *gocache.Cache
	log      logger.Logger
}

// cache sentinel for texts that matched nothing, so misses are cached too
const noMatch = "\x00nomatch"

// Load reads events.json and items.json from the configured data path.
func Load(cfg conf.KnowledgeSettings, log logger.Logger) (*Base, error) {
	b := &Base{
		cache: gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		log:   log.Module("knowledge"),
	}

	if err := readJSON(filepath.Join(cfg.DataPath, "events.json"), &b.events); err != nil {
		return nil, err
	}
	var items itemsFile
	if err := readJSON(filepath.Join(cfg.DataPath, "items.json"), &items); err != nil {
		return nil, err
	}
	b.items = items.Items

	for _, e := range b.events {
		if e.Name != "" && e.displayed() {
			b.keywords = append(b.keywords, e.Name)
		}
	}
	for _, it := range b.items {
		if it.Name != "" {
			b.keywords = append(b.keywords, it.Name)
		}
	}

	b.log.Info("knowledge base loaded",
		logger.Int("events", len(b.events)),
		logger.Int("items", len(b.items)))
	return b, nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(err).
			Component("knowledge").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.New(err).
			Component("knowledge").
			Category(errors.CategoryKnowledge).
			Context("path", path).
			Build()
	}
	return nil
}

// Lookup matches the text against the knowledge base and returns the
// display message for the best hit. The second return is false when
// nothing in the text matched.
func (b *Base) Lookup(text string) (string, bool) {
	if cached, ok := b.cache.Get(text); ok {
		msg := cached.(string)
		if msg == noMatch {
			return "", false
		}
		return msg, true
	}

	msg, ok := b.lookup(text)
	if ok {
		b.cache.SetDefault(text, msg)
	} else {
		b.cache.SetDefault(text, noMatch)
	}
	return msg, ok
}

func (b *Base) lookup(text string) (string, bool) {
	name := b.MatchKeyword(text)
	if name == "" {
		return "", false
	}
	msg := b.BuildMessage(name)
	if msg == "" {
		b.log.Warn("matched keyword has no message", logger.String("name", name))
		return "", false
	}
	b.log.Debug("matched", logger.String("name", name))
	return msg, true
}

// MatchKeyword finds known names in the text. Matches are case-insensitive
// and must be whole words, so "Ice" never fires inside "Iceblade". When
// several names occur the earliest one in the text wins. Returns "" when
// nothing matched.
func (b *Base) MatchKeyword(text string) string {
	lower := strings.ToLower(text)

	best := -1
	var bestName string
	for _, name := range b.keywords {
		idx := wholeWordIndex(lower, strings.ToLower(name))
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			bestName = name
		}
	}
	return bestName
}

// wholeWordIndex returns the byte index of the first occurrence of needle
// in haystack whose neighbouring characters are not word characters, or -1.
// Both arguments must already be lowercased.
func wholeWordIndex(haystack, needle string) int {
	if needle == "" {
		return -1
	}
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return -1
		}
		abs := offset + idx
		if boundaryBefore(haystack, abs) && boundaryAfter(haystack, abs+len(needle)) {
			return abs
		}
		offset = abs + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !isWordRune(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// BuildMessage renders the display message for a matched name. Events are
// checked before items so an encounter screen beats an item of the same
// name.
func (b *Base) BuildMessage(name string) string {
	for _, e := range b.events {
		if e.Name != name || !e.displayed() {
			continue
		}
		var sb strings.Builder
		sb.WriteString(e.Name)
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(e.Options, "\n\n"))
		return sb.String()
	}

	for _, it := range b.items {
		if it.Name != name {
			continue
		}
		var sb strings.Builder
		sb.WriteString(it.Name)
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(it.UnifiedTooltips, "\n"))
		sb.WriteString("\n\n")
		for i, ench := range it.Enchantments {
			sb.WriteString(ench.Type)
			sb.WriteByte('\n')
			sb.WriteString(strings.Join(ench.Tooltips, "\n\n"))
			if i < len(it.Enchantments)-1 {
				sb.WriteString("\n\n")
			}
		}
		return sb.String()
	}

	return ""
}
