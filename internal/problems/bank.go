// Package problems loads the problem bank: one folder per contest holding
// problem images and an answers.yaml answer key.
package problems

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/amcprep/internal/level"
)

// AnswerKeyFile is the answer key file name inside each contest folder.
const AnswerKeyFile = "answers.yaml"

// Categories are the topic labels used for problems.
var Categories = []string{
	"Algebra",
	"Arithmetic",
	"Combinatorics",
	"Geometry",
	"Number Theory",
	"Probability",
	"Statistics",
}

// Choices are the valid answer letters.
var Choices = []string{"A", "B", "C", "D", "E"}

// ErrNoProblems is returned by Load when the directory has no usable problems.
var ErrNoProblems = errors.New("no problems found")

// AnswerKey is the content of answers.yaml.
type AnswerKey struct {
	Contest string         `yaml:"contest,omitempty"`
	Year    int            `yaml:"year,omitempty"`
	Set     string         `yaml:"set,omitempty"`
	Answers map[int]Answer `yaml:"answers"`
}

// Answer is the key entry of one problem.
type Answer struct {
	Answer   string `yaml:"answer"`
	Category string `yaml:"category,omitempty"`
}

// Problem is a single multiple-choice problem backed by an image.
type Problem struct {
	Folder    string // contest folder name
	Contest   string
	Year      int
	Set       string
	Number    int
	Answer    string
	Category  string
	ImagePath string // absolute or bank-relative path to the image
}

// ImageFile returns the image's base name.
func (p Problem) ImageFile() string {
	return filepath.Base(p.ImagePath)
}

// Label is a short human-readable identifier, e.g. "AMC 8 2020 #7".
func (p Problem) Label() string {
	name := p.Contest
	if name == "" {
		name = p.Folder
	}
	return fmt.Sprintf("%s #%d", name, p.Number)
}

// Bank is an in-memory index of the problem folders under a root directory.
type Bank struct {
	root string

	mu       sync.RWMutex
	problems []Problem
	keys     map[string]*AnswerKey // by folder
}

var (
	imageExts   = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
	trailingNum = regexp.MustCompile(`(\d+)$`)
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	setRe       = regexp.MustCompile(`(?i)AMC[\s_-]*(8|10|12)[\s_-]*([AB])?(?:[^0-9A-Za-z]|$)`)
)

// setIdentifier is the contest level with its optional A/B letter, e.g.
// "8" for "AMC 8 2020" and "12A" for "AMC 12A 2019".
func setIdentifier(folder string) string {
	m := setRe.FindStringSubmatch(folder)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1] + m[2])
}

// Load scans root. Folders without an answer key are skipped, as are
// images whose number has no answer.
func Load(root string) (*Bank, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read problem bank: %w", err)
	}

	b := &Bank{root: root, keys: make(map[string]*AnswerKey)}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := b.loadFolder(e.Name()); err != nil {
			return nil, err
		}
	}

	if len(b.problems) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoProblems, root)
	}

	sort.Slice(b.problems, func(i, j int) bool {
		pi, pj := b.problems[i], b.problems[j]
		if pi.Folder != pj.Folder {
			return pi.Folder < pj.Folder
		}
		return pi.Number < pj.Number
	})
	return b, nil
}

func (b *Bank) loadFolder(folder string) error {
	dir := filepath.Join(b.root, folder)

	key, err := ReadAnswerKey(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if key.Year == 0 {
		if m := yearRe.FindString(folder); m != "" {
			key.Year, _ = strconv.Atoi(m)
		}
	}
	if key.Set == "" {
		key.Set = setIdentifier(folder)
	}
	if key.Contest == "" {
		key.Contest = folder
	}
	b.keys[folder] = key

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", folder, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := questionNumber(e.Name())
		if !ok {
			continue
		}
		ans, ok := key.Answers[n]
		if !ok || strings.TrimSpace(ans.Answer) == "" {
			continue
		}
		b.problems = append(b.problems, Problem{
			Folder:    folder,
			Contest:   key.Contest,
			Year:      key.Year,
			Set:       key.Set,
			Number:    n,
			Answer:    strings.ToUpper(strings.TrimSpace(ans.Answer)),
			Category:  ans.Category,
			ImagePath: filepath.Join(dir, e.Name()),
		})
	}
	return nil
}

// questionNumber extracts the trailing number of an image file name.
func questionNumber(name string) (int, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if !imageExts[ext] {
		return 0, false
	}
	m := trailingNum.FindString(strings.TrimSuffix(name, filepath.Ext(name)))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Root returns the bank directory.
func (b *Bank) Root() string {
	return b.root
}

// Problems returns every problem ordered by folder and number.
func (b *Bank) Problems() []Problem {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Problem(nil), b.problems...)
}

// Contests returns the folder names that contributed problems.
func (b *Bank) Contests() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []string
	seen := make(map[string]bool)
	for _, p := range b.problems {
		if !seen[p.Folder] {
			seen[p.Folder] = true
			out = append(out, p.Folder)
		}
	}
	return out
}

// ForLevel returns the problems whose number lies in the level's band.
func (b *Bank) ForLevel(lvl int, cfg level.Config) []Problem {
	r, ok := cfg.RangeFor(lvl)
	if !ok {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Problem
	for _, p := range b.problems {
		if r.Contains(p.Number) {
			out = append(out, p)
		}
	}
	return out
}

// Lookup finds a problem by folder and number.
func (b *Bank) Lookup(folder string, number int) (Problem, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, p := range b.problems {
		if p.Folder == folder && p.Number == number {
			return p, true
		}
	}
	return Problem{}, false
}

// SetCategory updates a problem's category and writes the folder's answer
// key back to disk.
func (b *Bank) SetCategory(folder string, number int, category string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key, ok := b.keys[folder]
	if !ok {
		return fmt.Errorf("unknown folder %q", folder)
	}
	ans, ok := key.Answers[number]
	if !ok {
		return fmt.Errorf("no answer for %s #%d", folder, number)
	}
	ans.Category = category
	key.Answers[number] = ans

	for i := range b.problems {
		if b.problems[i].Folder == folder && b.problems[i].Number == number {
			b.problems[i].Category = category
		}
	}

	return SaveAnswerKey(filepath.Join(b.root, folder), key)
}

// ReadAnswerKey parses dir/answers.yaml.
func ReadAnswerKey(dir string) (*AnswerKey, error) {
	data, err := os.ReadFile(filepath.Join(dir, AnswerKeyFile))
	if err != nil {
		return nil, err
	}
	var key AnswerKey
	if err := yaml.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Join(dir, AnswerKeyFile), err)
	}
	if key.Answers == nil {
		key.Answers = make(map[int]Answer)
	}
	return &key, nil
}

// SaveAnswerKey writes key to dir/answers.yaml.
func SaveAnswerKey(dir string, key *AnswerKey) error {
	data, err := yaml.Marshal(key)
	if err != nil {
		return fmt.Errorf("marshal answer key: %w", err)
	}
	path := filepath.Join(dir, AnswerKeyFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
