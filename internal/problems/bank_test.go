package problems

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/amcprep/internal/level"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testBank(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "AMC 8 2020", AnswerKeyFile), `
contest: AMC 8 2020
answers:
  1: {answer: b, category: Arithmetic}
  2: {answer: D}
  7: {answer: A, category: Geometry}
`)
	writeFile(t, filepath.Join(root, "AMC 8 2020", "1.png"), "")
	writeFile(t, filepath.Join(root, "AMC 8 2020", "q2.jpg"), "")
	writeFile(t, filepath.Join(root, "AMC 8 2020", "Problem_7.jpeg"), "")
	writeFile(t, filepath.Join(root, "AMC 8 2020", "9.png"), "") // no answer
	writeFile(t, filepath.Join(root, "AMC 8 2020", "notes.txt"), "")

	writeFile(t, filepath.Join(root, "AMC 10B 2021", AnswerKeyFile), `
answers:
  12: {answer: C}
`)
	writeFile(t, filepath.Join(root, "AMC 10B 2021", "12.png"), "")

	// No answer key: ignored.
	writeFile(t, filepath.Join(root, "drafts", "3.png"), "")
	return root
}

func TestSetIdentifier(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"AMC 8 2020", "8"},
		{"AMC 12A 2019", "12A"},
		{"AMC 10b 2021", "10B"},
		{"AMC_12_B_2018", "12B"},
		{"AMC8_2022", "8"},
		{"AMC 10 2021", "10"},
		{"amc 8 basics", "8"},
		{"Mock contest 2020", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, setIdentifier(tt.folder), tt.folder)
	}
}

func TestLoad(t *testing.T) {
	b, err := Load(testBank(t))
	require.NoError(t, err)

	ps := b.Problems()
	require.Len(t, ps, 4)

	assert.Equal(t, "AMC 10B 2021", ps[0].Folder)
	assert.Equal(t, 2021, ps[0].Year)
	assert.Equal(t, "10B", ps[0].Set)
	assert.Equal(t, "AMC 10B 2021", ps[0].Contest)

	first := ps[1]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "B", first.Answer)
	assert.Equal(t, "Arithmetic", first.Category)
	assert.Equal(t, 2020, first.Year)
	assert.Equal(t, "8", first.Set)
	assert.Equal(t, "1.png", first.ImageFile())
	assert.Equal(t, "AMC 8 2020 #1", first.Label())

	assert.Equal(t, []string{"AMC 10B 2021", "AMC 8 2020"}, b.Contests())
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrNoProblems))

	_, err = Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestForLevelAndLookup(t *testing.T) {
	b, err := Load(testBank(t))
	require.NoError(t, err)
	cfg := level.DefaultConfig()

	l1 := b.ForLevel(1, cfg)
	require.Len(t, l1, 2)
	assert.Equal(t, 1, l1[0].Number)
	assert.Equal(t, 2, l1[1].Number)

	assert.Len(t, b.ForLevel(2, cfg), 1)
	assert.Len(t, b.ForLevel(3, cfg), 1)
	assert.Nil(t, b.ForLevel(9, cfg))

	p, ok := b.Lookup("AMC 8 2020", 7)
	require.True(t, ok)
	assert.Equal(t, "Geometry", p.Category)

	_, ok = b.Lookup("AMC 8 2020", 9)
	assert.False(t, ok)
}

func TestSetCategoryPersists(t *testing.T) {
	root := testBank(t)
	b, err := Load(root)
	require.NoError(t, err)

	require.NoError(t, b.SetCategory("AMC 8 2020", 2, "Number Theory"))
	p, _ := b.Lookup("AMC 8 2020", 2)
	assert.Equal(t, "Number Theory", p.Category)

	key, err := ReadAnswerKey(filepath.Join(root, "AMC 8 2020"))
	require.NoError(t, err)
	assert.Equal(t, Answer{Answer: "D", Category: "Number Theory"}, key.Answers[2])
	assert.Equal(t, "b", key.Answers[1].Answer)

	assert.Error(t, b.SetCategory("AMC 8 2020", 42, "Algebra"))
	assert.Error(t, b.SetCategory("nope", 1, "Algebra"))
}

func TestQuestionNumber(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"1.png", 1, true},
		{"q12.PNG", 12, true},
		{"Problem_7.jpg", 7, true},
		{"cover.png", 0, false},
		{"3.gif", 0, false},
		{"0.png", 0, false},
	}
	for _, tt := range tests {
		got, ok := questionNumber(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("questionNumber(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
