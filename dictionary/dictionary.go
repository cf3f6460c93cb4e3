// Package dictionary implements a frequency-ranked word dictionary used to
// validate tokens and propose spelling candidates. A Dict is immutable after
// construction and safe for concurrent use.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const defaultMaxDistance = 2

// Dict holds word counts from a frequency list.
type Dict struct {
	counts      map[string]int64
	total       int64
	maxDistance int
}

// New builds a dictionary from word counts. Keys are lowercased; entries
// with non-positive counts are given a count of one.
func New(counts map[string]int64) *Dict {
	d := &Dict{
		counts:      make(map[string]int64, len(counts)),
		maxDistance: defaultMaxDistance,
	}
	for w, c := range counts {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if c <= 0 {
			c = 1
		}
		d.counts[w] += c
		d.total += c
	}
	return d
}

// Load reads a frequency list of "word count" lines. Lines with a single
// field are loaded with a count of one; blank lines, comment lines starting
// with '#', and lines with an unparsable count are skipped.
func Load(r io.Reader) (*Dict, error) {
	counts := make(map[string]int64)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		word := strings.ToLower(fields[0])
		var count int64 = 1
		if len(fields) > 1 {
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				continue
			}
			count = n
		}
		counts[word] += count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frequency list: %w", err)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("frequency list has no entries")
	}
	return New(counts), nil
}

// LoadFile reads a frequency list from disk.
func LoadFile(path string) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frequency list: %w", err)
	}
	defer f.Close()
	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}

// WithWords returns a copy of the dictionary with the given words added.
// Words already present keep their counts; new words are added with a count
// of one. The receiver is not modified.
func (d *Dict) WithWords(words []string) *Dict {
	counts := make(map[string]int64, len(d.counts)+len(words))
	for w, c := range d.counts {
		counts[w] = c
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := counts[w]; !ok {
			counts[w] = 1
		}
	}
	return New(counts)
}

// Len reports the number of distinct words.
func (d *Dict) Len() int { return len(d.counts) }

// Total reports the sum of all word counts.
func (d *Dict) Total() int64 { return d.total }

// Known reports whether word is in the dictionary. Lookup is
// case-insensitive.
func (d *Dict) Known(word string) bool {
	_, ok := d.counts[strings.ToLower(word)]
	return ok
}

// Count returns the frequency count for word, or zero when unknown.
func (d *Dict) Count(word string) int64 {
	return d.counts[strings.ToLower(word)]
}

// Rel returns the relative frequency of word in [0, 1]. The word is
// normalized the way a general-language frequency lookup would see it:
// lowercased with non-letter runes removed. Unknown words return zero.
func (d *Dict) Rel(word string) float64 {
	if d.total == 0 {
		return 0
	}
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return float64(d.counts[b.String()]) / float64(d.total)
}

type candidate struct {
	word  string
	dist  int
	count int64
}

// Candidates returns known words within the maximum edit distance of word,
// ordered by distance, then descending frequency, then lexicographically.
// A known word returns itself as the sole candidate. The result is empty
// when nothing is close enough.
func (d *Dict) Candidates(word string) []string {
	key := strings.ToLower(word)
	if key == "" {
		return nil
	}
	if _, ok := d.counts[key]; ok {
		return []string{key}
	}
	target := []rune(key)
	var found []candidate
	for w, c := range d.counts {
		rw := []rune(w)
		if diff := len(rw) - len(target); diff > d.maxDistance || diff < -d.maxDistance {
			continue
		}
		dist := osaDistance(target, rw)
		if dist <= d.maxDistance {
			found = append(found, candidate{word: w, dist: dist, count: c})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		if found[i].count != found[j].count {
			return found[i].count > found[j].count
		}
		return found[i].word < found[j].word
	})
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.word
	}
	return out
}

// osaDistance computes the optimal string alignment distance: Levenshtein
// plus adjacent transposition, using three rolling rows.
func osaDistance(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m := prev[j] + 1
			if v := cur[j-1] + 1; v < m {
				m = v
			}
			if v := prev[j-1] + cost; v < m {
				m = v
			}
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if v := prev2[j-2] + 1; v < m {
					m = v
				}
			}
			cur[j] = m
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[lb]
}
