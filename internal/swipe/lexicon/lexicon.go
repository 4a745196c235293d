package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tier rank boundaries, applied after sorting by descending raw frequency.
const (
	tierTop100Rank  = 100
	tierTop1000Rank = 1000
	tierTop5000Rank = 5000
)

// FrequencyTier is a coarse usage band assigned from a word's rank in the
// frequency-sorted dictionary. Higher values mean more frequent.
type FrequencyTier int

const (
	TierCommon FrequencyTier = iota
	TierTop5000
	TierTop1000
	TierTop100
)

func (t FrequencyTier) String() string {
	switch t {
	case TierTop100:
		return "top100"
	case TierTop1000:
		return "top1000"
	case TierTop5000:
		return "top5000"
	default:
		return "common"
	}
}

// WordCount is one raw dictionary row before normalization.
type WordCount struct {
	Word  string
	Count int64
}

// Entry is one dictionary word with its precomputed scoring inputs.
type Entry struct {
	Word string

	// RawFrequency is the corpus occurrence count.
	RawFrequency int64

	// FrequencyScore is RawFrequency mapped to [0,1] on a log scale
	// relative to the most frequent word in the snapshot.
	FrequencyScore float64

	Tier FrequencyTier

	// UniqueLetterCount counts distinct runes in Word. Short words with
	// repeated letters ("noon", "mama") score differently from words
	// whose length matches their key coverage.
	UniqueLetterCount int
}

// Lexicon is an immutable dictionary snapshot. Safe for concurrent reads.
type Lexicon struct {
	entries []Entry
	byWord  map[string]int
	maxRaw  int64
}

// New builds a snapshot from raw word counts. Words are NFC-normalized,
// lowercased and trimmed; empties are dropped, duplicates keep the larger
// count, negative counts clamp to zero. An empty input yields a valid
// empty lexicon.
func New(words []WordCount) *Lexicon {
	merged := make(map[string]int64, len(words))
	for _, wc := range words {
		w := Normalize(wc.Word)
		if w == "" {
			continue
		}
		c := wc.Count
		if c < 0 {
			c = 0
		}
		if prev, ok := merged[w]; !ok || c > prev {
			merged[w] = c
		}
	}

	entries := make([]Entry, 0, len(merged))
	var maxRaw int64
	for w, c := range merged {
		entries = append(entries, Entry{
			Word:              w,
			RawFrequency:      c,
			UniqueLetterCount: uniqueRunes(w),
		})
		if c > maxRaw {
			maxRaw = c
		}
	}

	// Descending frequency, word as the deterministic tie-break.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RawFrequency != entries[j].RawFrequency {
			return entries[i].RawFrequency > entries[j].RawFrequency
		}
		return entries[i].Word < entries[j].Word
	})

	logMax := math.Log1p(float64(maxRaw))
	byWord := make(map[string]int, len(entries))
	for i := range entries {
		e := &entries[i]
		if logMax > 0 {
			e.FrequencyScore = math.Log1p(float64(e.RawFrequency)) / logMax
		}
		e.Tier = tierForRank(i)
		byWord[e.Word] = i
	}

	return &Lexicon{entries: entries, byWord: byWord, maxRaw: maxRaw}
}

func tierForRank(rank int) FrequencyTier {
	switch {
	case rank < tierTop100Rank:
		return TierTop100
	case rank < tierTop1000Rank:
		return TierTop1000
	case rank < tierTop5000Rank:
		return TierTop5000
	default:
		return TierCommon
	}
}

// Normalize applies the canonical word form used throughout the engine:
// NFC, lowercased, surrounding whitespace removed.
func Normalize(word string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(word)))
}

func uniqueRunes(w string) int {
	seen := make(map[rune]struct{}, len(w))
	for _, r := range w {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// Len reports the number of words in the snapshot.
func (l *Lexicon) Len() int { return len(l.entries) }

// MaxRawFrequency reports the largest raw count in the snapshot.
func (l *Lexicon) MaxRawFrequency() int64 { return l.maxRaw }

// Entries returns the frequency-sorted entries. Callers must not mutate
// the returned slice.
func (l *Lexicon) Entries() []Entry { return l.entries }

// Lookup finds a word after applying Normalize to it.
func (l *Lexicon) Lookup(word string) (Entry, bool) {
	i, ok := l.byWord[Normalize(word)]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i], true
}

// ParseWordList reads "word count" lines, one entry per line. Blank lines
// and lines starting with '#' are skipped. A missing count defaults to 1,
// which lets plain word lists load with uniform frequency.
func ParseWordList(r io.Reader) ([]WordCount, error) {
	var out []WordCount
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		wc := WordCount{Word: fields[0], Count: 1}
		if len(fields) > 1 {
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("word list line %d: bad count %q: %w", line, fields[1], err)
			}
			wc.Count = n
		}
		out = append(out, wc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("word list read: %w", err)
	}
	return out, nil
}
