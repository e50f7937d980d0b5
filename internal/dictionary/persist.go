package dictionary

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/moby/sys/atomicwriter"

	"github.com/loganrooks/scholardoc/internal/scholarerr"
)

const dictHeader = "#DICT v1"

// Save persists the learned store to a line-oriented text file:
// "word<TAB>count<TAB>confidence" sorted lexicographically by word, with
// a "#DICT v1" header line. The write uses replace-on-close semantics
// (write-tmp-then-rename, via moby/sys/atomicwriter) so a crash mid-write
// never leaves a partial dictionary file, retried a few times in case the
// target directory is briefly unwritable (e.g. concurrent save from
// another worker).
func Save(path string, d *Dictionary) error {
	snapshot := d.LearnedSnapshot()

	words := make([]string, 0, len(snapshot))
	for w := range snapshot {
		words = append(words, w)
	}
	sort.Strings(words)

	var buf bytes.Buffer
	buf.WriteString(dictHeader)
	buf.WriteByte('\n')
	for _, w := range words {
		e := snapshot[w]
		fmt.Fprintf(&buf, "%s\t%d\t%s\n", w, e.Count, strconv.FormatFloat(e.Confidence, 'f', -1, 64))
	}

	err := retry.Do(
		func() error {
			return atomicwriter.WriteFile(path, buf.Bytes(), 0o644)
		},
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
	)
	if err != nil {
		return scholarerr.Wrap(scholarerr.KindIO, "failed to persist dictionary: "+path, err)
	}
	return nil
}

// LoadResult reports what happened during Load, so callers can warn
// without treating a corrupt file as fatal.
type LoadResult struct {
	LoadedEntries  int
	IgnoredLines   int
	FellBackToBase bool
}

// Load reads a dictionary file into an existing base-seeded Dictionary.
// Unknown/malformed lines are ignored and counted; negative counts are
// rejected. A failure to open or scan the file sets
// LoadResult.FellBackToBase and returns a DictionaryLoadError for the
// caller to report as a warning; d keeps its base set, plus any entries
// read before a scan failure (spec §4.B failure semantics / §7
// DictionaryLoadError). A missing file is not an error.
func Load(path string, d *Dictionary) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LoadResult{}, nil
		}
		return LoadResult{FellBackToBase: true}, scholarerr.Wrap(scholarerr.KindDictionaryLoad, "failed to open dictionary file", err)
	}
	defer f.Close()

	result := LoadResult{}
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(line, "#") {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, count, confidence, ok := parseDictLine(line)
		if !ok {
			result.IgnoredLines++
			continue
		}
		d.LoadLearned(word, count, confidence)
		result.LoadedEntries++
	}
	if err := scanner.Err(); err != nil {
		return LoadResult{FellBackToBase: true}, scholarerr.Wrap(scholarerr.KindDictionaryLoad, "failed to scan dictionary file", err)
	}
	return result, nil
}

// parseDictLine parses one "word<TAB>count<TAB>confidence" row, rejecting
// rows with the wrong shape or a negative count.
func parseDictLine(line string) (word string, count int, confidence float64, ok bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return "", 0, 0, false
	}
	word = strings.TrimSpace(fields[0])
	if word == "" {
		return "", 0, 0, false
	}
	c, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || c < 0 {
		return "", 0, 0, false
	}
	conf, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return "", 0, 0, false
	}
	return word, c, conf, true
}
