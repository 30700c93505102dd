// Package dataset inspects tesstrain ground-truth directories. A usable
// dataset is a flat directory of .tif line images, each paired with a
// .gt.txt transcript sharing the same base name.
package dataset

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	imageSuffix      = ".tif"
	transcriptSuffix = ".gt.txt"
)

// Summary describes the contents of one ground-truth directory.
// UnpairedImages lists the image files with no matching transcript,
// sorted by name.
type Summary struct {
	Path           string
	ImageCount     int
	TextCount      int
	PairCount      int
	UnpairedImages []string
}

// Valid reports whether the directory can feed a training run.
func (s Summary) Valid() bool {
	return s.PairCount > 0
}

// Inspect scans dir non-recursively and counts images, transcripts, and
// complete pairs.
func Inspect(dir string) (Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("dataset: reading %s: %w", dir, err)
	}

	images := make(map[string]bool)
	transcripts := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, imageSuffix):
			images[strings.TrimSuffix(name, imageSuffix)] = true
		case strings.HasSuffix(name, transcriptSuffix):
			transcripts[strings.TrimSuffix(name, transcriptSuffix)] = true
		}
	}

	summary := Summary{
		Path:       dir,
		ImageCount: len(images),
		TextCount:  len(transcripts),
	}
	for base := range images {
		if transcripts[base] {
			summary.PairCount++
		} else {
			summary.UnpairedImages = append(summary.UnpairedImages, base+imageSuffix)
		}
	}
	sort.Strings(summary.UnpairedImages)
	return summary, nil
}
