// Package report prints run summaries in the user's locale.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/siohaza/mapmaker/pkg/analysis"
)

type Stage struct {
	Name     string
	Depth    int
	Duration time.Duration
}

type Summary struct {
	Source string
	Seed   *uint64
	Width  int
	Height int
	Stages []Stage

	// Erosion is set by the erosion-score finalizer, Scores by playability.
	Erosion *float64
	Scores  *analysis.Scores
}

// ParseLanguage accepts a BCP 47 tag; an empty string means English.
func ParseLanguage(s string) (language.Tag, error) {
	if s == "" {
		return language.English, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", s, err)
	}
	return tag, nil
}

func Write(w io.Writer, tag language.Tag, s Summary) error {
	p := message.NewPrinter(tag)

	if s.Source != "" {
		if _, err := p.Fprintf(w, "map:        %s\n", s.Source); err != nil {
			return err
		}
	}
	p.Fprintf(w, "size:       %d x %d (%d cells)\n", s.Width, s.Height, s.Width*s.Height)
	if s.Seed != nil {
		p.Fprintf(w, "seed:       %d\n", *s.Seed)
	}

	for _, st := range s.Stages {
		indent := strings.Repeat("  ", st.Depth+1)
		p.Fprintf(w, "%s%-20s %8.1f ms\n", indent, st.Name, float64(st.Duration.Microseconds())/1000)
	}

	if s.Erosion != nil {
		p.Fprintf(w, "erosion:    %.4f\n", *s.Erosion)
	}
	if s.Scores != nil {
		p.Fprintf(w, "erosion:    %.4f\n", s.Scores.Erosion)
		p.Fprintf(w, "unit:       %.2f%%\n", 100*s.Scores.Unit)
		p.Fprintf(w, "building:   %.2f%%\n", 100*s.Scores.Building)
		_, err := p.Fprintf(w, "playable:   %.4f\n", s.Scores.Playability())
		return err
	}
	return nil
}
