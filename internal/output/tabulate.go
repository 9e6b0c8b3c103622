package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/internal/store"
)

// Section is one titled table of a tabular rendering.
type Section struct {
	Title  string
	Header []string
	Rows   [][]string
	Footer string
}

// Sections converts a response into table sections. Types without a tabular
// layout are rejected so callers can fall back to JSON or YAML.
func Sections(value any) ([]Section, error) {
	switch v := value.(type) {
	case []ensembl.XrefSymbol:
		return []Section{xrefSymbolSection(v)}, nil
	case []ensembl.XrefID:
		return []Section{xrefIDSection(v)}, nil
	case []ensembl.LD:
		return []Section{ldSection(v)}, nil
	case *ensembl.LookupResult:
		if v == nil {
			return nil, nil
		}
		return lookupSections(v), nil
	case []ensembl.Population:
		return []Section{populationSection(v)}, nil
	case []store.RequestEntry:
		return []Section{journalSection(v)}, nil
	default:
		return nil, fmt.Errorf("no table layout for %T", value)
	}
}

func xrefSymbolSection(items []ensembl.XrefSymbol) Section {
	s := Section{Header: []string{"ID", "Type"}}
	for _, x := range items {
		s.Rows = append(s.Rows, []string{x.ID, x.Type})
	}
	s.Footer = countLabel(len(items), "object")
	return s
}

func xrefIDSection(items []ensembl.XrefID) Section {
	s := Section{Header: []string{"Database", "Primary ID", "Display ID", "Info", "Synonyms", "Description"}}
	for _, x := range items {
		db := x.DBDisplayName
		if db == "" {
			db = x.DBName
		}
		s.Rows = append(s.Rows, []string{
			db,
			x.PrimaryID,
			x.DisplayID,
			x.InfoType,
			strings.Join(x.Synonyms, ", "),
			x.Description,
		})
	}
	s.Footer = countLabel(len(items), "reference")
	return s
}

func ldSection(items []ensembl.LD) Section {
	withAttribs := false
	for _, ld := range items {
		if ld.Variation != "" {
			withAttribs = true
			break
		}
	}

	var s Section
	if withAttribs {
		s.Header = []string{"Population", "Variation", "Location", "Consequence", "D'", "r²", "Clinical significance"}
	} else {
		s.Header = []string{"Population", "Variation 1", "Variation 2", "D'", "r²"}
	}

	for _, ld := range items {
		if withAttribs {
			s.Rows = append(s.Rows, []string{
				ld.PopulationName.Code(),
				ld.Variation,
				location(ld.Chr, ld.Start, ld.End, ld.Strand),
				ld.ConsequenceType,
				ld.DPrime,
				ld.R2,
				strings.Join(ld.ClinicalSignificance, ", "),
			})
			continue
		}
		s.Rows = append(s.Rows, []string{
			ld.PopulationName.Code(),
			ld.Variation1,
			ld.Variation2,
			ld.DPrime,
			ld.R2,
		})
	}
	s.Footer = countLabel(len(items), "pair")
	return s
}

func lookupSections(r *ensembl.LookupResult) []Section {
	summary := Section{
		Title:  r.ID,
		Header: []string{"Field", "Value"},
	}
	add := func(field, value string) {
		if value != "" {
			summary.Rows = append(summary.Rows, []string{field, value})
		}
	}
	add("Display name", r.DisplayName)
	add("Species", r.Species)
	add("Object type", r.ObjectType)
	add("Biotype", r.Biotype)
	add("Location", location(r.SeqRegionName, r.Start, r.End, r.Strand))
	add("Assembly", r.AssemblyName)
	if r.Version > 0 {
		add("Version", strconv.Itoa(r.Version))
	}
	add("Canonical transcript", r.CanonicalTranscript)
	add("Source", r.Source)
	add("Database", r.DBType)
	add("Description", r.Description)

	sections := []Section{summary}
	if len(r.Transcript) == 0 {
		return sections
	}

	transcripts := Section{
		Title:  "Transcripts",
		Header: []string{"ID", "Name", "Biotype", "Location", "Exons", "Protein", "Canonical"},
	}
	for _, t := range r.Transcript {
		protein := ""
		if t.Translation != nil {
			protein = fmt.Sprintf("%s (%d aa)", t.Translation.ID, t.Translation.Length)
		}
		canonical := ""
		if t.IsCanonical == 1 {
			canonical = "yes"
		}
		transcripts.Rows = append(transcripts.Rows, []string{
			t.ID,
			t.DisplayName,
			t.Biotype,
			location(t.SeqRegionName, t.Start, t.End, t.Strand),
			strconv.Itoa(len(t.Exon)),
			protein,
			canonical,
		})
	}
	transcripts.Footer = countLabel(len(r.Transcript), "transcript")
	return append(sections, transcripts)
}

func populationSection(items []ensembl.Population) Section {
	s := Section{Header: []string{"Code", "Population", "Description"}}
	for _, p := range items {
		s.Rows = append(s.Rows, []string{p.Code(), string(p), p.Description()})
	}
	return s
}

func journalSection(entries []store.RequestEntry) Section {
	s := Section{Header: []string{"Started", "Endpoint", "Path", "Status", "Duration", "Error"}}
	for _, e := range entries {
		status := "-"
		if e.StatusCode > 0 {
			status = strconv.Itoa(e.StatusCode)
		}
		path := e.Path
		if e.Query != "" {
			path += "?" + e.Query
		}
		s.Rows = append(s.Rows, []string{
			e.StartedAt.Local().Format(time.DateTime),
			e.Endpoint,
			path,
			status,
			(time.Duration(e.DurationMS) * time.Millisecond).String(),
			e.Error,
		})
	}
	s.Footer = countLabel(len(entries), "request")
	return s
}

// location formats a genomic position as "chr:start-end:strand".
func location(region ensembl.SeqRegion, start, end int64, strand int) string {
	if region == "" {
		return ""
	}
	loc := fmt.Sprintf("%s:%d-%d", region, start, end)
	if strand != 0 {
		loc += ":" + strconv.Itoa(strand)
	}
	return loc
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
