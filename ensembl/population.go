package ensembl

import (
	"fmt"
	"sort"
	"strings"
)

// Population identifies a population for which Ensembl computes LD.
type Population string

// 1000 Genomes phase 3 populations.
const (
	PopulationACB Population = "1000GENOMES:phase_3:ACB"
	PopulationASW Population = "1000GENOMES:phase_3:ASW"
	PopulationBEB Population = "1000GENOMES:phase_3:BEB"
	PopulationCDX Population = "1000GENOMES:phase_3:CDX"
	PopulationCEU Population = "1000GENOMES:phase_3:CEU"
	PopulationCHB Population = "1000GENOMES:phase_3:CHB"
	PopulationCHS Population = "1000GENOMES:phase_3:CHS"
	PopulationCLM Population = "1000GENOMES:phase_3:CLM"
	PopulationESN Population = "1000GENOMES:phase_3:ESN"
	PopulationFIN Population = "1000GENOMES:phase_3:FIN"
	PopulationGBR Population = "1000GENOMES:phase_3:GBR"
	PopulationGIH Population = "1000GENOMES:phase_3:GIH"
	PopulationGWD Population = "1000GENOMES:phase_3:GWD"
	PopulationIBS Population = "1000GENOMES:phase_3:IBS"
	PopulationITU Population = "1000GENOMES:phase_3:ITU"
	PopulationJPT Population = "1000GENOMES:phase_3:JPT"
	PopulationKHV Population = "1000GENOMES:phase_3:KHV"
	PopulationLWK Population = "1000GENOMES:phase_3:LWK"
	PopulationMSL Population = "1000GENOMES:phase_3:MSL"
	PopulationMXL Population = "1000GENOMES:phase_3:MXL"
	PopulationPEL Population = "1000GENOMES:phase_3:PEL"
	PopulationPJL Population = "1000GENOMES:phase_3:PJL"
	PopulationPUR Population = "1000GENOMES:phase_3:PUR"
	PopulationSTU Population = "1000GENOMES:phase_3:STU"
	PopulationTSI Population = "1000GENOMES:phase_3:TSI"
	PopulationYRI Population = "1000GENOMES:phase_3:YRI"
)

// Gambian Genome Variation Project populations.
const (
	PopulationGGVPGWF Population = "GGVP:GWF"
	PopulationGGVPGWD Population = "GGVP:GWD"
	PopulationGGVPGWW Population = "GGVP:GWW"
	PopulationGGVPGWJ Population = "GGVP:GWJ"
)

var populationDescriptions = map[Population]string{
	PopulationACB:     "African Caribbean in Barbados",
	PopulationASW:     "African Ancestry in Southwest US",
	PopulationBEB:     "Bengali in Bangladesh",
	PopulationCDX:     "Chinese Dai in Xishuangbanna, China",
	PopulationCEU:     "Utah residents with Northern and Western European ancestry",
	PopulationCHB:     "Han Chinese in Bejing, China",
	PopulationCHS:     "Southern Han Chinese, China",
	PopulationCLM:     "Colombian in Medellin, Colombia",
	PopulationESN:     "Esan in Nigeria",
	PopulationFIN:     "Finnish in Finland",
	PopulationGBR:     "British in England and Scotland",
	PopulationGIH:     "Gujarati Indian in Houston, TX",
	PopulationGWD:     "Gambian in Western Division, The Gambia",
	PopulationIBS:     "Iberian populations in Spain",
	PopulationITU:     "Indian Telugu in the UK",
	PopulationJPT:     "Japanese in Tokyo, Japan",
	PopulationKHV:     "Kinh in Ho Chi Minh City, Vietnam",
	PopulationLWK:     "Luhya in Webuye, Kenya",
	PopulationMSL:     "Mende in Sierra Leone",
	PopulationMXL:     "Mexican Ancestry in Los Angeles, California",
	PopulationPEL:     "Peruvian in Lima, Peru",
	PopulationPJL:     "Punjabi in Lahore, Pakistan",
	PopulationPUR:     "Puerto Rican in Puerto Rico",
	PopulationSTU:     "Sri Lankan Tamil in the UK",
	PopulationTSI:     "Toscani in Italy",
	PopulationYRI:     "Yoruba in Ibadan, Nigeria",
	PopulationGGVPGWF: "Gambian in Western Division, The Gambia - Fula",
	PopulationGGVPGWD: "Gambian in Western Division, The Gambia - Mandinka",
	PopulationGGVPGWW: "Gambian in Western Division, The Gambia - Wolof",
	PopulationGGVPGWJ: "Gambian in Western Division, The Gambia - Jola",
}

// Code returns the short population code, e.g. "CEU" or "GGVP_GWF".
func (p Population) Code() string {
	value := string(p)
	if rest, ok := strings.CutPrefix(value, "GGVP:"); ok {
		return "GGVP_" + rest
	}
	if i := strings.LastIndex(value, ":"); i >= 0 {
		return value[i+1:]
	}
	return value
}

// Description returns a human readable name, or "" for unknown populations.
func (p Population) Description() string {
	return populationDescriptions[p]
}

// Known reports whether p is one of the listed populations.
func (p Population) Known() bool {
	_, ok := populationDescriptions[p]
	return ok
}

// Populations lists the known populations ordered by value.
func Populations() []Population {
	out := make([]Population, 0, len(populationDescriptions))
	for p := range populationDescriptions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParsePopulation accepts a full population name ("1000GENOMES:phase_3:CEU",
// "GGVP:GWF") or a short code ("CEU", "GGVP_GWF", case-insensitive).
func ParsePopulation(value string) (Population, error) {
	value = strings.TrimSpace(value)
	if p := Population(value); p.Known() {
		return p, nil
	}
	code := strings.ToUpper(value)
	for p := range populationDescriptions {
		if p.Code() == code {
			return p, nil
		}
	}
	return "", fmt.Errorf("ensembl: unknown population %q", value)
}

// PopulationFromInput resolves user input to a population. Known codes and
// names are normalized by ParsePopulation; other values that look like a full
// Ensembl population name ("SOURCE:NAME") are passed through unchanged so
// populations added upstream stay reachable.
func PopulationFromInput(value string) (Population, error) {
	p, err := ParsePopulation(value)
	if err == nil {
		return p, nil
	}
	if value = strings.TrimSpace(value); strings.Contains(value, ":") {
		return Population(value), nil
	}
	return "", err
}
