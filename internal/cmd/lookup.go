package cmd

import (
	"github.com/spf13/cobra"

	"github.com/genelens/genelens/ensembl"
	apperrors "github.com/genelens/genelens/internal/errors"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up Ensembl identifiers",
}

var lookupIDCmd = &cobra.Command{
	Use:   "id <id>",
	Short: "Find the species, location and database of a stable ID",
	Example: `  genelens lookup id ENSG00000157764
  genelens lookup id ENSG00000157764 --expand --utr`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := &flagReader{cmd: cmd}
		req := ensembl.LookupIDRequest{
			ID:         args[0],
			DBType:     flags.str("db-type"),
			Expand:     flags.boolean("expand"),
			MANE:       flags.boolean("mane"),
			Phenotypes: flags.boolean("phenotypes"),
			Species:    flags.str("species"),
			UTR:        flags.boolean("utr"),
		}
		if format := flags.str("format"); format != "" {
			f, err := ensembl.ParseLookupFormat(format)
			if err != nil {
				return apperrors.WrapInvalidInput(cmd.Context(), err, "--format must be full or condensed")
			}
			req.Format = f
		}
		if flags.err != nil {
			return flags.err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.client.Lookup.ID(cmd.Context(), req)
		if err != nil {
			return apperrors.FromUpstream(cmd.Context(), err)
		}
		return s.render(cmd, "lookup-"+req.ID, result)
	},
}

func init() {
	f := lookupIDCmd.Flags()
	f.String("db-type", "", "Restrict the search to a database other than core")
	f.Bool("expand", false, "Include connected features, e.g. a gene's transcripts and exons")
	f.String("format", "", "Detail level: full or condensed")
	f.Bool("mane", false, "Include MANE features (with --expand)")
	f.Bool("phenotypes", false, "Include phenotypes (genes only)")
	f.String("species", "", "Species name or alias")
	f.Bool("utr", false, "Include UTR features (with --expand)")

	lookupCmd.AddCommand(lookupIDCmd)
	rootCmd.AddCommand(lookupCmd)
}
