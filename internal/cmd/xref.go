package cmd

import (
	"github.com/spf13/cobra"

	"github.com/genelens/genelens/ensembl"
	apperrors "github.com/genelens/genelens/internal/errors"
)

var xrefCmd = &cobra.Command{
	Use:   "xref",
	Short: "Look up cross-references between Ensembl and external databases",
}

var xrefSymbolCmd = &cobra.Command{
	Use:   "symbol <species> <symbol>",
	Short: "Find Ensembl objects linked to an external symbol",
	Example: `  genelens xref symbol homo_sapiens BRCA2
  genelens xref symbol human BRAF --external-type HGNC --object-type gene`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := &flagReader{cmd: cmd}
		req := ensembl.XrefSymbolRequest{
			Species:      args[0],
			Symbol:       args[1],
			DBType:       flags.str("db-type"),
			ExternalType: flags.str("external-type"),
			ObjectType:   flags.str("object-type"),
		}
		if flags.err != nil {
			return flags.err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.client.Xrefs.Symbol(cmd.Context(), req)
		if err != nil {
			return apperrors.FromUpstream(cmd.Context(), err)
		}
		return s.render(cmd, "xref-symbol-"+req.Symbol, result)
	},
}

var xrefIDCmd = &cobra.Command{
	Use:   "id <id>",
	Short: "List external references of an Ensembl stable ID",
	Example: `  genelens xref id ENSG00000157764
  genelens xref id ENSG00000157764 --all-levels --external-type HGNC`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := &flagReader{cmd: cmd}
		req := ensembl.XrefIDRequest{
			ID:           args[0],
			AllLevels:    flags.boolean("all-levels"),
			DBType:       flags.str("db-type"),
			ExternalType: flags.str("external-type"),
			ObjectType:   flags.str("object-type"),
			Species:      flags.str("species"),
		}
		if flags.err != nil {
			return flags.err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.client.Xrefs.ID(cmd.Context(), req)
		if err != nil {
			return apperrors.FromUpstream(cmd.Context(), err)
		}
		return s.render(cmd, "xref-id-"+req.ID, result)
	},
}

func init() {
	for _, c := range []*cobra.Command{xrefSymbolCmd, xrefIDCmd} {
		c.Flags().String("db-type", "", "Restrict the search to a database other than core")
		c.Flags().String("external-type", "", "Filter by external database, e.g. HGNC")
		c.Flags().String("object-type", "", "Filter by feature type, e.g. gene or transcript")
	}
	xrefIDCmd.Flags().Bool("all-levels", false, "Also return references of linked features (sent only when set)")
	xrefIDCmd.Flags().String("species", "", "Species name or alias")

	xrefCmd.AddCommand(xrefSymbolCmd)
	xrefCmd.AddCommand(xrefIDCmd)
	rootCmd.AddCommand(xrefCmd)
}
