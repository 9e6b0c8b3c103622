package cmd

import (
	"github.com/spf13/cobra"

	"github.com/genelens/genelens/ensembl"
	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/output"
)

var ldCmd = &cobra.Command{
	Use:   "ld",
	Short: "Compute linkage disequilibrium between variants",
	Long: `Compute linkage disequilibrium (LD) values from Ensembl variation data.

Populations may be given as short codes (CEU, GGVP_GWF) or full Ensembl names
(1000GENOMES:phase_3:CEU). Run "genelens ld populations" for the list.`,
}

var ldVariantCmd = &cobra.Command{
	Use:     "variant <species> <id> <population>",
	Short:   "LD between a variant and all variants in a window around it",
	Example: `  genelens ld variant human rs56116432 CEU --r2 0.8 --window-size 100`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		population, err := parsePopulationArg(cmd, args[2])
		if err != nil {
			return err
		}

		flags := &flagReader{cmd: cmd}
		req := ensembl.LDVariantRequest{
			Species:    args[0],
			ID:         args[1],
			Population: population,
			DPrime:     flags.float("d-prime"),
			R2:         flags.float("r2"),
			WindowSize: flags.integer("window-size"),
		}
		req.Attribs, err = cmd.Flags().GetBool("attribs")
		if err != nil {
			return err
		}
		if flags.err != nil {
			return flags.err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.client.LD.ForVariant(cmd.Context(), req)
		if err != nil {
			return apperrors.FromUpstream(cmd.Context(), err)
		}
		return s.render(cmd, "ld-"+req.ID+"-"+population.Code(), result)
	},
}

var ldPairwiseCmd = &cobra.Command{
	Use:     "pairwise <species> <id1> <id2>",
	Short:   "LD between two variants",
	Example: `  genelens ld pairwise human rs6792369 rs1042779 --population YRI`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := &flagReader{cmd: cmd}
		req := ensembl.LDPairwiseRequest{
			Species: args[0],
			ID1:     args[1],
			ID2:     args[2],
			DPrime:  flags.float("d-prime"),
			R2:      flags.float("r2"),
		}
		if raw := flags.str("population"); raw != "" {
			population, err := parsePopulationArg(cmd, raw)
			if err != nil {
				return err
			}
			req.Population = population
		}
		if flags.err != nil {
			return flags.err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.client.LD.Pairwise(cmd.Context(), req)
		if err != nil {
			return apperrors.FromUpstream(cmd.Context(), err)
		}
		return s.render(cmd, "ld-"+req.ID1+"-"+req.ID2, result)
	},
}

var ldRegionCmd = &cobra.Command{
	Use:     "region <species> <region> <population>",
	Short:   "LD between all pairs of variants in a region",
	Example: `  genelens ld region human 6:25837556..25843455 GGVP_GWF --d-prime 1`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		population, err := parsePopulationArg(cmd, args[2])
		if err != nil {
			return err
		}

		flags := &flagReader{cmd: cmd}
		req := ensembl.LDRegionRequest{
			Species:    args[0],
			Region:     args[1],
			Population: population,
			DPrime:     flags.float("d-prime"),
			R2:         flags.float("r2"),
		}
		if flags.err != nil {
			return flags.err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.client.LD.ForRegion(cmd.Context(), req)
		if err != nil {
			return apperrors.FromUpstream(cmd.Context(), err)
		}
		return s.render(cmd, "ld-region-"+req.Region, result)
	},
}

var ldPopulationsCmd = &cobra.Command{
	Use:   "populations",
	Short: "List the populations LD can be computed for",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		return writeOutput(cmd, "ld-populations", format, ensembl.Populations())
	},
}

func parsePopulationArg(cmd *cobra.Command, value string) (ensembl.Population, error) {
	population, err := ensembl.PopulationFromInput(value)
	if err != nil {
		return "", apperrors.WrapInvalidInput(cmd.Context(), err,
			"unknown population "+value+` (see "genelens ld populations")`)
	}
	return population, nil
}

func init() {
	for _, c := range []*cobra.Command{ldVariantCmd, ldPairwiseCmd, ldRegionCmd} {
		c.Flags().Float64("d-prime", 0, "Only return pairs with D' at least this value (sent only when set)")
		c.Flags().Float64("r2", 0, "Only return pairs with r² at least this value (sent only when set)")
	}
	ldVariantCmd.Flags().Bool("attribs", false, "Add location, consequence and clinical significance of paired variants")
	ldVariantCmd.Flags().Int("window-size", 0, "Window size in kb, at most 500 (sent only when set)")
	ldPairwiseCmd.Flags().String("population", "", "Restrict to one population")

	ldCmd.AddCommand(ldVariantCmd)
	ldCmd.AddCommand(ldPairwiseCmd)
	ldCmd.AddCommand(ldRegionCmd)
	ldCmd.AddCommand(ldPopulationsCmd)
	rootCmd.AddCommand(ldCmd)
}
