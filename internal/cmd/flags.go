package cmd

import (
	"github.com/spf13/cobra"

	"github.com/genelens/genelens/ensembl"
)

// Optional flags are only forwarded to Ensembl when set on the command line,
// so Ensembl's own defaults apply otherwise.

func optionalBool(cmd *cobra.Command, name string) (*bool, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil, err
	}
	return ensembl.Bool(v), nil
}

func optionalFloat(cmd *cobra.Command, name string) (*float64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return ensembl.Float(v), nil
}

func optionalInt(cmd *cobra.Command, name string) (*int, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil, err
	}
	return ensembl.Int(v), nil
}

// flagReader collects optional flags, keeping the first error.
type flagReader struct {
	cmd *cobra.Command
	err error
}

func (r *flagReader) str(name string) string {
	v, err := r.cmd.Flags().GetString(name)
	r.keep(err)
	return v
}

func (r *flagReader) boolean(name string) *bool {
	v, err := optionalBool(r.cmd, name)
	r.keep(err)
	return v
}

func (r *flagReader) float(name string) *float64 {
	v, err := optionalFloat(r.cmd, name)
	r.keep(err)
	return v
}

func (r *flagReader) integer(name string) *int {
	v, err := optionalInt(r.cmd, name)
	r.keep(err)
	return v
}

func (r *flagReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}
