// Package appid holds the static application identity used for config
// paths, environment variable prefixes and version output.
package appid

import (
	"context"

	"github.com/fulmenhq/gofulmen/appidentity"
)

const (
	BinaryName = "genelens"
	EnvPrefix  = "GENELENS_"
	ConfigName = "genelens"
)

// Get returns the genelens identity. It never fails; the signature matches
// gofulmen's identity loader so callers can switch to a discovered identity.
func Get(_ context.Context) (*appidentity.Identity, error) {
	return &appidentity.Identity{
		BinaryName: BinaryName,
		EnvPrefix:  EnvPrefix,
		ConfigName: ConfigName,
	}, nil
}

// ViperEnvPrefix returns EnvPrefix without the trailing underscore, the form
// viper.SetEnvPrefix expects.
func ViperEnvPrefix() string {
	return EnvPrefix[:len(EnvPrefix)-1]
}
